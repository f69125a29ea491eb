package postgresql

import (
	"context"
	"fmt"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

const unitColumns = `id, collection_date, component, blood_type, valid, donor_id, site_id, bank_id,
        consumed_at, consumed_by_order_id`

type DonationRepo struct {
	db db.DB
}

func NewDonationRepo(db db.DB) storage.DonationRepository {
	return &DonationRepo{db: db}
}

func (r *DonationRepo) CreateTx(ctx context.Context, tx db.Tx, unit *repository.DonationUnit) error {
	return tx.Get(ctx, &unit.ID, `
        INSERT INTO donation_units (
            collection_date, component, blood_type, valid, donor_id, site_id, bank_id
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, unit.CollectionDate, unit.Component, unit.BloodType, unit.Valid, unit.DonorID, unit.SiteID, unit.BankID)
}

func (r *DonationRepo) ListByDonor(ctx context.Context, donorID int64) ([]*repository.DonationUnit, error) {
	var units []*repository.DonationUnit
	err := r.db.Select(ctx, &units, `
        SELECT `+unitColumns+` FROM donation_units
        WHERE donor_id = $1
        ORDER BY collection_date DESC, id DESC
    `, donorID)
	return units, err
}

func (r *DonationRepo) ListByDonorTx(ctx context.Context, tx db.Tx, donorID int64) ([]*repository.DonationUnit, error) {
	var units []*repository.DonationUnit
	err := tx.Select(ctx, &units, `
        SELECT `+unitColumns+` FROM donation_units
        WHERE donor_id = $1
        ORDER BY collection_date DESC, id DESC
    `, donorID)
	return units, err
}

func (r *DonationRepo) LockBankTx(ctx context.Context, tx db.Tx, bankID int64) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", bankID); err != nil {
		return fmt.Errorf("failed to lock bank %d: %w", bankID, err)
	}
	return nil
}

func (r *DonationRepo) ListAvailableTx(ctx context.Context, tx db.Tx, bankID int64, bloodType, component string) ([]*repository.DonationUnit, error) {
	var units []*repository.DonationUnit
	err := tx.Select(ctx, &units, `
        SELECT `+unitColumns+` FROM donation_units
        WHERE bank_id = $1 AND blood_type = $2 AND component = $3 AND valid
        ORDER BY collection_date ASC, id ASC
        FOR UPDATE
    `, bankID, bloodType, component)
	if err != nil {
		return nil, fmt.Errorf("failed to select available units: %w", err)
	}
	return units, nil
}

// ConsumeTx invalidates exactly the given units. If any of them was already
// consumed the statement touches fewer rows and ErrAlreadyConsumed is returned;
// the caller must roll back.
func (r *DonationRepo) ConsumeTx(ctx context.Context, tx db.Tx, unitIDs []int64, orderID int64, at time.Time) error {
	if len(unitIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `
        UPDATE donation_units
        SET valid = false, consumed_at = $2, consumed_by_order_id = $3
        WHERE id = ANY($1) AND valid
    `, unitIDs, at, orderID)
	if err != nil {
		return fmt.Errorf("failed to consume units: %w", err)
	}
	if tag.RowsAffected() != int64(len(unitIDs)) {
		return fmt.Errorf("consumed %d of %d units: %w", tag.RowsAffected(), len(unitIDs), repository.ErrAlreadyConsumed)
	}
	return nil
}

func (r *DonationRepo) ListAvailable(ctx context.Context, bankID int64, filter repository.StockFilter) ([]*repository.DonationUnit, error) {
	where, args := stockWhere(bankID, filter)
	var units []*repository.DonationUnit
	err := r.db.Select(ctx, &units, "SELECT "+unitColumns+" FROM donation_units WHERE "+where+
		" ORDER BY blood_type, component, collection_date ASC, id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available units: %w", err)
	}
	return units, nil
}

func (r *DonationRepo) CountAvailable(ctx context.Context, bankID int64, filter repository.StockFilter) ([]repository.StockCount, error) {
	where, args := stockWhere(bankID, filter)
	var counts []repository.StockCount
	err := r.db.Select(ctx, &counts, "SELECT blood_type, component, COUNT(*) AS available FROM donation_units WHERE "+where+
		" GROUP BY blood_type, component", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count available units: %w", err)
	}
	return counts, nil
}

func stockWhere(bankID int64, filter repository.StockFilter) (string, []interface{}) {
	where := "bank_id = $1 AND valid"
	args := []interface{}{bankID}
	if filter.BloodType != "" {
		args = append(args, filter.BloodType)
		where += fmt.Sprintf(" AND blood_type = $%d", len(args))
	}
	if filter.Component != "" {
		args = append(args, filter.Component)
		where += fmt.Sprintf(" AND component = $%d", len(args))
	}
	return where, args
}

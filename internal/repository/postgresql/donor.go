package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

const donorColumns = `id, national_id, name, phone, birth_date, gender, weight, blood_type,
        manually_enabled, last_donation_date, bank_id, created_at, updated_at`

type DonorRepo struct {
	db db.DB
}

func NewDonorRepo(db db.DB) storage.DonorRepository {
	return &DonorRepo{db: db}
}

func (r *DonorRepo) CreateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error {
	err := tx.Get(ctx, &donor.ID, `
        INSERT INTO donors (
            national_id, name, phone, birth_date, gender, weight, blood_type,
            manually_enabled, last_donation_date, bank_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `, donor.NationalID, donor.Name, donor.Phone, donor.BirthDate, donor.Gender, donor.Weight, donor.BloodType,
		donor.ManuallyEnabled, donor.LastDonationDate, donor.BankID, donor.CreatedAt, donor.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("national id %s: %w", donor.NationalID, repository.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *DonorRepo) GetByID(ctx context.Context, id int64) (*repository.Donor, error) {
	var donor repository.Donor
	err := r.db.Get(ctx, &donor, "SELECT "+donorColumns+" FROM donors WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Donor, error) {
	var donor repository.Donor
	err := tx.Get(ctx, &donor, "SELECT "+donorColumns+" FROM donors WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepo) GetByNationalID(ctx context.Context, nationalID string) (*repository.Donor, error) {
	var donor repository.Donor
	err := r.db.Get(ctx, &donor, "SELECT "+donorColumns+" FROM donors WHERE national_id = $1", nationalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &donor, nil
}

func (r *DonorRepo) List(ctx context.Context, filter repository.DonorFilter) ([]*repository.Donor, error) {
	query := "SELECT " + donorColumns + " FROM donors WHERE bank_id = $1"
	args := []interface{}{filter.BankID}

	if filter.BloodType != "" {
		args = append(args, filter.BloodType)
		query += fmt.Sprintf(" AND blood_type = $%d", len(args))
	}
	if filter.EnabledOnly {
		query += " AND manually_enabled"
	}
	query += " ORDER BY id ASC"

	var donors []*repository.Donor
	if err := r.db.Select(ctx, &donors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

// UpdateTx writes the mutable columns; national id, blood type and bank are
// never rewritten.
func (r *DonorRepo) UpdateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error {
	tag, err := tx.Exec(ctx, `
        UPDATE donors
        SET
            name = $1,
            phone = $2,
            gender = $3,
            weight = $4,
            manually_enabled = $5,
            last_donation_date = $6,
            updated_at = $7
        WHERE id = $8
    `, donor.Name, donor.Phone, donor.Gender, donor.Weight, donor.ManuallyEnabled, donor.LastDonationDate, donor.UpdatedAt, donor.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

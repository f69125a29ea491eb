package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

const orderColumns = `id, hospital_id, bank_id, state, created_at, updated_at`

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) storage.OrderRepository {
	return &OrderRepo{db: db}
}

// CreateTx inserts the order and its lines, filling in the generated ids.
func (r *OrderRepo) CreateTx(ctx context.Context, tx db.Tx, order *repository.RequestOrder, lines []*repository.RequestLine) error {
	err := tx.Get(ctx, &order.ID, `
        INSERT INTO request_orders (
            hospital_id, bank_id, state, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, order.HospitalID, order.BankID, order.State, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert request order: %w", err)
	}

	for _, line := range lines {
		line.OrderID = order.ID
		err := tx.Get(ctx, &line.ID, `
            INSERT INTO request_lines (
                order_id, bank_id, blood_type, component, quantity
            ) VALUES ($1, $2, $3, $4, $5)
            RETURNING id
        `, line.OrderID, line.BankID, line.BloodType, line.Component, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert request line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*repository.RequestOrder, error) {
	var order repository.RequestOrder
	err := r.db.Get(ctx, &order, "SELECT "+orderColumns+" FROM request_orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.RequestOrder, error) {
	var order repository.RequestOrder
	err := tx.Get(ctx, &order, "SELECT "+orderColumns+" FROM request_orders WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetLines(ctx context.Context, orderID int64) ([]*repository.RequestLine, error) {
	var lines []*repository.RequestLine
	err := r.db.Select(ctx, &lines, `
        SELECT id, order_id, bank_id, blood_type, component, quantity
        FROM request_lines
        WHERE order_id = $1
        ORDER BY id ASC
    `, orderID)
	return lines, err
}

func (r *OrderRepo) GetLinesTx(ctx context.Context, tx db.Tx, orderID int64) ([]*repository.RequestLine, error) {
	var lines []*repository.RequestLine
	err := tx.Select(ctx, &lines, `
        SELECT id, order_id, bank_id, blood_type, component, quantity
        FROM request_lines
        WHERE order_id = $1
        ORDER BY id ASC
    `, orderID)
	return lines, err
}

func (r *OrderRepo) UpdateStateTx(ctx context.Context, tx db.Tx, id int64, state string, at time.Time) error {
	tag, err := tx.Exec(ctx, `
        UPDATE request_orders
        SET
            state = $1,
            updated_at = $2
        WHERE id = $3
    `, state, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}

func (r *OrderRepo) ListActiveByBank(ctx context.Context, bankID int64) ([]*repository.RequestOrder, error) {
	query := `
        SELECT ` + orderColumns + ` FROM request_orders
        WHERE bank_id = $1 AND state = 'active'
        ORDER BY created_at ASC, id ASC
    `
	var orders []*repository.RequestOrder
	err := r.db.Select(ctx, &orders, query, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) ListByHospital(ctx context.Context, hospitalID int64) ([]*repository.RequestOrder, error) {
	var orders []*repository.RequestOrder
	err := r.db.Select(ctx, &orders, `
        SELECT `+orderColumns+` FROM request_orders
        WHERE hospital_id = $1
        ORDER BY created_at DESC, id DESC
    `, hospitalID)
	return orders, err
}

func (r *OrderRepo) ListByBank(ctx context.Context, bankID int64, state string) ([]*repository.RequestOrder, error) {
	query := "SELECT " + orderColumns + " FROM request_orders WHERE bank_id = $1"
	args := []interface{}{bankID}

	if state != "" {
		query += " AND state = $2"
		args = append(args, state)
	}

	query += " ORDER BY created_at DESC, id DESC"

	var orders []*repository.RequestOrder
	err := r.db.Select(ctx, &orders, query, args...)
	return orders, err
}

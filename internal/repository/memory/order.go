package memory

import (
	"context"
	"sort"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type OrderRepo struct {
	store *Store
}

func NewOrderRepo(store *Store) storage.OrderRepository {
	return &OrderRepo{store: store}
}

// CreateTx keeps the new order locked until the creating transaction ends, so
// a concurrent fulfillment pass never sees a half-written order.
func (r *OrderRepo) CreateTx(ctx context.Context, tx db.Tx, order *repository.RequestOrder, lines []*repository.RequestLine) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	order.ID = s.nextID("request_orders")
	for _, line := range lines {
		line.ID = s.nextID("request_lines")
		line.OrderID = order.ID
	}
	s.mu.Unlock()

	if err := t.lock(ctx, orderKey(order.ID)); err != nil {
		return err
	}

	rows := make([]repository.RequestLine, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, *line)
	}
	return t.write(func() {
		s.orders[order.ID] = *order
		s.lines[order.ID] = rows
	}, func() {
		delete(s.orders, order.ID)
		delete(s.lines, order.ID)
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id int64) (*repository.RequestOrder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &order, nil
}

func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.RequestOrder, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, orderKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) GetLines(_ context.Context, orderID int64) ([]*repository.RequestLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := r.store.lines[orderID]
	lines := make([]*repository.RequestLine, 0, len(rows))
	for _, l := range rows {
		lines = append(lines, &l)
	}
	return lines, nil
}

func (r *OrderRepo) GetLinesTx(ctx context.Context, tx db.Tx, orderID int64) ([]*repository.RequestLine, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}
	return r.GetLines(ctx, orderID)
}

func (r *OrderRepo) UpdateStateTx(ctx context.Context, tx db.Tx, id int64, state string, at time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, orderKey(id)); err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	prev, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return repository.ErrObjectNotFound
	}

	next := prev
	next.State = state
	next.UpdatedAt = at
	return t.write(func() {
		s.orders[id] = next
	}, func() {
		s.orders[id] = prev
	})
}

func (r *OrderRepo) ListActiveByBank(_ context.Context, bankID int64) ([]*repository.RequestOrder, error) {
	orders := r.collect(func(o repository.RequestOrder) bool {
		return o.BankID == bankID && o.State == "active"
	})
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, nil
}

func (r *OrderRepo) ListByHospital(_ context.Context, hospitalID int64) ([]*repository.RequestOrder, error) {
	orders := r.collect(func(o repository.RequestOrder) bool { return o.HospitalID == hospitalID })
	newestFirst(orders)
	return orders, nil
}

func (r *OrderRepo) ListByBank(_ context.Context, bankID int64, state string) ([]*repository.RequestOrder, error) {
	orders := r.collect(func(o repository.RequestOrder) bool {
		return o.BankID == bankID && (state == "" || o.State == state)
	})
	newestFirst(orders)
	return orders, nil
}

func (r *OrderRepo) collect(match func(repository.RequestOrder) bool) []*repository.RequestOrder {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var orders []*repository.RequestOrder
	for _, o := range r.store.orders {
		if match(o) {
			orders = append(orders, &o)
		}
	}
	return orders
}

func newestFirst(orders []*repository.RequestOrder) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

package memory

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type HistoryRepo struct {
	store *Store
}

func NewHistoryRepo(store *Store) storage.HistoryRepository {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) CreateTx(_ context.Context, tx db.Tx, entry *repository.HistoryEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	s := r.store
	return t.write(func() {
		entry.ID = s.nextID("request_order_history")
		s.history[entry.OrderID] = append(s.history[entry.OrderID], *entry)
	}, func() {
		entries := s.history[entry.OrderID]
		for i := range entries {
			if entries[i].ID == entry.ID {
				s.history[entry.OrderID] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	})
}

// GetByOrderID returns entries in insertion order, which is also changed_at
// order since entries are only ever appended.
func (r *HistoryRepo) GetByOrderID(_ context.Context, orderID int64) ([]*repository.HistoryEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := r.store.history[orderID]
	entries := make([]*repository.HistoryEntry, 0, len(rows))
	for _, e := range rows {
		entries = append(entries, &e)
	}
	return entries, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type DonationRepo struct {
	store *Store
}

func NewDonationRepo(store *Store) storage.DonationRepository {
	return &DonationRepo{store: store}
}

// CreateTx holds the bank lock until tx ends, so a fulfillment pass never
// sees, and consumes, a unit whose insert may still roll back.
func (r *DonationRepo) CreateTx(ctx context.Context, tx db.Tx, unit *repository.DonationUnit) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, bankKey(unit.BankID)); err != nil {
		return fmt.Errorf("failed to lock bank %d: %w", unit.BankID, err)
	}
	s := r.store
	return t.write(func() {
		unit.ID = s.nextID("donation_units")
		s.units[unit.ID] = *unit
	}, func() {
		delete(s.units, unit.ID)
	})
}

func (r *DonationRepo) ListByDonor(_ context.Context, donorID int64) ([]*repository.DonationUnit, error) {
	units := r.collect(func(u repository.DonationUnit) bool { return u.DonorID == donorID })
	sort.Slice(units, func(i, j int) bool {
		if !units[i].CollectionDate.Equal(units[j].CollectionDate) {
			return units[i].CollectionDate.After(units[j].CollectionDate)
		}
		return units[i].ID > units[j].ID
	})
	return units, nil
}

func (r *DonationRepo) ListByDonorTx(ctx context.Context, tx db.Tx, donorID int64) ([]*repository.DonationUnit, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}
	return r.ListByDonor(ctx, donorID)
}

func (r *DonationRepo) LockBankTx(ctx context.Context, tx db.Tx, bankID int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, bankKey(bankID)); err != nil {
		return fmt.Errorf("failed to lock bank %d: %w", bankID, err)
	}
	return nil
}

// ListAvailableTx relies on the bank lock taken by LockBankTx: only a holder
// of that lock consumes units, so the candidates cannot change underneath it.
func (r *DonationRepo) ListAvailableTx(ctx context.Context, tx db.Tx, bankID int64, bloodType, component string) ([]*repository.DonationUnit, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}
	return r.ListAvailable(ctx, bankID, repository.StockFilter{BloodType: bloodType, Component: component})
}

func (r *DonationRepo) ConsumeTx(_ context.Context, tx db.Tx, unitIDs []int64, orderID int64, at time.Time) error {
	if len(unitIDs) == 0 {
		return nil
	}
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	prev := make([]repository.DonationUnit, 0, len(unitIDs))
	for _, id := range unitIDs {
		u, ok := s.units[id]
		if ok && u.Valid {
			prev = append(prev, u)
		}
	}
	s.mu.RUnlock()

	// same contract as the row-count check of the SQL statement: touch nothing
	// unless every requested unit is still valid
	if len(prev) != len(unitIDs) {
		return fmt.Errorf("consumed %d of %d units: %w", len(prev), len(unitIDs), repository.ErrAlreadyConsumed)
	}

	return t.write(func() {
		for _, u := range prev {
			consumedAt, by := at, orderID
			u.Valid = false
			u.ConsumedAt = &consumedAt
			u.ConsumedByOrderID = &by
			s.units[u.ID] = u
		}
	}, func() {
		for _, u := range prev {
			s.units[u.ID] = u
		}
	})
}

func (r *DonationRepo) ListAvailable(_ context.Context, bankID int64, filter repository.StockFilter) ([]*repository.DonationUnit, error) {
	units := r.collect(func(u repository.DonationUnit) bool { return available(u, bankID, filter) })
	sort.Slice(units, func(i, j int) bool {
		a, b := units[i], units[j]
		if a.BloodType != b.BloodType {
			return a.BloodType < b.BloodType
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		if !a.CollectionDate.Equal(b.CollectionDate) {
			return a.CollectionDate.Before(b.CollectionDate)
		}
		return a.ID < b.ID
	})
	return units, nil
}

func (r *DonationRepo) CountAvailable(_ context.Context, bankID int64, filter repository.StockFilter) ([]repository.StockCount, error) {
	type bucket struct{ bloodType, component string }
	counts := make(map[bucket]int)

	r.store.mu.RLock()
	for _, u := range r.store.units {
		if available(u, bankID, filter) {
			counts[bucket{u.BloodType, u.Component}]++
		}
	}
	r.store.mu.RUnlock()

	result := make([]repository.StockCount, 0, len(counts))
	for b, n := range counts {
		result = append(result, repository.StockCount{BloodType: b.bloodType, Component: b.component, Available: n})
	}
	return result, nil
}

func (r *DonationRepo) collect(match func(repository.DonationUnit) bool) []*repository.DonationUnit {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var units []*repository.DonationUnit
	for _, u := range r.store.units {
		if match(u) {
			units = append(units, &u)
		}
	}
	return units
}

func available(u repository.DonationUnit, bankID int64, filter repository.StockFilter) bool {
	if !u.Valid || u.BankID != bankID {
		return false
	}
	if filter.BloodType != "" && u.BloodType != filter.BloodType {
		return false
	}
	return filter.Component == "" || u.Component == filter.Component
}

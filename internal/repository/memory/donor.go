package memory

import (
	"context"
	"fmt"
	"sort"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type DonorRepo struct {
	store *Store
}

func NewDonorRepo(store *Store) storage.DonorRepository {
	return &DonorRepo{store: store}
}

func (r *DonorRepo) CreateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	// the national id key stands in for the unique index
	if err := t.lock(ctx, "national_id:"+donor.NationalID); err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	_, exists := s.byNatID[donor.NationalID]
	s.mu.RUnlock()
	if exists {
		return fmt.Errorf("national id %s: %w", donor.NationalID, repository.ErrDuplicate)
	}

	return t.write(func() {
		donor.ID = s.nextID("donors")
		s.donors[donor.ID] = *donor
		s.byNatID[donor.NationalID] = donor.ID
	}, func() {
		delete(s.donors, donor.ID)
		delete(s.byNatID, donor.NationalID)
	})
}

func (r *DonorRepo) GetByID(_ context.Context, id int64) (*repository.Donor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	donor, ok := r.store.donors[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &donor, nil
}

func (r *DonorRepo) GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Donor, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, donorKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *DonorRepo) GetByNationalID(ctx context.Context, nationalID string) (*repository.Donor, error) {
	r.store.mu.RLock()
	id, ok := r.store.byNatID[nationalID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *DonorRepo) List(_ context.Context, filter repository.DonorFilter) ([]*repository.Donor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var donors []*repository.Donor
	for _, d := range r.store.donors {
		if d.BankID != filter.BankID {
			continue
		}
		if filter.BloodType != "" && d.BloodType != filter.BloodType {
			continue
		}
		if filter.EnabledOnly && !d.ManuallyEnabled {
			continue
		}
		donors = append(donors, &d)
	}
	sort.Slice(donors, func(i, j int) bool { return donors[i].ID < donors[j].ID })
	return donors, nil
}

func (r *DonorRepo) UpdateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, donorKey(donor.ID)); err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	prev, ok := s.donors[donor.ID]
	s.mu.RUnlock()
	if !ok {
		return repository.ErrObjectNotFound
	}

	next := prev
	next.Name = donor.Name
	next.Phone = donor.Phone
	next.Gender = donor.Gender
	next.Weight = donor.Weight
	next.ManuallyEnabled = donor.ManuallyEnabled
	next.LastDonationDate = donor.LastDonationDate
	next.UpdatedAt = donor.UpdatedAt

	return t.write(func() {
		s.donors[donor.ID] = next
	}, func() {
		s.donors[donor.ID] = prev
	})
}

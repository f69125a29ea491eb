package memory

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type DirectoryRepo struct {
	store *Store
}

func NewDirectoryRepo(store *Store) storage.DirectoryRepository {
	return &DirectoryRepo{store: store}
}

func (r *DirectoryRepo) GetBank(_ context.Context, id int64) (*repository.Bank, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	bank, ok := r.store.banks[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &bank, nil
}

func (r *DirectoryRepo) GetHospital(_ context.Context, id int64) (*repository.Hospital, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	hospital, ok := r.store.hospitals[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &hospital, nil
}

func (r *DirectoryRepo) GetSite(_ context.Context, id int64) (*repository.CollectionSite, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	site, ok := r.store.sites[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return &site, nil
}

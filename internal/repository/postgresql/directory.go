package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

// DirectoryRepo reads the reference tables: banks, hospitals and collection sites.
type DirectoryRepo struct {
	db db.DB
}

func NewDirectoryRepo(db db.DB) storage.DirectoryRepository {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) GetBank(ctx context.Context, id int64) (*repository.Bank, error) {
	var bank repository.Bank
	if err := r.get(ctx, &bank, "SELECT id, name FROM banks WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *DirectoryRepo) GetHospital(ctx context.Context, id int64) (*repository.Hospital, error) {
	var hospital repository.Hospital
	if err := r.get(ctx, &hospital, "SELECT id, name, bank_id FROM hospitals WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &hospital, nil
}

func (r *DirectoryRepo) GetSite(ctx context.Context, id int64) (*repository.CollectionSite, error) {
	var site repository.CollectionSite
	if err := r.get(ctx, &site, "SELECT id, name, bank_id FROM collection_sites WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *DirectoryRepo) get(ctx context.Context, dest interface{}, query string, id int64) error {
	err := r.db.Get(ctx, dest, query, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrObjectNotFound
	}
	return err
}

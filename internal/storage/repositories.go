package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

type DonorRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error
	GetByID(ctx context.Context, id int64) (*repository.Donor, error)
	// GetByIDTx locks the donor row until the transaction ends.
	GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.Donor, error)
	GetByNationalID(ctx context.Context, nationalID string) (*repository.Donor, error)
	List(ctx context.Context, filter repository.DonorFilter) ([]*repository.Donor, error)
	UpdateTx(ctx context.Context, tx db.Tx, donor *repository.Donor) error
}

type DonationRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, unit *repository.DonationUnit) error
	ListByDonor(ctx context.Context, donorID int64) ([]*repository.DonationUnit, error)
	ListByDonorTx(ctx context.Context, tx db.Tx, donorID int64) ([]*repository.DonationUnit, error)
	// LockBankTx serializes inventory consumption within one bank until the
	// transaction ends.
	LockBankTx(ctx context.Context, tx db.Tx, bankID int64) error
	// ListAvailableTx returns the valid units of a bucket in FIFO order
	// (collection date, then id), locked for update.
	ListAvailableTx(ctx context.Context, tx db.Tx, bankID int64, bloodType, component string) ([]*repository.DonationUnit, error)
	ConsumeTx(ctx context.Context, tx db.Tx, unitIDs []int64, orderID int64, at time.Time) error
	ListAvailable(ctx context.Context, bankID int64, filter repository.StockFilter) ([]*repository.DonationUnit, error)
	CountAvailable(ctx context.Context, bankID int64, filter repository.StockFilter) ([]repository.StockCount, error)
}

type OrderRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, order *repository.RequestOrder, lines []*repository.RequestLine) error
	GetByID(ctx context.Context, id int64) (*repository.RequestOrder, error)
	// GetByIDTx locks the order row until the transaction ends.
	GetByIDTx(ctx context.Context, tx db.Tx, id int64) (*repository.RequestOrder, error)
	GetLines(ctx context.Context, orderID int64) ([]*repository.RequestLine, error)
	GetLinesTx(ctx context.Context, tx db.Tx, orderID int64) ([]*repository.RequestLine, error)
	UpdateStateTx(ctx context.Context, tx db.Tx, id int64, state string, at time.Time) error
	// ListActiveByBank returns active orders oldest first.
	ListActiveByBank(ctx context.Context, bankID int64) ([]*repository.RequestOrder, error)
	ListByHospital(ctx context.Context, hospitalID int64) ([]*repository.RequestOrder, error)
	ListByBank(ctx context.Context, bankID int64, state string) ([]*repository.RequestOrder, error)
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByOrderID(ctx context.Context, orderID int64) ([]*repository.HistoryEntry, error)
}

type DirectoryRepository interface {
	GetBank(ctx context.Context, id int64) (*repository.Bank, error)
	GetHospital(ctx context.Context, id int64) (*repository.Hospital, error)
	GetSite(ctx context.Context, id int64) (*repository.CollectionSite, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	// GetProcessableTasks claims up to limit created or retryable tasks, and
	// PROCESSING tasks last touched before staleBefore; rows stay locked until
	// tx ends.
	GetProcessableTasks(ctx context.Context, tx db.Tx, limit, maxAttempts int, staleBefore time.Time) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}

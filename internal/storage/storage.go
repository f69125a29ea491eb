//go:generate mockgen -source ./repositories.go -destination=./mocks/repositories.go -package=mock_storage
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

const DefaultStockAlertThreshold = 5

// StockCounter serves per-bucket available counts of a bank. The cache
// package provides a read-through implementation.
type StockCounter interface {
	Counts(ctx context.Context, bankID int64) ([]repository.StockCount, error)
	Invalidate(bankID int64)
}

type Repositories struct {
	Donors    DonorRepository
	Donations DonationRepository
	Orders    OrderRepository
	History   HistoryRepository
	Directory DirectoryRepository
	Outbox    OutboxTaskRepository
}

type Options struct {
	TxMaxAttempts       int
	EventsTopic         string
	StockAlertThreshold int
	// Stock defaults to counting straight from the donation repository.
	Stock StockCounter
	Clock func() time.Time
}

// Storage holds the service operations. Every mutating operation runs in an
// explicit transaction; fulfillment takes its locks in a fixed order: bank,
// order row, candidate units.
type Storage struct {
	runner    *db.Runner
	donors    DonorRepository
	donations DonationRepository
	orders    OrderRepository
	history   HistoryRepository
	directory DirectoryRepository
	outbox    OutboxTaskRepository
	stock     StockCounter
	logger    *zap.Logger

	topic          string
	alertThreshold int
	timeNow        func() time.Time
}

func NewStorage(database db.TxBeginner, repos Repositories, opts Options, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Storage{
		runner:         db.NewRunner(database, opts.TxMaxAttempts),
		donors:         repos.Donors,
		donations:      repos.Donations,
		orders:         repos.Orders,
		history:        repos.History,
		directory:      repos.Directory,
		outbox:         repos.Outbox,
		stock:          opts.Stock,
		logger:         logger.Named("storage"),
		topic:          opts.EventsTopic,
		alertThreshold: opts.StockAlertThreshold,
		timeNow:        time.Now,
	}
	if opts.Clock != nil {
		s.timeNow = opts.Clock
	}
	if s.stock == nil {
		s.stock = directCounter{repo: repos.Donations}
	}
	if s.alertThreshold <= 0 {
		s.alertThreshold = DefaultStockAlertThreshold
	}
	return s
}

func (s *Storage) now() time.Time {
	return s.timeNow().UTC()
}

// enqueue writes an outbox row in the caller's transaction so the event is
// published only if the state change commits.
func (s *Storage) enqueue(ctx context.Context, tx db.Tx, event repository.InventoryEvent) error {
	if s.outbox == nil || s.topic == "" {
		return nil
	}
	task, err := repository.NewOutboxTask(s.topic, event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	if err := s.outbox.CreateTx(ctx, tx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", event.Type, err)
	}
	return nil
}

// notFound maps the repository sentinel onto the domain one and wraps
// everything else with the operation name.
func notFound(err error, what string, id interface{}) error {
	if errors.Is(err, repository.ErrObjectNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %v: %w", what, id, err)
}

func (s *Storage) fail(operation string, err error) error {
	if err != nil && !isBusinessError(err) {
		metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()
	}
	return err
}

func isBusinessError(err error) bool {
	return domain.IsValidation(err) ||
		domain.IsIneligible(err) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrInvalidState)
}

type directCounter struct {
	repo DonationRepository
}

func (c directCounter) Counts(ctx context.Context, bankID int64) ([]repository.StockCount, error) {
	return c.repo.CountAvailable(ctx, bankID, repository.StockFilter{})
}

func (directCounter) Invalidate(int64) {}

package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

var errShutdown = errors.New("publisher shutdown during batch processing")

type PublisherConfig struct {
	PollInterval    time.Duration
	BatchSize       int
	MaxAttempts     int
	ProcessingLease time.Duration
}

// Publisher relays outbox tasks to the producer. A task is claimed and marked
// PROCESSING in one transaction, then sent and marked DONE or FAILED; failed
// tasks are picked up again until MaxAttempts is reached. Claimed tasks not
// sent before shutdown go back to CREATED, and a PROCESSING task older than
// ProcessingLease is claimable again.
type Publisher struct {
	db             db.TxBeginner
	repo           storage.OutboxTaskRepository
	producer       Producer
	config         PublisherConfig
	logger         *zap.Logger
	timeNow        func() time.Time
	wg             sync.WaitGroup
	shutdownSignal chan struct{}
	stopOnce       sync.Once
}

func NewPublisher(db db.TxBeginner, repo storage.OutboxTaskRepository, producer Producer, config PublisherConfig, logger *zap.Logger) *Publisher {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.ProcessingLease <= 0 {
		config.ProcessingLease = 5 * time.Minute
	}
	return &Publisher{
		db:             db,
		repo:           repo,
		producer:       producer,
		config:         config,
		logger:         logger.Named("outbox_publisher"),
		timeNow:        time.Now,
		shutdownSignal: make(chan struct{}),
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("starting outbox publisher",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize))
	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil && !errors.Is(err, errShutdown) && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", zap.Error(err))
			}
		case <-p.shutdownSignal:
			p.logger.Info("shutdown signal received, stopping")
			return
		case <-ctx.Done():
			p.logger.Info("context cancelled, stopping")
			return
		}
	}
}

// Shutdown stops Run, waits for the current batch and closes the producer.
func (p *Publisher) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.shutdownSignal)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			p.logger.Info("outbox publisher stopped")
		case <-shutdownCtx.Done():
			p.logger.Warn("outbox publisher shutdown timed out")
		}

		if err := p.producer.Close(); err != nil {
			p.logger.Error("failed to close producer", zap.Error(err))
		}
	})
}

func (p *Publisher) processBatch(ctx context.Context) error {
	tasks, err := p.claim(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	p.logger.Debug("claimed outbox tasks", zap.Int("count", len(tasks)))

	for i, task := range tasks {
		select {
		case <-p.shutdownSignal:
			p.logger.Warn("shutdown during batch, releasing unsent tasks", zap.Int("count", len(tasks)-i))
			p.release(ctx, tasks[i:])
			return errShutdown
		case <-ctx.Done():
			p.release(ctx, tasks[i:])
			return ctx.Err()
		default:
		}

		if err := p.processSingleTask(ctx, task); err != nil {
			p.logger.Error("failed to process outbox task", zap.Stringer("task_id", task.ID), zap.Error(err))
		}
	}
	return nil
}

func (p *Publisher) claim(ctx context.Context) ([]*repository.OutboxTask, error) {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for fetching tasks: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	staleBefore := p.timeNow().Add(-p.config.ProcessingLease)
	tasks, err := p.repo.GetProcessableTasks(ctx, tx, p.config.BatchSize, p.config.MaxAttempts, staleBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to get processable tasks: %w", err)
	}
	for _, task := range tasks {
		err := p.repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusProcessing, task.Attempts, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to mark task %s as PROCESSING: %w", task.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claimed tasks: %w", err)
	}
	return tasks, nil
}

// release puts claimed tasks back to CREATED without counting an attempt.
// Status writes outlive ctx so a stopping publisher still records them.
func (p *Publisher) release(ctx context.Context, tasks []*repository.OutboxTask) {
	writeCtx := context.WithoutCancel(ctx)
	for _, task := range tasks {
		err := p.repo.UpdateTaskStatus(writeCtx, task.ID, repository.TaskStatusCreated, task.Attempts, task.LastError, nil)
		if err != nil {
			p.logger.Error("failed to release outbox task", zap.Stringer("task_id", task.ID), zap.Error(err))
		}
	}
}

func (p *Publisher) processSingleTask(ctx context.Context, task *repository.OutboxTask) error {
	key := []byte(task.ID.String())
	writeCtx := context.WithoutCancel(ctx)

	if err := p.producer.SendMessage(ctx, task.Topic, key, task.Payload); err != nil {
		if ctx.Err() != nil {
			p.release(ctx, []*repository.OutboxTask{task})
			return err
		}

		attempts := task.Attempts + 1
		errMsg := err.Error()
		metrics.OutboxTasksTotal.WithLabelValues("failed").Inc()
		if attempts >= p.config.MaxAttempts {
			p.logger.Error("outbox task reached max attempts",
				zap.Stringer("task_id", task.ID),
				zap.Int("attempts", attempts))
		}

		if updateErr := p.repo.UpdateTaskStatus(writeCtx, task.ID, repository.TaskStatusFailed, attempts, &errMsg, nil); updateErr != nil {
			return fmt.Errorf("failed to update task status after send failure (%v): %w", err, updateErr)
		}
		return err
	}

	now := p.timeNow().UTC()
	if err := p.repo.UpdateTaskStatus(writeCtx, task.ID, repository.TaskStatusDone, task.Attempts, nil, &now); err != nil {
		return fmt.Errorf("failed to update task status after successful send: %w", err)
	}
	metrics.OutboxTasksTotal.WithLabelValues("done").Inc()
	return nil
}

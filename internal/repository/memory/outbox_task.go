package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

type OutboxTaskRepo struct {
	store   *Store
	timeNow func() time.Time
}

func NewOutboxTaskRepo(store *Store) storage.OutboxTaskRepository {
	return &OutboxTaskRepo{store: store, timeNow: time.Now}
}

func (r *OutboxTaskRepo) CreateTx(_ context.Context, tx db.Tx, task *repository.OutboxTask) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := r.timeNow().UTC()
	task.Status = repository.TaskStatusCreated
	task.CreatedAt, task.UpdatedAt = now, now

	s := r.store
	row := *task
	return t.write(func() {
		s.outbox[row.ID] = row
	}, func() {
		delete(s.outbox, row.ID)
	})
}

// GetProcessableTasks skips tasks another transaction holds, like
// FOR UPDATE SKIP LOCKED, and locks the ones it returns.
func (r *OutboxTaskRepo) GetProcessableTasks(_ context.Context, tx db.Tx, limit, maxAttempts int, staleBefore time.Time) ([]*repository.OutboxTask, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	var candidates []repository.OutboxTask
	for _, task := range r.store.outbox {
		if task.Status == repository.TaskStatusCreated ||
			(task.Status == repository.TaskStatusFailed && task.Attempts < maxAttempts) ||
			(task.Status == repository.TaskStatusProcessing && task.UpdatedAt.Before(staleBefore)) {
			candidates = append(candidates, task)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})

	var tasks []*repository.OutboxTask
	for _, task := range candidates {
		if len(tasks) >= limit {
			break
		}
		if !t.tryLock(taskKey(task.ID)) {
			continue
		}
		tasks = append(tasks, &task)
	}
	return tasks, nil
}

func (r *OutboxTaskRepo) UpdateTaskStatusTx(_ context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.RLock()
	prev, ok := s.outbox[id]
	s.mu.RUnlock()
	if !ok {
		return repository.ErrObjectNotFound
	}

	next := r.apply(prev, status, attempts, lastError, completedAt)
	return t.write(func() {
		s.outbox[id] = next
	}, func() {
		s.outbox[id] = prev
	})
}

func (r *OutboxTaskRepo) UpdateTaskStatus(_ context.Context, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	prev, ok := r.store.outbox[id]
	if !ok {
		return repository.ErrObjectNotFound
	}
	r.store.outbox[id] = r.apply(prev, status, attempts, lastError, completedAt)
	return nil
}

func (r *OutboxTaskRepo) apply(task repository.OutboxTask, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) repository.OutboxTask {
	task.Status = status
	task.Attempts = attempts
	task.LastError = lastError
	task.CompletedAt = completedAt
	task.UpdatedAt = r.timeNow().UTC()
	return task
}

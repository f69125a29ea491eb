// Package memory keeps every table in process memory. It backs the service
// when STORAGE_DRIVER=memory and the storage tests.
//
// Writes go straight into the maps and are recorded in the transaction's undo
// log. Row and bank locks are held until Commit or Rollback, so the locking
// discipline of the Postgres repositories carries over unchanged.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

var (
	ErrUnsupported = errors.New("memory store does not execute SQL")
	ErrTxClosed    = errors.New("tx is closed")
	errForeignTx   = errors.New("transaction does not belong to the memory store")
)

type Store struct {
	mu sync.RWMutex

	banks     map[int64]repository.Bank
	hospitals map[int64]repository.Hospital
	sites     map[int64]repository.CollectionSite
	donors    map[int64]repository.Donor
	byNatID   map[string]int64
	units     map[int64]repository.DonationUnit
	orders    map[int64]repository.RequestOrder
	lines     map[int64][]repository.RequestLine
	history   map[int64][]repository.HistoryEntry
	outbox    map[uuid.UUID]repository.OutboxTask
	seq       map[string]int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

func NewStore() *Store {
	return &Store{
		banks:     make(map[int64]repository.Bank),
		hospitals: make(map[int64]repository.Hospital),
		sites:     make(map[int64]repository.CollectionSite),
		donors:    make(map[int64]repository.Donor),
		byNatID:   make(map[string]int64),
		units:     make(map[int64]repository.DonationUnit),
		orders:    make(map[int64]repository.RequestOrder),
		lines:     make(map[int64][]repository.RequestLine),
		history:   make(map[int64][]repository.HistoryEntry),
		outbox:    make(map[uuid.UUID]repository.OutboxTask),
		seq:       make(map[string]int64),
		locks:     make(map[string]chan struct{}),
	}
}

// nextID behaves like a sequence: ids are never reused, even after rollback.
// Callers hold s.mu.
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) AddBank(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("banks")
	s.banks[id] = repository.Bank{ID: id, Name: name}
	return id
}

func (s *Store) AddHospital(name string, bankID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("hospitals")
	s.hospitals[id] = repository.Hospital{ID: id, Name: name, BankID: bankID}
	return id
}

func (s *Store) AddSite(name string, bankID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("collection_sites")
	s.sites[id] = repository.CollectionSite{ID: id, Name: name, BankID: bankID}
	return id
}

func (s *Store) keyLock(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// DB adapts the store to db.DB so the transaction runner and the outbox
// publisher work against it. Only BeginTx is meaningful.
type DB struct {
	store *Store
}

func NewDB(store *Store) *DB {
	return &DB{store: store}
}

func (d *DB) BeginTx(_ context.Context) (db.Tx, error) {
	return &Tx{store: d.store, held: make(map[string]chan struct{})}, nil
}

func (d *DB) Get(context.Context, interface{}, string, ...interface{}) error {
	return ErrUnsupported
}

func (d *DB) Select(context.Context, interface{}, string, ...interface{}) error {
	return ErrUnsupported
}

func (d *DB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return nil, ErrUnsupported
}

type Tx struct {
	store *Store
	mu    sync.Mutex
	held  map[string]chan struct{}
	undo  []func()
	done  bool
}

// lock blocks until key is free or ctx is done. A key already held by this
// transaction is not locked twice.
func (t *Tx) lock(ctx context.Context, key string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return ErrTxClosed
	}
	if _, ok := t.held[key]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	ch := t.store.keyLock(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	t.mu.Lock()
	t.held[key] = ch
	t.mu.Unlock()
	return nil
}

func (t *Tx) tryLock(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	if _, ok := t.held[key]; ok {
		return true
	}
	ch := t.store.keyLock(key)
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return true
	default:
		return false
	}
}

// write applies fn under the store lock and remembers undo for rollback.
func (t *Tx) write(fn, undo func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxClosed
	}
	t.store.mu.Lock()
	fn()
	t.store.mu.Unlock()
	t.undo = append(t.undo, undo)
	return nil
}

func (t *Tx) Commit(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxClosed
	}
	t.finish()
	return nil
}

// Rollback after Commit is a no-op, matching the deferred-rollback pattern.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.undo = nil
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

func (t *Tx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return nil, ErrUnsupported
}

func (t *Tx) Get(context.Context, interface{}, string, ...interface{}) error {
	return ErrUnsupported
}

func (t *Tx) Select(context.Context, interface{}, string, ...interface{}) error {
	return ErrUnsupported
}

func asTx(tx db.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errForeignTx, tx)
	}
	return t, nil
}

func bankKey(id int64) string  { return fmt.Sprintf("bank:%d", id) }
func donorKey(id int64) string { return fmt.Sprintf("donor:%d", id) }
func orderKey(id int64) string { return fmt.Sprintf("order:%d", id) }
func taskKey(id uuid.UUID) string {
	return "outbox:" + id.String()
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
)

func TestTx_RollbackUndoesWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bank := store.AddBank("Central")
	donors := NewDonorRepo(store)
	units := NewDonationRepo(store)

	tx, err := NewDB(store).BeginTx(ctx)
	require.NoError(t, err)

	donor := &repository.Donor{NationalID: "N-1", Name: "Ana", Weight: decimal.NewFromInt(60), BankID: bank, ManuallyEnabled: true}
	require.NoError(t, donors.CreateTx(ctx, tx, donor))
	unit := &repository.DonationUnit{DonorID: donor.ID, BankID: bank, BloodType: "O+", Component: "plasma", Valid: true}
	require.NoError(t, units.CreateTx(ctx, tx, unit))

	require.NoError(t, tx.Rollback(ctx))

	_, err = donors.GetByNationalID(ctx, "N-1")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	list, err := units.ListByDonor(ctx, donor.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, tx.Commit(ctx), ErrTxClosed)
	assert.NoError(t, tx.Rollback(ctx))
}

func TestTx_RowLockHeldUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	db := NewDB(store)
	orders := NewOrderRepo(store)

	seed, _ := db.BeginTx(ctx)
	order := &repository.RequestOrder{BankID: 1, HospitalID: 1, State: "active"}
	require.NoError(t, orders.CreateTx(ctx, seed, order, nil))
	require.NoError(t, seed.Commit(ctx))

	first, _ := db.BeginTx(ctx)
	_, err := orders.GetByIDTx(ctx, first, order.ID)
	require.NoError(t, err)

	second, _ := db.BeginTx(ctx)
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = orders.GetByIDTx(waitCtx, second, order.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, orders.UpdateStateTx(ctx, first, order.ID, "cancelled", time.Now()))
	require.NoError(t, first.Commit(ctx))

	got, err := orders.GetByIDTx(ctx, second, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.State)
	require.NoError(t, second.Commit(ctx))
}

func TestDonationRepo_ConsumeTxRejectsInvalidUnits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	db := NewDB(store)
	units := NewDonationRepo(store)

	tx, _ := db.BeginTx(ctx)
	a := &repository.DonationUnit{BankID: 1, BloodType: "A-", Component: "red_cells", Valid: true}
	b := &repository.DonationUnit{BankID: 1, BloodType: "A-", Component: "red_cells", Valid: true}
	require.NoError(t, units.CreateTx(ctx, tx, a))
	require.NoError(t, units.CreateTx(ctx, tx, b))
	require.NoError(t, units.ConsumeTx(ctx, tx, []int64{a.ID}, 9, time.Now()))
	require.NoError(t, tx.Commit(ctx))

	tx, _ = db.BeginTx(ctx)
	err := units.ConsumeTx(ctx, tx, []int64{a.ID, b.ID}, 10, time.Now())
	assert.ErrorIs(t, err, repository.ErrAlreadyConsumed)
	require.NoError(t, tx.Rollback(ctx))

	left, err := units.ListAvailable(ctx, 1, repository.StockFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, b.ID, left[0].ID)
}

func TestOutboxTaskRepo_SkipsLockedTasks(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	db := NewDB(store)
	repo := NewOutboxTaskRepo(store)

	tx, _ := db.BeginTx(ctx)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateTx(ctx, tx, &repository.OutboxTask{Topic: "events", Payload: []byte(`{}`)}))
	}
	require.NoError(t, tx.Commit(ctx))

	first, _ := db.BeginTx(ctx)
	claimed, err := repo.GetProcessableTasks(ctx, first, 2, 5, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, claimed, 2)

	second, _ := db.BeginTx(ctx)
	rest, err := repo.GetProcessableTasks(ctx, second, 10, 5, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	require.NoError(t, first.Commit(ctx))
	require.NoError(t, second.Commit(ctx))
}

func TestOutboxTaskRepo_ReclaimsStaleProcessingTasks(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	db := NewDB(store)
	repo := NewOutboxTaskRepo(store).(*OutboxTaskRepo)
	claimedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.timeNow = func() time.Time { return claimedAt }

	tx, _ := db.BeginTx(ctx)
	task := &repository.OutboxTask{Topic: "events", Payload: []byte(`{}`)}
	require.NoError(t, repo.CreateTx(ctx, tx, task))
	require.NoError(t, repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusProcessing, 0, nil, nil))
	require.NoError(t, tx.Commit(ctx))

	fresh, _ := db.BeginTx(ctx)
	tasks, err := repo.GetProcessableTasks(ctx, fresh, 10, 5, claimedAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, tasks)
	require.NoError(t, fresh.Commit(ctx))

	stale, _ := db.BeginTx(ctx)
	tasks, err = repo.GetProcessableTasks(ctx, stale, 10, 5, claimedAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	require.NoError(t, stale.Commit(ctx))
}

func TestDonationRepo_UncommittedUnitIsNotConsumable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bankID := store.AddBank("Central")
	db := NewDB(store)
	units := NewDonationRepo(store)

	recording, _ := db.BeginTx(ctx)
	unit := &repository.DonationUnit{
		CollectionDate: time.Now(),
		Component:      "plasma",
		BloodType:      "O-",
		Valid:          true,
		DonorID:        1,
		BankID:         bankID,
	}
	require.NoError(t, units.CreateTx(ctx, recording, unit))

	fulfilling, _ := db.BeginTx(ctx)
	lockCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, units.LockBankTx(lockCtx, fulfilling, bankID), context.DeadlineExceeded)

	require.NoError(t, recording.Rollback(ctx))

	require.NoError(t, units.LockBankTx(ctx, fulfilling, bankID))
	available, err := units.ListAvailableTx(ctx, fulfilling, bankID, "O-", "plasma")
	require.NoError(t, err)
	assert.Empty(t, available)
	require.NoError(t, fulfilling.Commit(ctx))
}

//go:build integration

package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage"
)

const tables = "outbox_tasks, request_order_history, donation_units, request_lines, request_orders, donors, collection_sites, hospitals, banks"

type TDB struct {
	DB *db.Database
}

var tdb *TDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bloodbank"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			return 1
		}
		pool, err := pgxpool.Connect(ctx, dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			return 1
		}
		defer pool.Close()

		tdb = &TDB{DB: db.NewDatabase(pool)}
		if err := db.Bootstrap(ctx, tdb.DB); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bootstrap schema: %v\n", err)
			return 1
		}
		return m.Run()
	}()

	_ = container.Terminate(ctx)
	os.Exit(code)
}

func (tdb *TDB) SetUp(t *testing.T) {
	t.Helper()
	tdb.truncate(t)
}

func (tdb *TDB) TearDown(t *testing.T) {
	t.Helper()
	tdb.truncate(t)
}

func (tdb *TDB) truncate(t *testing.T) {
	_, err := tdb.DB.Exec(context.Background(), "TRUNCATE "+tables+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func (tdb *TDB) insert(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	require.NoError(t, tdb.DB.Get(context.Background(), &id, query, args...))
	return id
}

type fixture struct {
	svc      *storage.Storage
	bankID   int64
	hospital int64
	donors   int
}

func newFixture(t *testing.T) *fixture {
	tdb.SetUp(t)
	t.Cleanup(func() { tdb.TearDown(t) })

	bankID := tdb.insert(t, "INSERT INTO banks (name) VALUES ($1) RETURNING id", "Central")
	hospital := tdb.insert(t, "INSERT INTO hospitals (name, bank_id) VALUES ($1, $2) RETURNING id", "St. Mary", bankID)

	svc := storage.NewStorage(tdb.DB, storage.Repositories{
		Donors:    postgresql.NewDonorRepo(tdb.DB),
		Donations: postgresql.NewDonationRepo(tdb.DB),
		Orders:    postgresql.NewOrderRepo(tdb.DB),
		History:   postgresql.NewHistoryRepo(tdb.DB),
		Directory: postgresql.NewDirectoryRepo(tdb.DB),
		Outbox:    postgresql.NewOutboxTaskRepo(tdb.DB),
	}, storage.Options{TxMaxAttempts: 5, EventsTopic: "bloodbank.events"}, zaptest.NewLogger(t))

	return &fixture{svc: svc, bankID: bankID, hospital: hospital}
}

func (f *fixture) seed(t *testing.T, bt domain.BloodType, c domain.Component, n int) []domain.DonationUnit {
	t.Helper()
	ctx := context.Background()
	units := make([]domain.DonationUnit, 0, n)
	for i := 0; i < n; i++ {
		f.donors++
		donor, err := f.svc.RegisterDonor(ctx, domain.DonorRegistration{
			NationalID: fmt.Sprintf("PG-%04d", f.donors),
			Name:       fmt.Sprintf("Donor %d", f.donors),
			BirthDate:  time.Now().AddDate(-30, 0, 0),
			Gender:     domain.Male,
			Weight:     decimal.NewFromInt(75),
			BloodType:  bt,
			BankID:     f.bankID,
		})
		require.NoError(t, err)
		unit, err := f.svc.RecordDonation(ctx, donor.ID, c, nil)
		require.NoError(t, err)
		units = append(units, unit)
	}
	return units
}

func (f *fixture) available(t *testing.T, bt domain.BloodType, c domain.Component) []int64 {
	t.Helper()
	units, err := f.svc.QueryAvailable(context.Background(), f.bankID, bt, c)
	require.NoError(t, err)
	ids := make([]int64, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func TestPostgresFulfillOldestUnitsFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	units := f.seed(t, domain.ONegative, domain.WholeBlood, 5)

	order, err := f.svc.SubmitRequest(ctx, f.hospital, []domain.LineRequest{
		{BloodType: domain.ONegative, Component: domain.WholeBlood, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConcluded, order.State)

	assert.Equal(t, []int64{units[3].ID, units[4].ID}, f.available(t, domain.ONegative, domain.WholeBlood))

	history, err := f.svc.GetRequestHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.OrderActive, history[0].State)
	assert.Equal(t, domain.OrderConcluded, history[1].State)
}

func TestPostgresPendingRequestConcludesOnDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, domain.APositive, domain.Plasma, 1)

	order, err := f.svc.SubmitRequest(ctx, f.hospital, []domain.LineRequest{
		{BloodType: domain.APositive, Component: domain.Plasma, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderActive, order.State)

	f.seed(t, domain.APositive, domain.Plasma, 1)

	current, err := f.svc.GetRequest(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConcluded, current.State)
	assert.Empty(t, f.available(t, domain.APositive, domain.Plasma))
}

func TestPostgresCompetingRequestsNeverShareUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, domain.ONegative, domain.RedCells, 5)

	const requests = 6
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		orders []domain.RequestOrder
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.svc.SubmitRequest(ctx, f.hospital, []domain.LineRequest{
				{BloodType: domain.ONegative, Component: domain.RedCells, Quantity: 3},
			})
			assert.NoError(t, err)
			mu.Lock()
			orders = append(orders, order)
			mu.Unlock()
		}()
	}
	wg.Wait()

	concluded := 0
	for _, o := range orders {
		current, err := f.svc.GetRequest(ctx, o.ID)
		require.NoError(t, err)
		if current.State == domain.OrderConcluded {
			concluded++
		}
	}
	assert.Equal(t, 1, concluded)
	assert.Len(t, f.available(t, domain.ONegative, domain.RedCells), 2)

	var consumed int
	require.NoError(t, tdb.DB.Get(ctx, &consumed,
		"SELECT COUNT(*) FROM donation_units WHERE NOT valid AND consumed_by_order_id IS NOT NULL"))
	assert.Equal(t, 3, consumed)
}

func TestPostgresOutboxRowsWritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, domain.BNegative, domain.Platelets, 2)

	var tasks int
	require.NoError(t, tdb.DB.Get(ctx, &tasks, "SELECT COUNT(*) FROM outbox_tasks WHERE status = 'CREATED'"))
	assert.Equal(t, 2, tasks)
}

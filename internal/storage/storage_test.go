package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db"
	mock_db "gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	mock_storage "gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/storage/mocks"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	db        *mock_db.MockDB
	tx        *mock_db.MockTx
	donors    *mock_storage.MockDonorRepository
	donations *mock_storage.MockDonationRepository
	orders    *mock_storage.MockOrderRepository
	history   *mock_storage.MockHistoryRepository
	directory *mock_storage.MockDirectoryRepository
	outbox    *mock_storage.MockOutboxTaskRepository
}

func newTestStorage(t *testing.T) (*Storage, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		db:        mock_db.NewMockDB(ctrl),
		tx:        mock_db.NewMockTx(ctrl),
		donors:    mock_storage.NewMockDonorRepository(ctrl),
		donations: mock_storage.NewMockDonationRepository(ctrl),
		orders:    mock_storage.NewMockOrderRepository(ctrl),
		history:   mock_storage.NewMockHistoryRepository(ctrl),
		directory: mock_storage.NewMockDirectoryRepository(ctrl),
		outbox:    mock_storage.NewMockOutboxTaskRepository(ctrl),
	}
	s := NewStorage(m.db, Repositories{
		Donors:    m.donors,
		Donations: m.donations,
		Orders:    m.orders,
		History:   m.history,
		Directory: m.directory,
		Outbox:    m.outbox,
	}, Options{EventsTopic: "events"}, zap.NewNop())
	s.timeNow = func() time.Time { return fixedTime }
	return s, m
}

func validRegistration() domain.DonorRegistration {
	return domain.DonorRegistration{
		NationalID: " 529.982.247-25 ",
		Name:       "Maria Souza",
		BirthDate:  time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		Gender:     domain.Female,
		Weight:     decimal.RequireFromString("61.5"),
		BloodType:  domain.ONegative,
		BankID:     1,
	}
}

func TestStorage_RegisterDonor(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(&repository.Bank{ID: 1}, nil)
		m.donors.EXPECT().GetByNationalID(ctx, "529.982.247-25").Return(nil, repository.ErrObjectNotFound)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, d *repository.Donor) error {
				assert.Equal(t, "529.982.247-25", d.NationalID)
				assert.True(t, d.ManuallyEnabled)
				assert.Nil(t, d.LastDonationDate)
				assert.Equal(t, fixedTime, d.CreatedAt)
				d.ID = 77
				return nil
			})
		m.tx.EXPECT().Commit(ctx).Return(nil)

		donor, err := s.RegisterDonor(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, int64(77), donor.ID)
		assert.Equal(t, domain.ONegative, donor.BloodType)
		assert.True(t, donor.Weight.Equal(decimal.RequireFromString("61.5")))
	})

	t.Run("validation errors", func(t *testing.T) {
		cases := map[string]func(r *domain.DonorRegistration){
			"underage":         func(r *domain.DonorRegistration) { r.BirthDate = fixedTime.AddDate(-17, 0, 0) },
			"too old":          func(r *domain.DonorRegistration) { r.BirthDate = fixedTime.AddDate(-66, 0, 0) },
			"underweight":      func(r *domain.DonorRegistration) { r.Weight = decimal.RequireFromString("49.99") },
			"missing name":     func(r *domain.DonorRegistration) { r.Name = "  " },
			"unknown type":     func(r *domain.DonorRegistration) { r.BloodType = "C+" },
			"future birthdate": func(r *domain.DonorRegistration) { r.BirthDate = fixedTime.AddDate(0, 0, 1) },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				s, _ := newTestStorage(t)
				reg := validRegistration()
				mutate(&reg)

				_, err := s.RegisterDonor(ctx, reg)
				assert.True(t, domain.IsValidation(err), "got %v", err)
			})
		}
	})

	t.Run("exactly eighteen today", func(t *testing.T) {
		s, m := newTestStorage(t)
		reg := validRegistration()
		reg.BirthDate = fixedTime.AddDate(-18, 0, 0)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(&repository.Bank{ID: 1}, nil)
		m.donors.EXPECT().GetByNationalID(ctx, gomock.Any()).Return(nil, repository.ErrObjectNotFound)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.tx.EXPECT().Commit(ctx).Return(nil)

		_, err := s.RegisterDonor(ctx, reg)
		assert.NoError(t, err)
	})

	t.Run("duplicate national id", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(&repository.Bank{ID: 1}, nil)
		m.donors.EXPECT().GetByNationalID(ctx, gomock.Any()).Return(&repository.Donor{ID: 5}, nil)

		_, err := s.RegisterDonor(ctx, validRegistration())
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("duplicate detected on insert", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(&repository.Bank{ID: 1}, nil)
		m.donors.EXPECT().GetByNationalID(ctx, gomock.Any()).Return(nil, repository.ErrObjectNotFound)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(repository.ErrDuplicate)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.RegisterDonor(ctx, validRegistration())
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown bank", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(nil, repository.ErrObjectNotFound)

		_, err := s.RegisterDonor(ctx, validRegistration())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("transaction begin error", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.directory.EXPECT().GetBank(ctx, int64(1)).Return(&repository.Bank{ID: 1}, nil)
		m.donors.EXPECT().GetByNationalID(ctx, gomock.Any()).Return(nil, repository.ErrObjectNotFound)
		m.db.EXPECT().BeginTx(ctx).Return(nil, errors.New("db error"))

		_, err := s.RegisterDonor(ctx, validRegistration())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})
}

func TestStorage_SetDonorManualEnable(t *testing.T) {
	ctx := context.Background()

	t.Run("disable", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(3)).Return(&repository.Donor{ID: 3, ManuallyEnabled: true}, nil)
		m.donors.EXPECT().UpdateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, d *repository.Donor) error {
				assert.False(t, d.ManuallyEnabled)
				assert.Equal(t, fixedTime, d.UpdatedAt)
				return nil
			})
		m.tx.EXPECT().Commit(ctx).Return(nil)

		donor, err := s.SetDonorManualEnable(ctx, 3, false)
		require.NoError(t, err)
		assert.False(t, donor.ManuallyEnabled)
	})

	t.Run("donor not found", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(3)).Return(nil, repository.ErrObjectNotFound)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.SetDonorManualEnable(ctx, 3, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStorage_RecordDonation(t *testing.T) {
	ctx := context.Background()

	eligibleDonor := func() *repository.Donor {
		return &repository.Donor{
			ID:              9,
			BirthDate:       time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:          "male",
			Weight:          decimal.NewFromInt(80),
			BloodType:       "B+",
			ManuallyEnabled: true,
			BankID:          2,
		}
	}

	t.Run("records unit and triggers pass", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(9)).Return(eligibleDonor(), nil)
		m.donations.EXPECT().ListByDonorTx(ctx, m.tx, int64(9)).Return(nil, nil)
		m.donations.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, u *repository.DonationUnit) error {
				assert.True(t, u.Valid)
				assert.Equal(t, "B+", u.BloodType)
				assert.Equal(t, int64(2), u.BankID)
				assert.Equal(t, fixedTime, u.CollectionDate)
				u.ID = 500
				return nil
			})
		m.donors.EXPECT().UpdateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, d *repository.Donor) error {
				require.NotNil(t, d.LastDonationDate)
				assert.Equal(t, fixedTime, *d.LastDonationDate)
				assert.True(t, d.ManuallyEnabled)
				return nil
			})
		m.outbox.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, task *repository.OutboxTask) error {
				var event repository.InventoryEvent
				require.NoError(t, json.Unmarshal(task.Payload, &event))
				assert.Equal(t, repository.EventDonationRecorded, event.Type)
				assert.Equal(t, int64(500), event.UnitID)
				return nil
			})
		m.tx.EXPECT().Commit(ctx).Return(nil)
		m.orders.EXPECT().ListActiveByBank(gomock.Any(), int64(2)).Return(nil, nil)

		unit, err := s.RecordDonation(ctx, 9, domain.Plasma, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(500), unit.ID)
		assert.Equal(t, domain.Plasma, unit.Component)
	})

	t.Run("waiting period not elapsed", func(t *testing.T) {
		s, m := newTestStorage(t)

		last := fixedTime.AddDate(0, 0, -10)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(9)).Return(eligibleDonor(), nil)
		m.donations.EXPECT().ListByDonorTx(ctx, m.tx, int64(9)).Return([]*repository.DonationUnit{
			{ID: 1, CollectionDate: last, Component: "whole_blood", Valid: true},
		}, nil)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.RecordDonation(ctx, 9, domain.WholeBlood, nil)
		var ineligible *domain.IneligibleDonorError
		require.ErrorAs(t, err, &ineligible)
		assert.Equal(t, 80, ineligible.DaysRemaining)
	})

	t.Run("manually disabled donor", func(t *testing.T) {
		s, m := newTestStorage(t)

		donor := eligibleDonor()
		donor.ManuallyEnabled = false
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(9)).Return(donor, nil)
		m.donations.EXPECT().ListByDonorTx(ctx, m.tx, int64(9)).Return(nil, nil)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.RecordDonation(ctx, 9, domain.WholeBlood, nil)
		assert.True(t, domain.IsIneligible(err))
	})

	t.Run("site of another bank", func(t *testing.T) {
		s, m := newTestStorage(t)

		site := int64(4)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donors.EXPECT().GetByIDTx(ctx, m.tx, int64(9)).Return(eligibleDonor(), nil)
		m.directory.EXPECT().GetSite(ctx, site).Return(&repository.CollectionSite{ID: site, BankID: 3}, nil)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.RecordDonation(ctx, 9, domain.WholeBlood, &site)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown component", func(t *testing.T) {
		s, _ := newTestStorage(t)

		_, err := s.RecordDonation(ctx, 9, domain.Component("serum"), nil)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestStorage_AttemptFulfill(t *testing.T) {
	ctx := context.Background()
	active := func() *repository.RequestOrder {
		return &repository.RequestOrder{ID: 30, HospitalID: 4, BankID: 2, State: "active"}
	}

	t.Run("terminal order is left alone", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.orders.EXPECT().GetByID(ctx, int64(30)).Return(&repository.RequestOrder{ID: 30, BankID: 2, State: "cancelled"}, nil)

		outcome, err := s.AttemptFulfill(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, domain.NotActive, outcome)
	})

	t.Run("insufficient stock is pending", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.orders.EXPECT().GetByID(ctx, int64(30)).Return(active(), nil)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donations.EXPECT().LockBankTx(ctx, m.tx, int64(2)).Return(nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(30)).Return(active(), nil)
		m.orders.EXPECT().GetLinesTx(ctx, m.tx, int64(30)).Return([]*repository.RequestLine{
			{ID: 1, OrderID: 30, BloodType: "O-", Component: "red_cells", Quantity: 3},
		}, nil)
		m.donations.EXPECT().ListAvailableTx(ctx, m.tx, int64(2), "O-", "red_cells").Return([]*repository.DonationUnit{{ID: 10}, {ID: 11}}, nil)
		m.tx.EXPECT().Commit(ctx).Return(nil)

		outcome, err := s.AttemptFulfill(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, domain.Pending, outcome)
	})

	t.Run("lines sharing a bucket take disjoint slices", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.orders.EXPECT().GetByID(ctx, int64(30)).Return(active(), nil)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donations.EXPECT().LockBankTx(ctx, m.tx, int64(2)).Return(nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(30)).Return(active(), nil)
		m.orders.EXPECT().GetLinesTx(ctx, m.tx, int64(30)).Return([]*repository.RequestLine{
			{ID: 1, OrderID: 30, BloodType: "O-", Component: "plasma", Quantity: 2},
			{ID: 2, OrderID: 30, BloodType: "A+", Component: "plasma", Quantity: 1},
			{ID: 3, OrderID: 30, BloodType: "O-", Component: "plasma", Quantity: 1},
		}, nil)
		m.donations.EXPECT().ListAvailableTx(ctx, m.tx, int64(2), "O-", "plasma").
			Return([]*repository.DonationUnit{{ID: 10}, {ID: 11}, {ID: 12}, {ID: 13}}, nil)
		m.donations.EXPECT().ListAvailableTx(ctx, m.tx, int64(2), "A+", "plasma").
			Return([]*repository.DonationUnit{{ID: 20}}, nil)
		m.donations.EXPECT().ConsumeTx(ctx, m.tx, []int64{10, 11, 20, 12}, int64(30), fixedTime).Return(nil)
		m.orders.EXPECT().UpdateStateTx(ctx, m.tx, int64(30), "concluded", fixedTime).Return(nil)
		m.history.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.outbox.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.tx.EXPECT().Commit(ctx).Return(nil)

		outcome, err := s.AttemptFulfill(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, domain.Fulfilled, outcome)
	})

	t.Run("already consumed unit rolls back", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.orders.EXPECT().GetByID(ctx, int64(30)).Return(active(), nil)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donations.EXPECT().LockBankTx(ctx, m.tx, int64(2)).Return(nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(30)).Return(active(), nil)
		m.orders.EXPECT().GetLinesTx(ctx, m.tx, int64(30)).Return([]*repository.RequestLine{
			{ID: 1, OrderID: 30, BloodType: "O-", Component: "plasma", Quantity: 1},
		}, nil)
		m.donations.EXPECT().ListAvailableTx(ctx, m.tx, int64(2), "O-", "plasma").Return([]*repository.DonationUnit{{ID: 10}}, nil)
		m.donations.EXPECT().ConsumeTx(ctx, m.tx, []int64{10}, int64(30), fixedTime).Return(repository.ErrAlreadyConsumed)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		_, err := s.AttemptFulfill(ctx, 30)
		assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)
	})

	t.Run("order closed while waiting for the lock", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.orders.EXPECT().GetByID(ctx, int64(30)).Return(active(), nil)
		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.donations.EXPECT().LockBankTx(ctx, m.tx, int64(2)).Return(nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(30)).Return(&repository.RequestOrder{ID: 30, BankID: 2, State: "concluded"}, nil)
		m.tx.EXPECT().Commit(ctx).Return(nil)

		outcome, err := s.AttemptFulfill(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, domain.NotActive, outcome)
	})
}

func TestStorage_CancelRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("other hospital", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(8)).Return(&repository.RequestOrder{ID: 8, HospitalID: 1, State: "active"}, nil)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		err := s.CancelRequest(ctx, 8, 2)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("terminal order", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(8)).Return(&repository.RequestOrder{ID: 8, HospitalID: 1, State: "concluded"}, nil)
		m.tx.EXPECT().Rollback(ctx).Return(nil)

		err := s.CancelRequest(ctx, 8, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("success", func(t *testing.T) {
		s, m := newTestStorage(t)

		m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
		m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(8)).Return(&repository.RequestOrder{ID: 8, HospitalID: 1, BankID: 2, State: "active"}, nil)
		m.orders.EXPECT().UpdateStateTx(ctx, m.tx, int64(8), "cancelled", fixedTime).Return(nil)
		m.history.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ db.Tx, h *repository.HistoryEntry) error {
				assert.Equal(t, int64(8), h.OrderID)
				assert.Equal(t, "cancelled", h.State)
				return nil
			})
		m.outbox.EXPECT().CreateTx(ctx, m.tx, gomock.Any()).Return(nil)
		m.tx.EXPECT().Commit(ctx).Return(nil)

		assert.NoError(t, s.CancelRequest(ctx, 8, 1))
	})
}

func TestStorage_RejectRequest(t *testing.T) {
	ctx := context.Background()
	s, m := newTestStorage(t)

	m.db.EXPECT().BeginTx(ctx).Return(m.tx, nil)
	m.orders.EXPECT().GetByIDTx(ctx, m.tx, int64(8)).Return(nil, repository.ErrObjectNotFound)
	m.tx.EXPECT().Rollback(ctx).Return(nil)

	err := s.RejectRequest(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_SubmitRequestValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	cases := map[string][]domain.LineRequest{
		"no lines":      nil,
		"zero quantity": {{BloodType: domain.APositive, Component: domain.Plasma, Quantity: 0}},
		"bad type":      {{BloodType: "Z", Component: domain.Plasma, Quantity: 1}},
		"bad component": {{BloodType: domain.APositive, Component: "blood", Quantity: 1}},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.SubmitRequest(ctx, 1, lines)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestStorage_QueryStockLevels(t *testing.T) {
	ctx := context.Background()
	s, m := newTestStorage(t)

	component := domain.RedCells
	m.directory.EXPECT().GetBank(ctx, int64(2)).Return(&repository.Bank{ID: 2}, nil)
	m.donations.EXPECT().CountAvailable(ctx, int64(2), repository.StockFilter{}).Return([]repository.StockCount{
		{BloodType: "O-", Component: "red_cells", Available: 7},
		{BloodType: "A+", Component: "red_cells", Available: 2},
		{BloodType: "A+", Component: "plasma", Available: 9},
	}, nil)

	report, err := s.QueryStock(ctx, 2, domain.StockFilter{Component: &component})
	require.NoError(t, err)

	assert.Len(t, report.Buckets, len(domain.BloodTypes))
	assert.Equal(t, 9, report.Total)
	levels := make(map[domain.BloodType]domain.StockLevel)
	for _, b := range report.Buckets {
		levels[b.BloodType] = b.Level
	}
	assert.Equal(t, domain.StockOK, levels[domain.ONegative])
	assert.Equal(t, domain.StockLow, levels[domain.APositive])
	assert.Equal(t, domain.StockCritical, levels[domain.BNegative])
}

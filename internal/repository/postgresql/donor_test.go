package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository/postgresql"
)

func TestDonorRepo_CreateTx(t *testing.T) {
	ctx := context.Background()
	donor := &repository.Donor{
		NationalID: "123.456.789-00",
		Name:       "Ana",
		BirthDate:  time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:     "female",
		Weight:     decimal.NewFromInt(62),
		BloodType:  "A+",
		BankID:     1,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewDonorRepo(mock_database.NewMockDB(ctrl))

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, dest *int64, _ string, _ ...interface{}) error {
				*dest = 11
				return nil
			})

		d := *donor
		assert.NoError(t, repo.CreateTx(ctx, mockTx, &d))
		assert.Equal(t, int64(11), d.ID)
	})

	t.Run("duplicate national id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewDonorRepo(mock_database.NewMockDB(ctrl))

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23505"})

		d := *donor
		err := repo.CreateTx(ctx, mockTx, &d)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})
}

func TestDonorRepo_GetByNationalID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewDonorRepo(mockDB)

	mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), "000").Return(pgx.ErrNoRows)

	donor, err := repo.GetByNationalID(context.Background(), "000")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	assert.Nil(t, donor)
}

func TestDonorRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("bank only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonorRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), int64(1)).Return(nil)

		_, err := repo.List(ctx, repository.DonorFilter{BankID: 1, EnabledOnly: true})
		assert.NoError(t, err)
	})

	t.Run("with blood type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDonorRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), int64(1), "AB-").Return(nil)

		_, err := repo.List(ctx, repository.DonorFilter{BankID: 1, BloodType: "AB-"})
		assert.NoError(t, err)
	})
}

func TestDonorRepo_UpdateTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewDonorRepo(mock_database.NewMockDB(ctrl))

	mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(),
		gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), int64(5)).
		Return(pgconn.CommandTag("UPDATE 0"), nil)

	err := repo.UpdateTx(context.Background(), mockTx, &repository.Donor{ID: 5})
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}

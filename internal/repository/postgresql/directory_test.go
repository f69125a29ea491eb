package postgresql_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/repository/postgresql"
)

func TestDirectoryRepo_GetHospital(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDirectoryRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), int64(4)).
			DoAndReturn(func(_ context.Context, dest *repository.Hospital, _ string, _ ...interface{}) error {
				*dest = repository.Hospital{ID: 4, Name: "St. Mary", BankID: 2}
				return nil
			})

		hospital, err := repo.GetHospital(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(2), hospital.BankID)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewDirectoryRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), int64(4)).Return(pgx.ErrNoRows)

		hospital, err := repo.GetHospital(ctx, 4)
		assert.Nil(t, hospital)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestDirectoryRepo_GetSite(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewDirectoryRepo(mockDB)

	mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), int64(9)).
		DoAndReturn(func(_ context.Context, dest *repository.CollectionSite, _ string, _ ...interface{}) error {
			*dest = repository.CollectionSite{ID: 9, Name: "Downtown", BankID: 1}
			return nil
		})

	site, err := repo.GetSite(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Downtown", site.Name)
}

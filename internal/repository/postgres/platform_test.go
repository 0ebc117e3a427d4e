package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/testutil"
)

func Test_PlatformRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create and get", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := PlatformRepo{DB: tx}

			created, err := repo.Create(t.Context(), "Platform A", false)
			require.NoError(t, err)
			require.NotZero(t, created.ID)
			require.Equal(t, "Platform A", created.Name)
			require.False(t, created.Published)

			got, err := repo.Get(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
		})
	})

	t.Run("get unknown platform", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := PlatformRepo{DB: tx}

			_, err := repo.Get(t.Context(), 424242)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrPlatformNotFound)
		})
	})

	t.Run("set published", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := PlatformRepo{DB: tx}
			created, err := repo.Create(t.Context(), "Platform A", false)
			require.NoError(t, err)

			got, err := repo.SetPublished(t.Context(), created.ID, true)

			require.NoError(t, err)
			require.True(t, got.Published)
		})
	})

	t.Run("list published only", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := PlatformRepo{DB: tx}
			_, err := repo.Create(t.Context(), "Visible", true)
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "Hidden", false)
			require.NoError(t, err)

			published, err := repo.List(t.Context(), true)
			require.NoError(t, err)
			require.Len(t, published, 1)
			assert.Equal(t, "Visible", published[0].Name)

			all, err := repo.List(t.Context(), false)
			require.NoError(t, err)
			require.Len(t, all, 2)
		})
	})
}

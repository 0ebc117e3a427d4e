package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/models"
	"github.com/nazh/votelink/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func makeToken() models.Token {
	return models.Token{
		ID:          uuid.New(),
		Identity:    "buyer@example.com",
		ExternalRef: 1001,
		Secret:      uuid.NewString(),
		Status:      models.TokenActive,
		CreatedAt:   mustParseTime("2024-01-01 19:00:01Z"),
		ExpiresAt:   mustParseTime("2200-01-01 03:00:02Z"),
		UsedAt:      nil,
	}
}

func Test_TokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()

			got, err := repo.Create(t.Context(), token)

			require.NoError(t, err)
			require.Equal(t, token.ID, got.ID)
			require.Equal(t, token.Identity, got.Identity)
			require.Equal(t, token.ExternalRef, got.ExternalRef)
			require.Equal(t, token.Secret, got.Secret)
			require.Equal(t, models.TokenActive, got.Status)
			require.WithinDuration(t, token.CreatedAt, got.CreatedAt, time.Microsecond)
			require.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, time.Microsecond)
			require.Nil(t, got.UsedAt, "UsedAt should be nil for a fresh token")
		})
	})

	t.Run("create with taken secret", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			second := makeToken()
			second.Secret = token.Secret
			_, err = repo.Create(t.Context(), second)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrSecretTaken)
		})
	})

	t.Run("get token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), token.Secret)

			require.NoError(t, err)
			require.Equal(t, token.ID, got.ID)
			require.Equal(t, token.Secret, got.Secret)
			require.WithinDuration(t, token.CreatedAt, got.CreatedAt, 0)
			require.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, 0)
		})
	})

	t.Run("get unknown secret", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}

			_, err := repo.Get(t.Context(), "no-such-secret")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
		})
	})

	t.Run("consume active token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			now := time.Now().UTC()
			got, err := repo.Consume(t.Context(), token.Secret, now)

			require.NoError(t, err)
			require.Equal(t, models.TokenUsed, got.Status)
			require.NotNil(t, got.UsedAt, "consumed token must carry used_at")
			require.WithinDuration(t, now, *got.UsedAt, time.Microsecond)
		})
	})

	t.Run("consume is single use", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			first, err := repo.Consume(t.Context(), token.Secret, time.Now().UTC())
			require.NoError(t, err, "first consume must win")

			_, err = repo.Consume(t.Context(), token.Secret, time.Now().UTC())
			require.Error(t, err, "second consume must lose")
			require.ErrorIs(t, err, apperrors.ErrTokenUsed)

			// The losing call must not move used_at
			got, err := repo.Get(t.Context(), token.Secret)
			require.NoError(t, err)
			assert.WithinDuration(t, *first.UsedAt, *got.UsedAt, 0, "used_at must stay at the winner's time")
		})
	})

	t.Run("consume expired token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			token.ExpiresAt = mustParseTime("2024-01-02 19:00:01Z") // long gone
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			_, err = repo.Consume(t.Context(), token.Secret, time.Now().UTC())

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

			// Expired token must never transition to used
			got, err := repo.Get(t.Context(), token.Secret)
			require.NoError(t, err)
			assert.Equal(t, models.TokenActive, got.Status)
			assert.Nil(t, got.UsedAt)
		})
	})

	t.Run("consume unknown secret", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}

			_, err := repo.Consume(t.Context(), "no-such-secret", time.Now().UTC())

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
		})
	})

	t.Run("consume used and expired token reports used", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			token := makeToken()
			token.ExpiresAt = mustParseTime("2024-01-02 19:00:01Z")
			token.Status = models.TokenUsed
			usedAt := mustParseTime("2024-01-01 20:00:00Z")
			token.UsedAt = &usedAt
			_, err := repo.Create(t.Context(), token)
			require.NoError(t, err)

			_, err = repo.Consume(t.Context(), token.Secret, time.Now().UTC())

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrTokenUsed, "used must win over expired")
		})
	})

	t.Run("list recent tokens", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TokenRepo{DB: tx}
			for i := range 3 {
				token := makeToken()
				token.CreatedAt = token.CreatedAt.Add(time.Duration(i) * time.Hour)
				_, err := repo.Create(t.Context(), token)
				require.NoError(t, err)
			}

			got, err := repo.ListRecent(t.Context(), 2)

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt), "newest first")
		})
	})
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/models"
)

type TokenRepo struct {
	DB DBTX
}

const createToken = `-- name: CreateToken
INSERT INTO tokens (id, identity, external_ref, secret, status, created_at, expires_at, used_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, identity, external_ref, secret, status, created_at, expires_at, used_at
`

func (r *TokenRepo) Create(ctx context.Context, token models.Token) (models.Token, error) {
	rows, _ := r.DB.Query(ctx, createToken,
		token.ID, token.Identity, token.ExternalRef, token.Secret,
		token.Status, token.CreatedAt, token.ExpiresAt, token.UsedAt,
	)
	created, err := pgx.CollectOneRow(rows, rowToToken)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, fmt.Errorf("repo error: %w", apperrors.ErrSecretTaken)
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getToken = `-- name: GetToken by secret
SELECT id, identity, external_ref, secret, status, created_at, expires_at, used_at
FROM tokens
WHERE secret = $1
`

// Get token by secret
// Returns the row whatever state it is in: used or expired included
func (r *TokenRepo) Get(ctx context.Context, secret string) (models.Token, error) {
	rows, _ := r.DB.Query(ctx, getToken, secret)
	token, err := pgx.CollectOneRow(rows, rowToToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

// Conditional transition active -> used. Succeeds for at most one caller:
// the WHERE clause re-checks both status and expiry at commit time, so an
// expired token can never become used and a raced token updates zero rows.
const consumeToken = `-- name: ConsumeToken
WITH consumed AS (
	UPDATE tokens
	SET status = 'used', used_at = $2
	WHERE secret = $1 AND status = 'active' AND expires_at > $2
	RETURNING id, identity, external_ref, secret, status, created_at, expires_at, used_at
)
SELECT * FROM consumed
`

func (r *TokenRepo) Consume(ctx context.Context, secret string, now time.Time) (models.Token, error) {
	rows, _ := r.DB.Query(ctx, consumeToken, secret, now)
	token, err := pgx.CollectOneRow(rows, rowToToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return r.classifyConsumeMiss(ctx, secret, now)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

// classifyConsumeMiss re-reads the row to tell the caller why the
// conditional update matched nothing. Used wins over expired so an
// already-consumed token never reports as merely expired.
func (r *TokenRepo) classifyConsumeMiss(ctx context.Context, secret string, now time.Time) (models.Token, error) {
	token, err := r.Get(ctx, secret)
	if err != nil {
		return token, err
	}

	switch {
	case token.Status == models.TokenUsed:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrTokenUsed)
	case !token.ExpiresAt.After(now):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrTokenExpired)
	default:
		// The row was active and unexpired on the re-read: the miss was
		// transient (e.g. raced with an update that rolled back)
		return token, fmt.Errorf("db error: token %s not consumable", token.ID)
	}
}

const listRecentTokens = `-- name: ListRecentTokens
SELECT id, identity, external_ref, secret, status, created_at, expires_at, used_at
FROM tokens
ORDER BY created_at DESC
LIMIT $1
`

func (r *TokenRepo) ListRecent(ctx context.Context, limit int) ([]models.Token, error) {
	rows, _ := r.DB.Query(ctx, listRecentTokens, limit)
	tokens, err := pgx.CollectRows(rows, rowToToken)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

func rowToToken(row pgx.CollectableRow) (models.Token, error) {
	var t models.Token
	err := row.Scan(&t.ID, &t.Identity, &t.ExternalRef, &t.Secret, &t.Status, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	return t, err
}

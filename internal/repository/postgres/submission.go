package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/models"
)

type SubmissionRepo struct {
	DB DBTX
}

const createSubmission = `-- name: CreateSubmission
INSERT INTO submissions (id, token_id, identity, platform_id, platform_name, external_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, token_id, identity, platform_id, platform_name, external_ref, created_at
`

func (r *SubmissionRepo) Create(ctx context.Context, sub models.Submission) (models.Submission, error) {
	rows, _ := r.DB.Query(ctx, createSubmission,
		sub.ID, sub.TokenID, sub.Identity, sub.PlatformID,
		sub.PlatformName, sub.ExternalRef, sub.CreatedAt,
	)
	created, err := pgx.CollectOneRow(rows, rowToSubmission)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return created, fmt.Errorf("repo error: %w", apperrors.ErrSubmissionExists)
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getSubmissionByTokenID = `-- name: GetSubmissionByTokenID
SELECT id, token_id, identity, platform_id, platform_name, external_ref, created_at
FROM submissions
WHERE token_id = $1
`

func (r *SubmissionRepo) GetByTokenID(ctx context.Context, tokenID uuid.UUID) (models.Submission, error) {
	rows, _ := r.DB.Query(ctx, getSubmissionByTokenID, tokenID)
	sub, err := pgx.CollectOneRow(rows, rowToSubmission)

	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, pgx.ErrNoRows):
		return sub, fmt.Errorf("repo error: submission for token %s: %w", tokenID, pgx.ErrNoRows)
	default:
		return sub, fmt.Errorf("db error: %w", err)
	}
}

const listRecentSubmissions = `-- name: ListRecentSubmissions
SELECT id, token_id, identity, platform_id, platform_name, external_ref, created_at
FROM submissions
ORDER BY created_at DESC
LIMIT $1
`

func (r *SubmissionRepo) ListRecent(ctx context.Context, limit int) ([]models.Submission, error) {
	rows, _ := r.DB.Query(ctx, listRecentSubmissions, limit)
	subs, err := pgx.CollectRows(rows, rowToSubmission)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return subs, nil
}

const totalsByPlatform = `-- name: TotalsByPlatform
SELECT platform_id, platform_name, COUNT(*) AS votes
FROM submissions
GROUP BY platform_id, platform_name
ORDER BY votes DESC
`

func (r *SubmissionRepo) TotalsByPlatform(ctx context.Context) ([]models.PlatformTotal, error) {
	rows, _ := r.DB.Query(ctx, totalsByPlatform)
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlatformTotal, error) {
		var t models.PlatformTotal
		err := row.Scan(&t.PlatformID, &t.PlatformName, &t.Votes)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return totals, nil
}

func rowToSubmission(row pgx.CollectableRow) (models.Submission, error) {
	var s models.Submission
	err := row.Scan(&s.ID, &s.TokenID, &s.Identity, &s.PlatformID, &s.PlatformName, &s.ExternalRef, &s.CreatedAt)
	return s, err
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/models"
)

type PlatformRepo struct {
	DB DBTX
}

const createPlatform = `-- name: CreatePlatform
INSERT INTO platforms (name, published, created_at)
VALUES ($1, $2, now())
RETURNING id, name, published, created_at
`

func (r *PlatformRepo) Create(ctx context.Context, name string, published bool) (models.Platform, error) {
	rows, _ := r.DB.Query(ctx, createPlatform, name, published)
	platform, err := pgx.CollectOneRow(rows, rowToPlatform)
	if err != nil {
		return platform, fmt.Errorf("db error: %w", err)
	}
	return platform, nil
}

const getPlatform = `-- name: GetPlatform
SELECT id, name, published, created_at
FROM platforms
WHERE id = $1
`

func (r *PlatformRepo) Get(ctx context.Context, id int64) (models.Platform, error) {
	rows, _ := r.DB.Query(ctx, getPlatform, id)
	platform, err := pgx.CollectOneRow(rows, rowToPlatform)

	switch {
	case err == nil:
		return platform, nil
	case errors.Is(err, pgx.ErrNoRows):
		return platform, fmt.Errorf("repo error: %w", apperrors.ErrPlatformNotFound)
	default:
		return platform, fmt.Errorf("db error: %w", err)
	}
}

const setPlatformPublished = `-- name: SetPlatformPublished
UPDATE platforms
SET published = $2
WHERE id = $1
RETURNING id, name, published, created_at
`

func (r *PlatformRepo) SetPublished(ctx context.Context, id int64, published bool) (models.Platform, error) {
	rows, _ := r.DB.Query(ctx, setPlatformPublished, id, published)
	platform, err := pgx.CollectOneRow(rows, rowToPlatform)

	switch {
	case err == nil:
		return platform, nil
	case errors.Is(err, pgx.ErrNoRows):
		return platform, fmt.Errorf("repo error: %w", apperrors.ErrPlatformNotFound)
	default:
		return platform, fmt.Errorf("db error: %w", err)
	}
}

const listPlatforms = `-- name: ListPlatforms
SELECT id, name, published, created_at
FROM platforms
WHERE published OR NOT $1
ORDER BY id
`

func (r *PlatformRepo) List(ctx context.Context, publishedOnly bool) ([]models.Platform, error) {
	rows, _ := r.DB.Query(ctx, listPlatforms, publishedOnly)
	platforms, err := pgx.CollectRows(rows, rowToPlatform)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return platforms, nil
}

func rowToPlatform(row pgx.CollectableRow) (models.Platform, error) {
	var p models.Platform
	err := row.Scan(&p.ID, &p.Name, &p.Published, &p.CreatedAt)
	return p, err
}

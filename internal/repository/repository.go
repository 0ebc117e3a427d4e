package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nazh/votelink/internal/models"
)

// Token repository interface
type TokenRepo interface {
	// Create a token row
	// If the secret collides with an existing row must return
	// an error matching pgerrcode.UniqueViolation semantics so the
	// issuer can retry with a fresh secret
	Create(ctx context.Context, token models.Token) (models.Token, error)

	// Return the token by its secret whatever state it is in
	// If no row exists must return apperrors.ErrTokenNotFound
	Get(ctx context.Context, secret string) (models.Token, error)

	// Consume performs the compare-and-swap transition active -> used.
	// The update succeeds only if the row is still active and not past
	// expiry at commit time. On a zero-row update the token is re-read
	// to classify the failure:
	//   apperrors.ErrTokenNotFound if no such secret
	//   apperrors.ErrTokenUsed     if another caller won the race
	//   apperrors.ErrTokenExpired  if the token ran out before commit
	Consume(ctx context.Context, secret string, now time.Time) (models.Token, error)

	// List most recent tokens for the operator view
	ListRecent(ctx context.Context, limit int) ([]models.Token, error)
}

// Submission repository interface
type SubmissionRepo interface {
	// Create a submission row
	// Must return apperrors.ErrSubmissionExists if the token already
	// has a submission (unique token_id backstop)
	Create(ctx context.Context, sub models.Submission) (models.Submission, error)

	// Get submission by the token that produced it
	GetByTokenID(ctx context.Context, tokenID uuid.UUID) (models.Submission, error)

	// List most recent submissions for the operator view
	ListRecent(ctx context.Context, limit int) ([]models.Submission, error)

	// Vote counts grouped by platform, most voted first
	TotalsByPlatform(ctx context.Context) ([]models.PlatformTotal, error)
}

// Platform repository interface
type PlatformRepo interface {
	Create(ctx context.Context, name string, published bool) (models.Platform, error)

	// If platform not found must return apperrors.ErrPlatformNotFound
	Get(ctx context.Context, id int64) (models.Platform, error)

	SetPublished(ctx context.Context, id int64, published bool) (models.Platform, error)

	// List platforms; publishedOnly narrows to the public listing
	List(ctx context.Context, publishedOnly bool) ([]models.Platform, error)
}

// Storage aggregates the repositories over a shared connection or
// transaction
type Storage interface {
	Tokens() TokenRepo
	Submissions() SubmissionRepo
	Platforms() PlatformRepo

	// InTx runs fn with a Storage bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Storage) error) error
}

package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/logger"
	"github.com/nazh/votelink/internal/models"
	"github.com/nazh/votelink/internal/repository"
)

const notifyTimeout = 10 * time.Second

// checker reports token state: nil error means active
type checker interface {
	Check(ctx context.Context, secret string) (models.Token, error)
}

// notifier delivers post-commit messages, best effort
type notifier interface {
	SendConfirmation(ctx context.Context, sub models.Submission) error
	SendOperatorNotice(ctx context.Context, sub models.Submission) error
}

// Service runs the vote consumption workflow: validate the token,
// check the target platform, atomically spend the token and record
// the submission, then notify.
type Service struct {
	storage  repository.Storage
	tokens   checker
	notifier notifier
	logger   logger.Logger
}

func NewService(storage repository.Storage, tokens checker, n notifier, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOp()
	}

	return &Service{
		storage:  storage,
		tokens:   tokens,
		notifier: n,
		logger:   l,
	}
}

// Gate decides whether a presented secret may see the protected vote
// page. Pure read, callers must not leak WHY access was denied.
func (s *Service) Gate(ctx context.Context, secret string) (models.Token, error) {
	return s.tokens.Check(ctx, secret)
}

// Cast spends the token on the given platform.
//
// The commit is a single transaction: a conditional update flips the
// token active -> used only if it is still active and unexpired, then
// the submission row is inserted. Of N concurrent callers with the
// same secret exactly one commits; the rest get apperrors.ErrTokenUsed.
// Notifications run after the commit and never undo it.
func (s *Service) Cast(ctx context.Context, secret string, platformID int64) (models.Submission, error) {
	var sub models.Submission

	// Step 1: the token must be active
	token, err := s.tokens.Check(ctx, secret)
	if err != nil {
		return sub, err
	}

	// Step 2: the target must exist and be published
	platform, err := s.storage.Platforms().Get(ctx, platformID)
	if err != nil {
		return sub, err
	}
	if !platform.Published {
		return sub, apperrors.ErrPlatformUnpublished
	}

	// Step 3: atomic commit
	now := time.Now().UTC()
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		consumed, err := st.Tokens().Consume(ctx, secret, now)
		if err != nil {
			return err
		}

		sub, err = st.Submissions().Create(ctx, models.Submission{
			ID:           uuid.New(),
			TokenID:      consumed.ID,
			Identity:     consumed.Identity,
			PlatformID:   platform.ID,
			PlatformName: platform.Name,
			ExternalRef:  consumed.ExternalRef,
			CreatedAt:    now,
		})
		return err
	})

	switch {
	case err == nil:
		// committed
	case errors.Is(err, apperrors.ErrSubmissionExists):
		// Should be unreachable: the conditional token update already
		// rejects the second caller. The unique token_id constraint is
		// the schema-level backstop.
		return sub, fmt.Errorf("%w: %w", apperrors.ErrTokenUsed, err)
	default:
		return sub, err
	}

	s.logger.Info("vote recorded",
		"token_id", token.ID,
		"platform_id", platform.ID,
		"external_ref", token.ExternalRef,
	)

	// Step 4: best-effort notifications, detached from the request so
	// a slow mailer or an impatient caller cannot affect the commit
	go s.notify(sub)

	return sub, nil
}

func (s *Service) notify(sub models.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.notifier.SendConfirmation(ctx, sub); err != nil {
		s.logger.Warn("Failed to send vote confirmation", "error", err, "submission_id", sub.ID)
	}
	if err := s.notifier.SendOperatorNotice(ctx, sub); err != nil {
		s.logger.Warn("Failed to send operator notice", "error", err, "submission_id", sub.ID)
	}
}

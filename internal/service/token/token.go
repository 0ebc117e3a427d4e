package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nazh/votelink/internal/apperrors"
	"github.com/nazh/votelink/internal/models"
	"github.com/nazh/votelink/internal/repository"
)

const (
	// 16 random bytes give 128 bits of entropy, enough to make
	// guessing a live secret infeasible
	secretBytesLen = 16

	// How many fresh secrets to try when the unique constraint trips
	issueRetries = 3
)

// Service issues and validates one-time vote tokens
type Service struct {
	tokens repository.TokenRepo
}

func NewService(tokens repository.TokenRepo) *Service {
	return &Service{tokens: tokens}
}

// Issue creates an active token bound to (identity, externalRef) that
// expires after the given window. The caller is responsible for
// delivering the secret to the identity out of band.
func (s *Service) Issue(ctx context.Context, identity string, externalRef int64, window time.Duration) (models.Token, error) {
	var token models.Token

	if identity == "" {
		return token, apperrors.ErrIdentityEmpty
	}
	if window <= 0 {
		return token, apperrors.ErrExpiryInvalid
	}

	now := time.Now().UTC()

	for range issueRetries {
		secret, err := generateSecret()
		if err != nil {
			return token, fmt.Errorf("error while generating token secret. Err: %w", err)
		}

		token, err = s.tokens.Create(ctx, models.Token{
			ID:          uuid.New(),
			Identity:    identity,
			ExternalRef: externalRef,
			Secret:      secret,
			Status:      models.TokenActive,
			CreatedAt:   now,
			ExpiresAt:   now.Add(window),
			UsedAt:      nil,
		})

		switch {
		case err == nil:
			return token, nil
		case errors.Is(err, apperrors.ErrSecretTaken):
			continue
		default:
			return token, fmt.Errorf("error while saving token. Err: %w", err)
		}
	}

	return token, fmt.Errorf("secret collided %d times: %w", issueRetries, apperrors.ErrTokenIssuance)
}

// Check reports the state of a secret without side effects.
// Nil error means the token is active; otherwise one of
// apperrors.{ErrTokenNotFound, ErrTokenUsed, ErrTokenExpired}.
// Used wins over expired: an already-consumed token must never read
// as merely expired.
func (s *Service) Check(ctx context.Context, secret string) (models.Token, error) {
	token, err := s.tokens.Get(ctx, secret)
	if err != nil {
		return token, err
	}

	switch {
	case token.Status == models.TokenUsed:
		return token, apperrors.ErrTokenUsed
	case !token.ExpiresAt.After(time.Now().UTC()):
		return token, apperrors.ErrTokenExpired
	default:
		return token, nil
	}
}

func generateSecret() (string, error) {
	b := make([]byte, secretBytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package apperrors

import (
	"errors"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenUsed     = errors.New("token is already used")
	ErrTokenExpired  = errors.New("token is expired")
	ErrTokenIssuance = errors.New("token could not be issued")
	ErrSecretTaken   = errors.New("token secret already exists")

	ErrIdentityEmpty = errors.New("identity must not be empty")
	ErrExpiryInvalid = errors.New("expiry window must be positive")

	ErrPlatformNotFound    = errors.New("platform not found")
	ErrPlatformUnpublished = errors.New("platform is not published")

	ErrSubmissionExists = errors.New("submission already exists for this token")

	ErrOperatorUnauthorized = errors.New("operator credentials are not valid")
)

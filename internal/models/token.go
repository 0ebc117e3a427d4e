package models

import (
	"time"

	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenActive TokenStatus = "active"
	TokenUsed   TokenStatus = "used"
)

// Token is a single-use bearer capability bound to the purchase that
// triggered it. Rows are never deleted, only transitioned to used or
// left expired, so the table doubles as an audit trail.
type Token struct {
	ID          uuid.UUID
	Identity    string // bearer email, used for correlation only
	ExternalRef int64  // order id in the commerce system
	Secret      string
	Status      TokenStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time // nil while the token is not consumed
}

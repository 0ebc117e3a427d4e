package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the immutable record of one consumed token.
// At most one submission may reference a given token.
type Submission struct {
	ID           uuid.UUID
	TokenID      uuid.UUID
	Identity     string
	PlatformID   int64
	PlatformName string // denormalized label at the time of the vote
	ExternalRef  int64
	CreatedAt    time.Time
}

// PlatformTotal is an aggregated vote count for reporting.
type PlatformTotal struct {
	PlatformID   int64
	PlatformName string
	Votes        int64
}

package models

import (
	"time"
)

// Platform is a vote target. Votes may only be cast for published platforms.
type Platform struct {
	ID        int64
	Name      string
	Published bool
	CreatedAt time.Time
}

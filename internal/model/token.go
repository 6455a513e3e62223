package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is the server-side record behind a bearer credential. Deleting
// the row revokes the credential even if its signature is still valid.
type AccessToken struct {
	ID         uuid.UUID
	UserID     int64
	Name       string
	ExpiresAt  time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

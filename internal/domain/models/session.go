package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the locally cached end-user session. It is a cache of what the
// identity backend issued, not a source of truth: authority is re-checked
// against the backend, expiry is checked locally first.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its backend-issued expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AdminSession carries no expiry: it lives until explicit logout or a cache
// wipe.
type AdminSession struct {
	AdminID   uuid.UUID `json:"admin_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

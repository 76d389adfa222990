package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an end user resolved from an access code.
type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	AccessCode string    `db:"access_code" json:"-"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at,omitempty" json:"created_at,omitempty"`
}

// AdminUser is a panel administrator with password credentials.
type AdminUser struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	LastLogin    time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}

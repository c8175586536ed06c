package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity providers a user account can originate from.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash *string   `json:"-" db:"password_hash"` // nil for accounts created via Google sign-in
	Provider     string    `json:"provider" db:"provider"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

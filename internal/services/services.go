package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"QROLY_BACK-END/internal/models"
)

var (
	// ErrProfileNotFound means no profile exists for the username.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoDestination means the profile exists but has no default redirect.
	ErrNoDestination = errors.New("no destination configured")

	ErrUserExists      = errors.New("email or username already registered")
	ErrUserNotFound    = errors.New("no user found")
	ErrPasswordNotSet  = errors.New("use OAuth provider to login")
	ErrInvalidPassword = errors.New("invalid password")
)

// ProfileRepository is the persistence used for link profiles.
// GetByUsername returns nil, nil when the profile does not exist.
type ProfileRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
}

// UserRepository is the persistence used for accounts.
// Lookups return nil, nil when no user matches.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateWithProfile(ctx context.Context, u *models.User, p *models.Profile) error
}

// ProfileCache is an optional read-through cache in front of ProfileRepository.
// Get returns nil, nil on a miss. Readers fill it with Add, which never
// replaces an entry; writers overwrite it with Set after the store write.
type ProfileCache interface {
	Get(ctx context.Context, username string) (*models.Profile, error)
	Add(ctx context.Context, p *models.Profile) (bool, error)
	Set(ctx context.Context, p *models.Profile) error
	Invalidate(ctx context.Context, username string) error
}

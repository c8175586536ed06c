package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/security"
	"QROLY_BACK-END/internal/store"
)

// AuthServiceProvider defines account registration and sign-in.
type AuthServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	GoogleSignIn(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService provides business logic for user accounts.
type AuthService struct {
	users  UserRepository
	hasher *security.Hasher
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepository, hasher *security.Hasher) *AuthService {
	return &AuthService{users: users, hasher: hasher, now: time.Now}
}

// Register creates a password account together with its empty profile.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		Provider:     models.ProviderCredentials,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateWithProfile(ctx, u, models.NewProfile(u.ID, u.Username)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate verifies identifier (email or username) and password.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		identifier = normalizeEmail(identifier)
	}
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.HasPassword() {
		return nil, ErrPasswordNotSet
	}
	if err := s.hasher.Compare(*u.PasswordHash, password); err != nil {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

// GoogleSignIn returns the account for email, creating a password-less one
// with an empty profile on first sign-in.
func (s *AuthService) GoogleSignIn(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u != nil {
		return u, nil
	}

	username, err := s.availableUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u = &models.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		Provider:  models.ProviderGoogle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateWithProfile(ctx, u, models.NewProfile(u.ID, u.Username)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create google user: %w", err)
	}
	log.Info().Str("user_id", u.ID.String()).Str("username", u.Username).Msg("Created account from Google sign-in")
	return u, nil
}

// GetUser returns the user with id or ErrUserNotFound.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// normalizeEmail folds an address to the form it is stored and looked up in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const usernameAttempts = 5

func (s *AuthService) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < usernameAttempts; i++ {
		taken, err := s.users.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return "", ErrUserExists
}

// usernameFromEmail derives a URL-safe username from the local part of email.
func usernameFromEmail(email string) string {
	local := strings.ToLower(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}

	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if len(name) < 3 {
		name = "user" + name
	}
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}

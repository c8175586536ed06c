package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"QROLY_BACK-END/internal/models"
)

const userColumns = `id, email, username, password_hash, provider, created_at, updated_at`

// UserStore reads and writes rows of the users table.
type UserStore struct {
	db DB
}

// NewUserStore returns a UserStore backed by db.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// GetByID returns the user with id, or nil if there is none.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with email, or nil if there is none.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByIdentifier looks a user up by email or username.
// It returns nil, nil when neither matches.
func (s *UserStore) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1 LIMIT 1`,
		identifier)
}

// UsernameTaken reports whether a user already owns username.
func (s *UserStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRow(ctx, `SELECT 1 FROM users WHERE username = $1`, username).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// CreateWithProfile inserts the user and its empty profile in one transaction.
func (s *UserStore) CreateWithProfile(ctx context.Context, u *models.User, p *models.Profile) error {
	social, err := json.Marshal(p.Links.Social)
	if err != nil {
		return fmt.Errorf("encode social links: %w", err)
	}
	payment, err := json.Marshal(p.Links.Payment)
	if err != nil {
		return fmt.Errorf("encode payment entries: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, provider, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Provider, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (user_id, username, social, payment, default_redirect, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6)`,
		u.ID, u.Username, string(social), string(payment), p.DefaultRedirect, u.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Provider, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

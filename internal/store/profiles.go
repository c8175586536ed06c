package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"QROLY_BACK-END/internal/models"
)

// ProfileStore reads and writes link documents in the profiles table.
type ProfileStore struct {
	db DB
}

// NewProfileStore returns a ProfileStore backed by db.
func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetByUsername returns the profile for username, or nil if there is none.
func (s *ProfileStore) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var (
		p       models.Profile
		social  []byte
		payment []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT user_id, username, social, payment, default_redirect, updated_at
		 FROM profiles WHERE username = $1`,
		username).Scan(&p.UserID, &p.Username, &social, &payment, &p.DefaultRedirect, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	if len(social) > 0 {
		if err := json.Unmarshal(social, &p.Links.Social); err != nil {
			return nil, fmt.Errorf("decode social links: %w", err)
		}
	}
	if len(payment) > 0 {
		if err := json.Unmarshal(payment, &p.Links.Payment); err != nil {
			return nil, fmt.Errorf("decode payment entries: %w", err)
		}
	}
	return &p, nil
}

// Save replaces social links, payment entries and the default redirect of the
// profile owned by p.Username and fills in p.UserID and p.UpdatedAt.
// Returns ErrNotFound when no such user exists.
func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	social, err := json.Marshal(p.Links.Social)
	if err != nil {
		return fmt.Errorf("encode social links: %w", err)
	}
	payment, err := json.Marshal(p.Links.Payment)
	if err != nil {
		return fmt.Errorf("encode payment entries: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, username, social, payment, default_redirect, updated_at)
		 SELECT id, username, $2::jsonb, $3::jsonb, $4, $5 FROM users WHERE username = $1
		 ON CONFLICT (username) DO UPDATE SET
		   social = EXCLUDED.social,
		   payment = EXCLUDED.payment,
		   default_redirect = EXCLUDED.default_redirect,
		   updated_at = EXCLUDED.updated_at
		 RETURNING user_id, updated_at`,
		p.Username, string(social), string(payment), p.DefaultRedirect, time.Now().UTC()).
		Scan(&p.UserID, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", mapError(err))
	}
	return nil
}

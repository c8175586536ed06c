package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/metrics"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/store"
)

// ProfileServiceProvider loads and saves a user's link profile.
type ProfileServiceProvider interface {
	Load(ctx context.Context, username string) (*models.Profile, error)
	Save(ctx context.Context, username string, links models.Links, defaultRedirect string) error
}

// ProfileService is the profile editor backing the dashboard.
type ProfileService struct {
	profiles ProfileRepository
	cache    ProfileCache
}

// NewProfileService creates a ProfileService. cache may be nil.
func NewProfileService(profiles ProfileRepository, cache ProfileCache) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache}
}

// Load returns the profile for username with missing collections replaced by
// empty ones.
func (s *ProfileService) Load(ctx context.Context, username string) (*models.Profile, error) {
	p, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", username, err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	p.Links.Normalize()
	return p, nil
}

// Save overwrites social links, payment entries and the default redirect of
// the profile in one write. Values are stored as given. The saved profile
// replaces any cached copy.
func (s *ProfileService) Save(ctx context.Context, username string, links models.Links, defaultRedirect string) error {
	links.Normalize()
	p := &models.Profile{
		Username:        username,
		Links:           links,
		DefaultRedirect: defaultRedirect,
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		metrics.ProfileSaves.WithLabelValues("error").Inc()
		if errors.Is(err, store.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("save profile %q: %w", username, err)
	}
	metrics.ProfileSaves.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("Profile cache write failed")
			if err := s.cache.Invalidate(ctx, username); err != nil {
				log.Warn().Err(err).Str("username", username).Msg("Profile cache invalidation failed")
			}
		}
	}
	return nil
}

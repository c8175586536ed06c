package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"QROLY_BACK-END/internal/metrics"
	"QROLY_BACK-END/internal/models"
)

// RedirectServiceProvider resolves a username to its public destination.
type RedirectServiceProvider interface {
	Resolve(ctx context.Context, username string) (string, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// RedirectService resolves public short links.
type RedirectService struct {
	profiles ProfileRepository
	cache    ProfileCache
}

// NewRedirectService creates a RedirectService. cache may be nil.
func NewRedirectService(profiles ProfileRepository, cache ProfileCache) *RedirectService {
	return &RedirectService{profiles: profiles, cache: cache}
}

// Resolve returns the stored default redirect for username exactly as saved.
// It returns ErrProfileNotFound when there is no profile and ErrNoDestination
// when the profile has no default redirect.
func (s *RedirectService) Resolve(ctx context.Context, username string) (string, error) {
	p, err := s.lookup(ctx, username)
	if err != nil {
		metrics.RedirectResolutions.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}
	if p == nil {
		metrics.RedirectResolutions.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return "", ErrProfileNotFound
	}
	if p.DefaultRedirect == "" {
		metrics.RedirectResolutions.WithLabelValues(metrics.OutcomeUnconfigured).Inc()
		return "", ErrNoDestination
	}
	metrics.RedirectResolutions.WithLabelValues(metrics.OutcomeRedirected).Inc()
	return p.DefaultRedirect, nil
}

// Exists reports whether a profile exists for username.
func (s *RedirectService) Exists(ctx context.Context, username string) (bool, error) {
	p, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

func (s *RedirectService) lookup(ctx context.Context, username string) (*models.Profile, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, username)
		switch {
		case err != nil:
			metrics.ProfileCacheRequests.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("username", username).Msg("Profile cache read failed")
		case p != nil:
			metrics.ProfileCacheRequests.WithLabelValues("hit").Inc()
			return p, nil
		default:
			metrics.ProfileCacheRequests.WithLabelValues("miss").Inc()
		}
	}

	p, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", username, err)
	}
	if p == nil {
		return nil, nil
	}

	if s.cache != nil {
		if _, err := s.cache.Add(ctx, p); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("Profile cache write failed")
		}
	}
	return p, nil
}

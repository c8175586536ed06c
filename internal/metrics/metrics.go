// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for redirect resolution.
const (
	OutcomeRedirected   = "redirected"
	OutcomeUnconfigured = "unconfigured"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

var (
	// RedirectResolutions counts public redirect lookups by outcome.
	RedirectResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qroly_redirect_resolutions_total",
		Help: "Public redirect lookups by outcome.",
	}, []string{"outcome"})

	// ProfileCacheRequests counts profile cache lookups by result (hit, miss, error).
	ProfileCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qroly_profile_cache_requests_total",
		Help: "Profile cache lookups by result.",
	}, []string{"result"})

	// ProfileSaves counts profile saves by result (ok, error).
	ProfileSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qroly_profile_saves_total",
		Help: "Profile saves by result.",
	}, []string{"result"})

	// LoginAttempts counts sign-in attempts by method and result.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qroly_login_attempts_total",
		Help: "Sign-in attempts by method and result.",
	}, []string{"method", "result"})
)

package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/middleware"
	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/services"
)

var errStorage = errors.New("connection refused")

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{Secret: "handler-test-secret", AccessTokenTTL: time.Hour}
}

// fakeProfiles implements both ProfileServiceProvider and RedirectServiceProvider
// over a map, so handlers can be tested against the service contracts.
type fakeProfiles struct {
	byName map[string]*models.Profile
	err    error

	savedUser     string
	savedLinks    models.Links
	savedRedirect string
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{byName: map[string]*models.Profile{}}
	for _, p := range ps {
		p.Links.Normalize()
		f.byName[p.Username] = p
	}
	return f
}

func (f *fakeProfiles) Load(_ context.Context, username string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byName[username]
	if !ok {
		return nil, services.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Save(_ context.Context, username string, links models.Links, defaultRedirect string) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.byName[username]
	if !ok {
		return services.ErrProfileNotFound
	}
	f.savedUser, f.savedLinks, f.savedRedirect = username, links, defaultRedirect
	links.Normalize()
	p.Links = links
	p.DefaultRedirect = defaultRedirect
	return nil
}

func (f *fakeProfiles) Resolve(ctx context.Context, username string) (string, error) {
	p, err := f.Load(ctx, username)
	if err != nil {
		return "", err
	}
	if p.DefaultRedirect == "" {
		return "", services.ErrNoDestination
	}
	return p.DefaultRedirect, nil
}

func (f *fakeProfiles) Exists(ctx context.Context, username string) (bool, error) {
	_, err := f.Load(ctx, username)
	if errors.Is(err, services.ErrProfileNotFound) {
		return false, nil
	}
	return err == nil, err
}

func profile(username, defaultRedirect string, social map[string]string, payment map[string]models.PaymentEntry) *models.Profile {
	p := models.NewProfile(uuid.New(), username)
	p.DefaultRedirect = defaultRedirect
	p.Links.Social = social
	p.Links.Payment = payment
	return p
}

// fakeAuth is a canned AuthServiceProvider.
type fakeAuth struct {
	user *models.User
	err  error

	registered     []string
	googleEmails   []string
	lastLookupID   uuid.UUID
	lastIdentifier string
}

func (f *fakeAuth) Register(_ context.Context, username, email, _ string) (*models.User, error) {
	f.registered = append(f.registered, username)
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: uuid.New(), Username: username, Email: email, Provider: models.ProviderCredentials}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, identifier, _ string) (*models.User, error) {
	f.lastIdentifier = identifier
	return f.user, f.err
}

func (f *fakeAuth) GoogleSignIn(_ context.Context, email string) (*models.User, error) {
	f.googleEmails = append(f.googleEmails, email)
	return f.user, f.err
}

func (f *fakeAuth) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.lastLookupID = id
	return f.user, f.err
}

func identity(username string) middleware.Identity {
	return middleware.Identity{UserID: uuid.New(), Username: username}
}

package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"QROLY_BACK-END/internal/models"
	"QROLY_BACK-END/internal/store"
)

// memProfiles is an in-memory ProfileRepository. It copies on read and write
// so tests observe the same isolation a database gives.
type memProfiles struct {
	mu      sync.Mutex
	byName  map[string]models.Profile
	getErr  error
	saveErr error
	gets    int
}

func newMemProfiles(ps ...*models.Profile) *memProfiles {
	m := &memProfiles{byName: map[string]models.Profile{}}
	for _, p := range ps {
		m.byName[p.Username] = clone(p)
	}
	return m
}

func (m *memProfiles) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	c := clone(&p)
	return &c, nil
}

func (m *memProfiles) Save(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	existing, ok := m.byName[p.Username]
	if !ok {
		return store.ErrNotFound
	}
	p.UserID = existing.UserID
	m.byName[p.Username] = clone(p)
	return nil
}

func clone(p *models.Profile) models.Profile {
	c := *p
	if p.Links.Social != nil {
		c.Links.Social = make(map[string]string, len(p.Links.Social))
		for k, v := range p.Links.Social {
			c.Links.Social[k] = v
		}
	}
	if p.Links.Payment != nil {
		c.Links.Payment = make(map[string]models.PaymentEntry, len(p.Links.Payment))
		for k, v := range p.Links.Payment {
			c.Links.Payment[k] = v
		}
	}
	return c
}

type memCache struct {
	mu          sync.Mutex
	data        map[string]models.Profile
	getErr      error
	setErr      error
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]models.Profile{}}
}

func (c *memCache) Get(_ context.Context, username string) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.data[username]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memCache) Add(_ context.Context, p *models.Profile) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[p.Username]; ok {
		return false, nil
	}
	c.data[p.Username] = clone(p)
	return true, nil
}

func (c *memCache) Set(_ context.Context, p *models.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[p.Username] = clone(p)
	return nil
}

// gatedProfiles pauses the first GetByUsername after it has read from the
// store, until resume is closed.
type gatedProfiles struct {
	*memProfiles
	read   chan struct{}
	resume chan struct{}
	once   sync.Once
}

func newGatedProfiles(repo *memProfiles) *gatedProfiles {
	return &gatedProfiles{memProfiles: repo, read: make(chan struct{}), resume: make(chan struct{})}
}

func (g *gatedProfiles) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	p, err := g.memProfiles.GetByUsername(ctx, username)
	g.once.Do(func() {
		close(g.read)
		<-g.resume
	})
	return p, err
}

func (c *memCache) Invalidate(_ context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, username)
	c.invalidated = append(c.invalidated, username)
	return nil
}

type memUsers struct {
	mu       sync.Mutex
	users    []*models.User
	profiles *memProfiles
	err      error
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == identifier || u.Username == identifier })
}

func (m *memUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	u, err := m.find(func(u *models.User) bool { return u.Username == username })
	return u != nil, err
}

func (m *memUsers) CreateWithProfile(_ context.Context, u *models.User, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return &store.ConflictError{Constraint: "users_username_key"}
		}
	}
	c := *u
	m.users = append(m.users, &c)
	if m.profiles != nil {
		m.profiles.mu.Lock()
		m.profiles.byName[p.Username] = clone(p)
		m.profiles.mu.Unlock()
	}
	return nil
}

var errStorage = errors.New("connection refused")

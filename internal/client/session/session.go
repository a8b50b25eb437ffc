// Package session keeps the logged-in family's session in the local
// key/value store and tells subscribers when it starts or ends.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/invaders/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/invaders/internal/logging"
)

// Keys in the local store.
const (
	KeyExpiresAt      = "sessionExpiresAt"
	KeyFamilyName     = "familyName"
	KeyCredentialID   = "credentialId"
	KeyCurrentProfile = "currentProfileId"
	KeyAccessToken    = "accessToken"
)

const DefaultDuration = 24 * time.Hour

// Store is the local key/value store the session lives in.
type Store = metadata.Repository

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	CredentialID  string
	FamilyName    string
	ExpiresAt     time.Time
}

type Manager struct {
	store  Store
	now    func() time.Time
	logger logging.Logger

	mu     sync.Mutex
	subs   map[int]func(State)
	nextID int
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: logging.Nop{},
		subs:   make(map[int]func(State)),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.With("module", "session")
	return m
}

// Login is what a successful sign-in leaves in the store.
type Login struct {
	CredentialID string
	FamilyName   string
	AccessToken  string
	// ExpiresAt is when the server stops accepting AccessToken. Zero means
	// the server did not say.
	ExpiresAt time.Time
}

// Start persists l in one write. The session lasts DefaultDuration, or
// until l.ExpiresAt when that comes first.
func (m *Manager) Start(ctx context.Context, l Login) error {
	expiresAt := m.now().Add(DefaultDuration)
	if !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(expiresAt) {
		expiresAt = l.ExpiresAt
	}

	err := m.store.SetMany(ctx, map[string]string{
		KeyExpiresAt:    strconv.FormatInt(expiresAt.UnixMilli(), 10),
		KeyFamilyName:   l.FamilyName,
		KeyCredentialID: l.CredentialID,
		KeyAccessToken:  l.AccessToken,
	})
	if err != nil {
		return err
	}

	m.logger.Info(ctx, "session started", "credential_id", l.CredentialID, "expires_at", expiresAt)
	m.publish(ctx)
	return nil
}

// End forgets the expiry and the access token. Family name and credential
// id stay so the login form can be prefilled.
func (m *Manager) End(ctx context.Context) error {
	if err := m.store.Delete(ctx, KeyExpiresAt, KeyAccessToken); err != nil {
		return err
	}
	m.logger.Info(ctx, "session ended")
	m.publish(ctx)
	return nil
}

// Forget drops everything kept locally for the family: the session, the
// remembered family name and the selected profile.
func (m *Manager) Forget(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.logger.Info(ctx, "local session data cleared")
	m.publish(ctx)
	return nil
}

// IsAuthenticated is true while a stored, parseable expiry is not in the
// past. Expired entries are left in place.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	st, err := m.State(ctx)
	if err != nil {
		m.logger.Warn(ctx, "session state unavailable", "error", err)
		return false
	}
	return st.Authenticated
}

func (m *Manager) State(ctx context.Context) (State, error) {
	values, err := m.store.List(ctx)
	if err != nil {
		return State{}, err
	}

	st := State{
		FamilyName:   values[KeyFamilyName],
		CredentialID: values[KeyCredentialID],
	}
	if raw, ok := values[KeyExpiresAt]; ok {
		if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			st.ExpiresAt = time.UnixMilli(ms)
			st.Authenticated = !m.now().After(st.ExpiresAt)
		}
	}
	return st, nil
}

func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	v, _, err := m.store.Get(ctx, KeyAccessToken)
	return v, err
}

// SetCurrentProfile remembers the selected profile. An empty id clears it.
func (m *Manager) SetCurrentProfile(ctx context.Context, id string) error {
	if id == "" {
		return m.store.Delete(ctx, KeyCurrentProfile)
	}
	return m.store.Set(ctx, KeyCurrentProfile, id)
}

func (m *Manager) CurrentProfile(ctx context.Context) (string, error) {
	v, _, err := m.store.Get(ctx, KeyCurrentProfile)
	return v, err
}

// Subscribe registers fn for state changes. Call the returned func to stop.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publish(ctx context.Context) {
	st, err := m.State(ctx)
	if err != nil {
		m.logger.Warn(ctx, "session state unavailable", "error", err)
		return
	}

	m.mu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

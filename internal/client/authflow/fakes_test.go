package authflow_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/invaders/internal/client/client"
	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/models"
)

type account struct {
	id           string
	passwordHash string
	familyName   string
}

type fakeCredentials struct {
	mu       sync.Mutex
	accounts map[string]*account // by username hash
	calls    int

	lookupErr error
	createErr error
	updateErr error

	expiresAt time.Time

	// loginGate, when set, blocks Login until closed.
	loginGate chan struct{}

	lastUpdate   models.UpdatePasswordRequest
	lastUpdateID string
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{accounts: map[string]*account{}}
}

func (f *fakeCredentials) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCredentials) Login(_ context.Context, uh, ph string) (*models.LoginResponse, error) {
	if f.loginGate != nil {
		<-f.loginGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	a, ok := f.accounts[uh]
	if !ok || a.passwordHash != ph {
		return nil, fmt.Errorf("%w: invalid credentials", client.ErrUnauthorized)
	}
	return &models.LoginResponse{CredentialID: a.id, FamilyName: a.familyName, AccessToken: "tok-" + a.id, ExpiresAt: f.expiresAt}, nil
}

func (f *fakeCredentials) LookupCredential(_ context.Context, uh string) (*models.CredentialLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	a, ok := f.accounts[uh]
	if !ok {
		return nil, client.ErrNotFound
	}
	return &models.CredentialLookup{ID: a.id, FamilyName: a.familyName}, nil
}

func (f *fakeCredentials) CreateCredential(_ context.Context, req models.CreateCredentialRequest) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("c-%d", len(f.accounts)+1)
	f.accounts[req.UsernameHash] = &account{id: id, passwordHash: req.PasswordHash, familyName: req.FamilyName}
	return &models.Credential{ID: id, FamilyName: req.FamilyName}, nil
}

func (f *fakeCredentials) UpdatePassword(_ context.Context, id string, req models.UpdatePasswordRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastUpdate = req
	f.lastUpdateID = id
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, a := range f.accounts {
		if a.id == id {
			a.passwordHash = req.PasswordHash
			return nil
		}
	}
	return client.ErrNotFound
}

type fakeSession struct {
	mu       sync.Mutex
	login    session.Login
	started  int
	startErr error
}

func (s *fakeSession) Start(_ context.Context, l session.Login) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	s.login = l
	return nil
}

func (s *fakeSession) Started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// manualScheduler records scheduled callbacks; tests fire them by hand.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

type task struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &task{delay: d, fn: fn}
	m.tasks = append(m.tasks, t)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		was := !t.stopped
		t.stopped = true
		return was
	}
}

// FireAll runs every task, including stopped ones, to prove late timers are
// harmless.
func (m *manualScheduler) FireAll() {
	m.mu.Lock()
	tasks := append([]*task(nil), m.tasks...)
	m.tasks = nil
	m.mu.Unlock()
	for _, t := range tasks {
		t.fn()
	}
}

func (m *manualScheduler) Pending() []*task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*task(nil), m.tasks...)
}

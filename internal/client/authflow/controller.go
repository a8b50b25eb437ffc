// Package authflow drives the login, register and forgot-password forms.
//
// The controller validates input locally, hashes usernames and passwords
// with cryptox and only then calls the server. At most one
// submission runs at a time. Switching mode bumps a generation counter so
// late network replies and pending auto-transitions from an abandoned form
// are dropped.
package authflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/invaders/internal/client/client"
	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/cryptox"
	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/dmitrijs2005/invaders/internal/models"
)

type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
	ModeForgot   Mode = "forgot"
)

// Forgot-password steps.
const (
	StepIdentify = 1
	StepVerify   = 2
	StepReset    = 3
)

const (
	MinFamilyNameLen = 2
	MinUsernameLen   = 3
	MinPasswordLen   = 6
)

// AutoTransitionDelay is how long a success message stays before the
// controller returns to the login form.
const AutoTransitionDelay = 2 * time.Second

const (
	msgRegistered    = "Account created. You can now log in."
	msgPasswordReset = "Password reset. You can now log in."
)

// Form is what the user typed. Which fields matter depends on the mode and
// step. Passwords stay byte slices so the caller can wipe them once Submit
// returns; the controller keeps only their digests.
type Form struct {
	Username        string
	Password        []byte
	ConfirmPassword []byte
	FamilyName      string
}

type State struct {
	Mode          Mode
	Step          int
	Error         string
	Success       string
	IsLoading     bool
	Authenticated bool
}

// Credentials is the server surface the flow uses.
type Credentials interface {
	Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error)
	LookupCredential(ctx context.Context, usernameHash string) (*models.CredentialLookup, error)
	CreateCredential(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error)
	UpdatePassword(ctx context.Context, credentialID string, req models.UpdatePasswordRequest) error
}

// Session receives a successful login.
type Session interface {
	Start(ctx context.Context, l session.Login) error
}

// Scheduler runs fn after d and returns a func that cancels it.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

type Controller struct {
	creds    Credentials
	session  Session
	schedule Scheduler
	onChange func(State)
	logger   logging.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	stopTimer  func() bool

	// forgot-password progress
	found          *models.CredentialLookup
	foundHash      string
	verifiedFamily string
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.schedule = s }
}

// WithOnChange registers a callback for state changes that happen outside
// a Submit call, such as the delayed return to login.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func New(creds Credentials, s Session, opts ...Option) *Controller {
	c := &Controller{
		creds:    creds,
		session:  s,
		schedule: afterFunc,
		logger:   logging.Nop{},
		state:    State{Mode: ModeLogin, Step: StepIdentify},
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "authflow")
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SwitchMode discards all form progress and shows mode m.
func (c *Controller) SwitchMode(m Mode) {
	c.mu.Lock()
	c.resetLocked(m)
	c.mu.Unlock()
}

func (c *Controller) BackToLogin() {
	c.SwitchMode(ModeLogin)
}

func (c *Controller) resetLocked(m Mode) {
	c.generation++
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.found = nil
	c.foundHash = ""
	c.verifiedFamily = ""
	c.state = State{Mode: m, Step: StepIdentify, Authenticated: c.state.Authenticated}
}

// Submit handles the current form. The returned error is also reflected in
// State().Error, except ErrBusy which leaves the state untouched.
func (c *Controller) Submit(ctx context.Context, f Form) error {
	c.mu.Lock()
	if c.state.IsLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Error = ""
	c.state.Success = ""
	c.state.IsLoading = true
	mode, step, gen := c.state.Mode, c.state.Step, c.generation
	c.mu.Unlock()

	var err error
	switch {
	case mode == ModeLogin:
		err = c.login(ctx, gen, f)
	case mode == ModeRegister:
		err = c.register(ctx, gen, f)
	case step == StepIdentify:
		err = c.identify(ctx, gen, f)
	case step == StepVerify:
		err = c.verify(gen, f)
	default:
		err = c.reset(ctx, gen, f)
	}

	c.mu.Lock()
	c.state.IsLoading = false
	if err != nil && gen == c.generation {
		c.state.Error = capitalize(err.Error())
	}
	c.mu.Unlock()

	return err
}

func (c *Controller) login(ctx context.Context, gen uint64, f Form) error {
	resp, err := c.creds.Login(ctx, cryptox.HashString(f.Username), cryptox.HashBytes(f.Password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotFound) {
			return ErrInvalidCredentials
		}
		logging.LogError(ctx, c.logger, "login failed", err)
		return ErrVerificationFailed
	}

	familyName := resp.FamilyName
	if familyName == "" {
		familyName = "Invaders"
	}

	// A reply that lands after the user left the login form is dropped
	// without touching the store.
	c.mu.Lock()
	current := gen == c.generation
	c.mu.Unlock()
	if !current {
		c.logger.Debug(ctx, "login reply dropped, form was abandoned")
		return nil
	}

	err = c.session.Start(ctx, session.Login{
		CredentialID: resp.CredentialID,
		FamilyName:   familyName,
		AccessToken:  resp.AccessToken,
		ExpiresAt:    resp.ExpiresAt,
	})
	if err != nil {
		logging.LogError(ctx, c.logger, "starting session failed", err)
		return ErrVerificationFailed
	}

	c.mu.Lock()
	if gen == c.generation {
		c.state.Authenticated = true
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) register(ctx context.Context, gen uint64, f Form) error {
	familyName := strings.TrimSpace(f.FamilyName)
	switch {
	case utf8.RuneCountInString(familyName) < MinFamilyNameLen:
		return ErrFamilyNameTooShort
	case utf8.RuneCountInString(f.Username) < MinUsernameLen:
		return ErrUsernameTooShort
	}
	if err := validatePassword(f); err != nil {
		return err
	}

	usernameHash := cryptox.HashString(f.Username)

	_, err := c.creds.LookupCredential(ctx, usernameHash)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, client.ErrNotFound):
		logging.LogError(ctx, c.logger, "username lookup failed", err)
		return ErrRegisterFailed
	}

	_, err = c.creds.CreateCredential(ctx, models.CreateCredentialRequest{
		UsernameHash: usernameHash,
		PasswordHash: cryptox.HashBytes(f.Password),
		FamilyName:   familyName,
	})
	if errors.Is(err, client.ErrConflict) {
		return ErrUsernameTaken
	}
	if err != nil {
		logging.LogError(ctx, c.logger, "account creation failed", err)
		return ErrRegisterFailed
	}

	c.succeed(gen, msgRegistered)
	return nil
}

func (c *Controller) identify(ctx context.Context, gen uint64, f Form) error {
	usernameHash := cryptox.HashString(f.Username)

	found, err := c.creds.LookupCredential(ctx, usernameHash)
	if errors.Is(err, client.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		logging.LogError(ctx, c.logger, "account lookup failed", err)
		return ErrSomethingWrong
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.found = found
		c.foundHash = usernameHash
		c.state.Step = StepVerify
	}
	return nil
}

func (c *Controller) verify(gen uint64, f Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return nil
	}
	if c.found == nil {
		c.state.Step = StepIdentify
		return ErrSomethingWrong
	}
	if !FamilyNameMatches(f.FamilyName, c.found.FamilyName) {
		return ErrFamilyNameMismatch
	}
	c.verifiedFamily = strings.TrimSpace(f.FamilyName)
	c.state.Step = StepReset
	return nil
}

func (c *Controller) reset(ctx context.Context, gen uint64, f Form) error {
	if err := validatePassword(f); err != nil {
		return err
	}

	c.mu.Lock()
	found, usernameHash, family := c.found, c.foundHash, c.verifiedFamily
	c.mu.Unlock()
	if found == nil {
		return ErrSomethingWrong
	}

	err := c.creds.UpdatePassword(ctx, found.ID, models.UpdatePasswordRequest{
		UsernameHash: usernameHash,
		FamilyName:   family,
		PasswordHash: cryptox.HashBytes(f.Password),
	})
	if err != nil {
		logging.LogError(ctx, c.logger, "password reset failed", err)
		return ErrResetFailed
	}

	c.succeed(gen, msgPasswordReset)
	return nil
}

// succeed shows msg and schedules the return to login, unless the user
// already moved on.
func (c *Controller) succeed(gen uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.state.Success = msg

	c.stopTimer = c.schedule(AutoTransitionDelay, func() {
		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		c.stopTimer = nil
		c.resetLocked(ModeLogin)
		st := c.state
		c.mu.Unlock()

		if c.onChange != nil {
			c.onChange(st)
		}
	})
}

func validatePassword(f Form) error {
	if utf8.RuneCount(f.Password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if !bytes.Equal(f.Password, f.ConfirmPassword) {
		return ErrPasswordMismatch
	}
	return nil
}

// FamilyNameMatches compares family names ignoring case and surrounding
// whitespace.
func FamilyNameMatches(entered, stored string) bool {
	return strings.EqualFold(strings.TrimSpace(entered), strings.TrimSpace(stored))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

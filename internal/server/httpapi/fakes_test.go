package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/models"
)

type fakeCredentials struct {
	loginOut *models.LoginResponse
	loginErr error

	lookupOut *models.CredentialLookup
	lookupErr error

	createOut *models.Credential
	createErr error

	resetID  string
	resetReq models.UpdatePasswordRequest
	resetErr error

	// tokens maps bearer tokens to credential ids.
	tokens map[string]string
}

func (f *fakeCredentials) Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeCredentials) Lookup(ctx context.Context, usernameHash string) (*models.CredentialLookup, error) {
	return f.lookupOut, f.lookupErr
}

func (f *fakeCredentials) Create(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error) {
	return f.createOut, f.createErr
}

func (f *fakeCredentials) ResetPassword(ctx context.Context, id string, req models.UpdatePasswordRequest) error {
	f.resetID, f.resetReq = id, req
	return f.resetErr
}

func (f *fakeCredentials) Authenticate(token string) (string, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", common.ErrInvalidToken
}

type fakeProfiles struct {
	gotCredentialID string
	gotID           string

	listOut   []*models.Profile
	writeOut  *models.Profile
	err       error
	avatarOut *models.AvatarUploadResponse
}

func (f *fakeProfiles) List(ctx context.Context, credentialID string) ([]*models.Profile, error) {
	f.gotCredentialID = credentialID
	return f.listOut, f.err
}

func (f *fakeProfiles) Create(ctx context.Context, credentialID string, req models.CreateProfileRequest) (*models.Profile, error) {
	f.gotCredentialID = credentialID
	return f.writeOut, f.err
}

func (f *fakeProfiles) Update(ctx context.Context, credentialID, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	f.gotCredentialID, f.gotID = credentialID, id
	return f.writeOut, f.err
}

func (f *fakeProfiles) Delete(ctx context.Context, credentialID, id string) error {
	f.gotCredentialID, f.gotID = credentialID, id
	return f.err
}

func (f *fakeProfiles) RequestAvatarUpload(ctx context.Context, credentialID, id string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error) {
	f.gotCredentialID, f.gotID = credentialID, id
	return f.avatarOut, f.err
}

type fakePoints struct {
	gotFilter models.PointFilter
	gotPrefix string
	gotID     string
	gotInput  models.PointInput

	listOut  []*models.Point
	writeOut *models.Point
	err      error
}

func (f *fakePoints) List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error) {
	f.gotFilter = filter
	return f.listOut, f.err
}

func (f *fakePoints) Search(ctx context.Context, prefix string) ([]*models.Point, error) {
	f.gotPrefix = prefix
	return f.listOut, f.err
}

func (f *fakePoints) Create(ctx context.Context, in models.PointInput) (*models.Point, error) {
	f.gotInput = in
	return f.writeOut, f.err
}

func (f *fakePoints) Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	f.gotID, f.gotInput = id, in
	return f.writeOut, f.err
}

func (f *fakePoints) Delete(ctx context.Context, id string) error {
	f.gotID = id
	return f.err
}

type observation struct {
	route, method string
	status        int
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (f *fakeObserver) ObserveRequest(route, method string, status int, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observation{route, method, status})
}

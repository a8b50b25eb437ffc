package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/invaders/internal/client/client"
	"github.com/dmitrijs2005/invaders/internal/client/repositories/pointcache"
	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/models"
)

type fakeProfileAPI struct {
	token string

	listOut []models.Profile
	listErr error

	createdReq models.CreateProfileRequest
	createOut  *models.Profile
	createErr  error

	updatedID  string
	updatedReq models.UpdateProfileRequest
	updateErr  error

	deleteErr error

	avatarReq models.AvatarUploadRequest
	avatarOut *models.AvatarUploadResponse
	avatarErr error
}

func (f *fakeProfileAPI) SetAccessToken(token string) { f.token = token }

func (f *fakeProfileAPI) ListProfiles(context.Context) ([]models.Profile, error) {
	return f.listOut, f.listErr
}

func (f *fakeProfileAPI) CreateProfile(_ context.Context, req models.CreateProfileRequest) (*models.Profile, error) {
	f.createdReq = req
	return f.createOut, f.createErr
}

func (f *fakeProfileAPI) UpdateProfile(_ context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	f.updatedID = id
	f.updatedReq = req
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Profile{ID: id, Name: "updated", Color: req.Color, AvatarURL: req.AvatarURL}, nil
}

func (f *fakeProfileAPI) DeleteProfile(context.Context, string) error { return f.deleteErr }

func (f *fakeProfileAPI) RequestAvatarUpload(_ context.Context, _ string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error) {
	f.avatarReq = req
	return f.avatarOut, f.avatarErr
}

type fakeSession struct {
	mu      sync.Mutex
	token   string
	current string
	subs    []func(session.State)
}

func (s *fakeSession) AccessToken(context.Context) (string, error) { return s.token, nil }

func (s *fakeSession) CurrentProfile(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *fakeSession) SetCurrentProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	return nil
}

func (s *fakeSession) Subscribe(fn func(session.State)) func() {
	s.subs = append(s.subs, fn)
	return func() { s.subs = nil }
}

func (s *fakeSession) publish(st session.State) {
	for _, fn := range s.subs {
		fn(st)
	}
}

type fakePointAPI struct {
	listFilter models.PointFilter
	listOut    []models.Point
	listErr    error

	searchPrefix string
	searchCalls  int
	searchOut    []models.Point

	created   *models.PointInput
	createErr error

	updated   *models.PointInput
	updateErr error

	deleteErr error
}

func (f *fakePointAPI) ListPoints(_ context.Context, filter models.PointFilter) ([]models.Point, error) {
	f.listFilter = filter
	if f.listErr != nil || filter.Status == "" {
		return f.listOut, f.listErr
	}
	var out []models.Point
	for _, p := range f.listOut {
		if p.Status == filter.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePointAPI) SearchPoints(_ context.Context, prefix string) ([]models.Point, error) {
	f.searchCalls++
	f.searchPrefix = prefix
	return f.searchOut, nil
}

func (f *fakePointAPI) CreatePoint(_ context.Context, in models.PointInput) (*models.Point, error) {
	f.created = &in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return pointFrom("new", in), nil
}

func (f *fakePointAPI) UpdatePoint(_ context.Context, id string, in models.PointInput) (*models.Point, error) {
	f.updated = &in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return pointFrom(id, in), nil
}

func (f *fakePointAPI) DeletePoint(context.Context, string) error { return f.deleteErr }

func pointFrom(id string, in models.PointInput) *models.Point {
	return &models.Point{
		ID: id, Name: in.Name, Address: in.Address, Latitude: in.Latitude, Longitude: in.Longitude,
		Points: in.Points, Status: in.Status, Destroyed: in.Destroyed, Description: in.Description, ProfileID: in.ProfileID,
	}
}

var _ ProfileAPI = (*client.HTTPClient)(nil)
var _ PointAPI = (*client.HTTPClient)(nil)
var _ Session = (*session.Manager)(nil)
var _ PointCache = (*pointcache.SQLiteRepository)(nil)

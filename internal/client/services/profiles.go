// Package services contains application services for the Invaders client:
// the family's profiles, avatar uploads and the shared point dataset. Each
// service keeps the last loaded snapshot for the CLI to render.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/invaders/internal/client/session"
	"github.com/dmitrijs2005/invaders/internal/filex"
	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/netx"
)

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrEmptyName      = errors.New("name is required")
)

type ProfileAPI interface {
	SetAccessToken(token string)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	RequestAvatarUpload(ctx context.Context, profileID string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error)
}

// Session is what the profile service reads from the session manager.
type Session interface {
	AccessToken(ctx context.Context) (string, error)
	CurrentProfile(ctx context.Context) (string, error)
	SetCurrentProfile(ctx context.Context, id string) error
	Subscribe(fn func(session.State)) (unsubscribe func())
}

type ProfileService struct {
	api     ProfileAPI
	session Session
	upload  *http.Client
	logger  logging.Logger

	mu       sync.RWMutex
	profiles []models.Profile
	current  string
}

// NewProfileService uses upload for PUTs to presigned URLs; nil means
// http.DefaultClient.
func NewProfileService(api ProfileAPI, s Session, upload *http.Client, l logging.Logger) *ProfileService {
	return &ProfileService{api: api, session: s, upload: upload, logger: l.With("module", "profiles")}
}

// Watch reloads profiles when a session starts and clears them when it
// ends. The returned func stops watching.
func (s *ProfileService) Watch(ctx context.Context) (stop func()) {
	return s.session.Subscribe(func(st session.State) {
		if !st.Authenticated {
			s.api.SetAccessToken("")
			s.Clear()
			return
		}
		if err := s.Reload(ctx); err != nil {
			logging.LogError(ctx, s.logger, "reloading profiles failed", err)
		}
	})
}

// Reload fetches the profiles and picks the saved current profile, or the
// first one when the saved id is gone.
func (s *ProfileService) Reload(ctx context.Context) error {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	s.api.SetAccessToken(token)

	list, err := s.api.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	saved, err := s.session.CurrentProfile(ctx)
	if err != nil {
		return fmt.Errorf("read current profile: %w", err)
	}

	s.mu.Lock()
	s.profiles = list
	s.sortLocked()
	s.current = ""
	if s.indexLocked(saved) >= 0 {
		s.current = saved
	} else if len(s.profiles) > 0 {
		s.current = s.profiles[0].ID
	}
	current := s.current
	s.mu.Unlock()

	if current != saved {
		return s.session.SetCurrentProfile(ctx, current)
	}
	return nil
}

// Clear drops the snapshot without touching the saved selection.
func (s *ProfileService) Clear() {
	s.mu.Lock()
	s.profiles = nil
	s.current = ""
	s.mu.Unlock()
}

func (s *ProfileService) Profiles() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.profiles)
}

func (s *ProfileService) Current() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(s.current); i >= 0 {
		return s.profiles[i], true
	}
	return models.Profile{}, false
}

func (s *ProfileService) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	s.current = id
	s.mu.Unlock()

	return s.session.SetCurrentProfile(ctx, id)
}

// Add creates a profile. The first profile of a family becomes current.
func (s *ProfileService) Add(ctx context.Context, name, initials, color string) (*models.Profile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	p, err := s.api.CreateProfile(ctx, models.CreateProfileRequest{Name: name, Initials: initials, Color: color})
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.mu.Lock()
	s.profiles = append(s.profiles, *p)
	s.sortLocked()
	first := s.current == ""
	if first {
		s.current = p.ID
	}
	s.mu.Unlock()

	if first {
		if err := s.session.SetCurrentProfile(ctx, p.ID); err != nil {
			return p, err
		}
	}
	return p, nil
}

// SetColor changes a profile's color and keeps its avatar.
func (s *ProfileService) SetColor(ctx context.Context, id, color string) (*models.Profile, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, models.UpdateProfileRequest{Color: color, AvatarURL: p.AvatarURL})
}

func (s *ProfileService) RemoveAvatar(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, models.UpdateProfileRequest{Color: p.Color})
}

// UploadAvatar sends the image at path to object storage and then points
// the profile at it. Any failure leaves the profile unchanged.
func (s *ProfileService) UploadAvatar(ctx context.Context, id, path string) (*models.Profile, error) {
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}

	img, err := filex.ReadImage(path, filex.MaxAvatarSize)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}

	slot, err := s.api.RequestAvatarUpload(ctx, id, models.AvatarUploadRequest{
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
		Ext:         img.Ext,
	})
	if err != nil {
		return nil, fmt.Errorf("request upload: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.upload, slot.UploadURL, img.ContentType, img.Data); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	s.logger.Info(ctx, "avatar uploaded", "profile_id", id, "key", slot.Key)

	url := slot.PublicURL
	return s.update(ctx, id, models.UpdateProfileRequest{Color: p.Color, AvatarURL: &url})
}

// Delete removes a profile. When it was current, the first remaining
// profile takes over.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.profiles = slices.Delete(s.profiles, i, i+1)
	}
	changed := s.current == id
	if changed {
		s.current = ""
		if len(s.profiles) > 0 {
			s.current = s.profiles[0].ID
		}
	}
	current := s.current
	s.mu.Unlock()

	if changed {
		return s.session.SetCurrentProfile(ctx, current)
	}
	return nil
}

func (s *ProfileService) update(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.api.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.profiles[i] = *p
	}
	s.mu.Unlock()
	return p, nil
}

func (s *ProfileService) get(id string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.profiles[i], nil
	}
	return models.Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, id)
}

func (s *ProfileService) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.profiles, func(p models.Profile) bool { return p.ID == id })
}

func (s *ProfileService) sortLocked() {
	slices.SortStableFunc(s.profiles, func(a, b models.Profile) int {
		return strings.Compare(a.Name, b.Name)
	})
}

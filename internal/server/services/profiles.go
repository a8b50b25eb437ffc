package services

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/invaders/internal/colorx"
	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/filex"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/invaders/internal/server/storage"
	"github.com/samber/oops"
)

// MaxInitials bounds the badge text shown for a profile.
const MaxInitials = 3

// ProfileService manages family members. Every method is scoped to the
// credential taken from the caller's access token.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	avatars     storage.AvatarStore
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, avatars storage.AvatarStore) *ProfileService {
	return &ProfileService{db: db, repomanager: m, avatars: avatars, now: time.Now}
}

func (s *ProfileService) List(ctx context.Context, credentialID string) ([]*models.Profile, error) {
	list, err := s.repomanager.Profiles(s.db).ListByCredential(ctx, credentialID)
	if err != nil {
		return nil, oops.Code("PROFILE_LIST_FAILED").With("credential_id", credentialID).Wrap(err)
	}
	return list, nil
}

// DeriveInitials takes the first letter of up to the first two words of
// name, upper-cased.
func DeriveInitials(name string) string {
	var b strings.Builder
	for i, w := range strings.Fields(name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func normalizeColor(color string) (string, error) {
	if strings.TrimSpace(color) == "" {
		return colorx.DefaultProfileColor, nil
	}
	hex, ok := colorx.NormalizeHex(color)
	if !ok {
		return "", oops.Code("PROFILE_INVALID_COLOR").With("color", color).Wrap(common.ErrorValidation)
	}
	return hex, nil
}

func (s *ProfileService) Create(ctx context.Context, credentialID string, req models.CreateProfileRequest) (*models.Profile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, oops.Code("PROFILE_EMPTY_NAME").Wrap(common.ErrorValidation)
	}

	initials := strings.ToUpper(strings.TrimSpace(req.Initials))
	if initials == "" {
		initials = DeriveInitials(name)
	}
	if len([]rune(initials)) > MaxInitials {
		return nil, oops.Code("PROFILE_INITIALS_TOO_LONG").With("initials", initials).Wrap(common.ErrorValidation)
	}

	color, err := normalizeColor(req.Color)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Profiles(s.db).Create(ctx, &models.Profile{
		CredentialID: credentialID,
		Name:         name,
		Initials:     initials,
		Color:        color,
	})
	if err != nil {
		return nil, oops.Code("PROFILE_CREATE_FAILED").With("credential_id", credentialID).Wrap(err)
	}
	return p, nil
}

// Update sets the profile's color and avatar URL. An empty avatar URL
// clears the avatar.
func (s *ProfileService) Update(ctx context.Context, credentialID, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	color, err := normalizeColor(req.Color)
	if err != nil {
		return nil, err
	}

	avatar := req.AvatarURL
	if avatar != nil && strings.TrimSpace(*avatar) == "" {
		avatar = nil
	}

	p, err := s.repomanager.Profiles(s.db).Update(ctx, credentialID, id, color, avatar)
	if err != nil {
		return nil, oops.Code("PROFILE_UPDATE_FAILED").With("profile_id", id).Wrap(err)
	}
	return p, nil
}

func (s *ProfileService) Delete(ctx context.Context, credentialID, id string) error {
	if err := s.repomanager.Profiles(s.db).Delete(ctx, credentialID, id); err != nil {
		return oops.Code("PROFILE_DELETE_FAILED").With("profile_id", id).Wrap(err)
	}
	return nil
}

// RequestAvatarUpload checks the announced file against the avatar limits
// and, for a profile the caller owns, returns a presigned upload slot. The
// profile itself is not changed until the client reports a finished upload.
func (s *ProfileService) RequestAvatarUpload(ctx context.Context, credentialID, id string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error) {
	if err := filex.ValidateImage(req.ContentType, req.Size, filex.MaxAvatarSize); err != nil {
		return nil, oops.Code("AVATAR_REJECTED").With("content_type", req.ContentType).With("size", req.Size).Wrap(err)
	}

	if _, err := s.repomanager.Profiles(s.db).Get(ctx, credentialID, id); err != nil {
		return nil, oops.Code("PROFILE_LOOKUP_FAILED").With("profile_id", id).Wrap(err)
	}

	resp, err := s.avatars.PresignAvatarUpload(ctx, id, req.ContentType, req.Ext, req.Size, s.now())
	if err != nil {
		return nil, oops.Code("AVATAR_PRESIGN_FAILED").With("profile_id", id).Wrap(err)
	}
	return resp, nil
}

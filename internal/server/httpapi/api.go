// Package httpapi is the JSON API of the Invaders server: credentials,
// profiles and points over gorilla/mux.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/invaders/internal/models"
)

type CredentialService interface {
	Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error)
	Lookup(ctx context.Context, usernameHash string) (*models.CredentialLookup, error)
	Create(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error)
	ResetPassword(ctx context.Context, id string, req models.UpdatePasswordRequest) error
	Authenticate(token string) (string, error)
}

type ProfileService interface {
	List(ctx context.Context, credentialID string) ([]*models.Profile, error)
	Create(ctx context.Context, credentialID string, req models.CreateProfileRequest) (*models.Profile, error)
	Update(ctx context.Context, credentialID, id string, req models.UpdateProfileRequest) (*models.Profile, error)
	Delete(ctx context.Context, credentialID, id string) error
	RequestAvatarUpload(ctx context.Context, credentialID, id string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error)
}

type PointService interface {
	List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error)
	Search(ctx context.Context, prefix string) ([]*models.Point, error)
	Create(ctx context.Context, in models.PointInput) (*models.Point, error)
	Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error)
	Delete(ctx context.Context, id string) error
}

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, d time.Duration)
}

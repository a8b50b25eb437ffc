package client

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/models"
)

// API is what the client services need from the server.
type API interface {
	SetAccessToken(token string)

	Login(ctx context.Context, usernameHash, passwordHash string) (*models.LoginResponse, error)
	LookupCredential(ctx context.Context, usernameHash string) (*models.CredentialLookup, error)
	CreateCredential(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error)
	UpdatePassword(ctx context.Context, credentialID string, req models.UpdatePasswordRequest) error

	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	RequestAvatarUpload(ctx context.Context, profileID string, req models.AvatarUploadRequest) (*models.AvatarUploadResponse, error)

	ListPoints(ctx context.Context, filter models.PointFilter) ([]models.Point, error)
	SearchPoints(ctx context.Context, prefix string) ([]models.Point, error)
	CreatePoint(ctx context.Context, in models.PointInput) (*models.Point, error)
	UpdatePoint(ctx context.Context, id string, in models.PointInput) (*models.Point, error)
	DeletePoint(ctx context.Context, id string) error
}

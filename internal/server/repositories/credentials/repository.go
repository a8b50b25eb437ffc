package credentials

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	FindByHashes(ctx context.Context, usernameHash, passwordHash string) (*models.Credential, error)
	FindByUsernameHash(ctx context.Context, usernameHash string) (*models.Credential, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

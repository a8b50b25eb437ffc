package profiles

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/models"
)

// Repository persists profiles. Every call is scoped to the owning
// credential so one family can never touch another family's members.
type Repository interface {
	ListByCredential(ctx context.Context, credentialID string) ([]*models.Profile, error)
	Get(ctx context.Context, credentialID, id string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	Update(ctx context.Context, credentialID, id, color string, avatarURL *string) (*models.Profile, error)
	Delete(ctx context.Context, credentialID, id string) error
}

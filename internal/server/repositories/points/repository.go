package points

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/models"
)

// SearchLimit caps prefix search results.
const SearchLimit = 10

type Repository interface {
	List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.Point, error)
	Get(ctx context.Context, id string) (*models.Point, error)
	Create(ctx context.Context, in models.PointInput) (*models.Point, error)
	Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error)
	Delete(ctx context.Context, id string) error
}

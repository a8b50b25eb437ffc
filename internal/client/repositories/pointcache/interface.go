package pointcache

import (
	"context"

	"github.com/dmitrijs2005/invaders/internal/models"
)

// Repository stores a local copy of server points.
type Repository interface {
	// Replace drops the cached points matching filter and stores list instead.
	Replace(ctx context.Context, filter models.PointFilter, list []models.Point) error

	// List returns cached points matching filter, newest first.
	List(ctx context.Context, filter models.PointFilter) ([]models.Point, error)

	// Upsert inserts p or overwrites the cached copy with the same id.
	Upsert(ctx context.Context, p models.Point) error

	// Delete removes a point. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

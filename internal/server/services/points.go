package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/points"
	"github.com/dmitrijs2005/invaders/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// PointService manages the shared point dataset.
type PointService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPointService(db *sql.DB, m repomanager.RepositoryManager) *PointService {
	return &PointService{db: db, repomanager: m}
}

// ValidatePoint checks a point before it is written. A missing status
// defaults to to_select.
func ValidatePoint(in *models.PointInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return oops.Code("POINT_EMPTY_NAME").Wrap(common.ErrorValidation)
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return oops.Code("POINT_BAD_LATITUDE").With("latitude", in.Latitude).Wrap(common.ErrorValidation)
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return oops.Code("POINT_BAD_LONGITUDE").With("longitude", in.Longitude).Wrap(common.ErrorValidation)
	}
	if in.Status == "" {
		in.Status = models.StatusToSelect
	}
	if !in.Status.Valid() {
		return oops.Code("POINT_BAD_STATUS").With("status", in.Status).Wrap(common.ErrorValidation)
	}
	if in.Points < 0 {
		return oops.Code("POINT_NEGATIVE_POINTS").With("points", in.Points).Wrap(common.ErrorValidation)
	}
	return nil
}

func (s *PointService) List(ctx context.Context, filter models.PointFilter) ([]*models.Point, error) {
	list, err := s.repomanager.Points(s.db).List(ctx, filter)
	if err != nil {
		return nil, oops.Code("POINT_LIST_FAILED").With("status", filter.Status).Wrap(err)
	}
	return list, nil
}

// Search returns at most points.SearchLimit points whose name starts with
// prefix. A blank prefix yields no results.
func (s *PointService) Search(ctx context.Context, prefix string) ([]*models.Point, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*models.Point{}, nil
	}
	list, err := s.repomanager.Points(s.db).SearchByPrefix(ctx, prefix, points.SearchLimit)
	if err != nil {
		return nil, oops.Code("POINT_SEARCH_FAILED").With("prefix", prefix).Wrap(err)
	}
	return list, nil
}

// Create inserts a point. A name that differs from an existing one only by
// case or surrounding whitespace is rejected with common.ErrorAlreadyExists.
func (s *PointService) Create(ctx context.Context, in models.PointInput) (*models.Point, error) {
	if err := ValidatePoint(&in); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Points(s.db).Create(ctx, in)
	if err != nil {
		return nil, oops.Code("POINT_CREATE_FAILED").With("name", in.Name).Wrap(err)
	}
	return p, nil
}

func (s *PointService) Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	if err := ValidatePoint(&in); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Points(s.db).Update(ctx, id, in)
	if err != nil {
		return nil, oops.Code("POINT_UPDATE_FAILED").With("point_id", id).Wrap(err)
	}
	return p, nil
}

func (s *PointService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Points(s.db).Delete(ctx, id); err != nil {
		return oops.Code("POINT_DELETE_FAILED").With("point_id", id).Wrap(err)
	}
	return nil
}

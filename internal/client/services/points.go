package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/invaders/internal/client/client"
	"github.com/dmitrijs2005/invaders/internal/client/points"
	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/dmitrijs2005/invaders/internal/models"
)

var (
	ErrDuplicateName = errors.New("a point with this name already exists")
	ErrInvalidPoint  = errors.New("invalid point")
)

type PointAPI interface {
	ListPoints(ctx context.Context, filter models.PointFilter) ([]models.Point, error)
	SearchPoints(ctx context.Context, prefix string) ([]models.Point, error)
	CreatePoint(ctx context.Context, in models.PointInput) (*models.Point, error)
	UpdatePoint(ctx context.Context, id string, in models.PointInput) (*models.Point, error)
	DeletePoint(ctx context.Context, id string) error
}

// PointCache is the local copy listings fall back to while the server is
// unavailable.
type PointCache interface {
	Replace(ctx context.Context, filter models.PointFilter, list []models.Point) error
	List(ctx context.Context, filter models.PointFilter) ([]models.Point, error)
	Upsert(ctx context.Context, p models.Point) error
	Delete(ctx context.Context, id string) error
}

type PointService struct {
	api    PointAPI
	cache  PointCache
	logger logging.Logger

	mu        sync.RWMutex
	points    []models.Point
	filter    models.PointFilter
	fromCache bool
}

type PointOption func(*PointService)

// WithPointCache keeps cache in step with the server and serves listings
// from it when the server is unavailable.
func WithPointCache(cache PointCache) PointOption {
	return func(s *PointService) { s.cache = cache }
}

func WithPointLogger(l logging.Logger) PointOption {
	return func(s *PointService) { s.logger = l.With("module", "points") }
}

func NewPointService(api PointAPI, opts ...PointOption) *PointService {
	s := &PointService{api: api, logger: logging.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the snapshot with the points matching filter, newest first.
// When the server is unavailable and a cache is configured, the cached
// points are returned instead and FromCache reports true.
func (s *PointService) Load(ctx context.Context, filter models.PointFilter) ([]models.Point, error) {
	list, err := s.api.ListPoints(ctx, filter)
	fromCache := false
	switch {
	case err == nil:
		s.cacheDo(ctx, "replace", func(c PointCache) error { return c.Replace(ctx, filter, list) })
	case s.cache != nil && errors.Is(err, client.ErrUnavailable):
		cached, cerr := s.cache.List(ctx, filter)
		if cerr != nil {
			return nil, fmt.Errorf("list points: %w", errors.Join(err, cerr))
		}
		list, fromCache = cached, true
	default:
		return nil, fmt.Errorf("list points: %w", err)
	}

	s.mu.Lock()
	s.points = list
	s.filter = filter
	s.fromCache = fromCache
	s.mu.Unlock()

	return slices.Clone(list), nil
}

// FromCache reports whether the current snapshot came from the local cache.
func (s *PointService) FromCache() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fromCache
}

// cacheDo runs fn against the cache if there is one. Cache failures are
// logged and never fail the operation that triggered them.
func (s *PointService) cacheDo(ctx context.Context, op string, fn func(PointCache) error) {
	if s.cache == nil {
		return
	}
	if err := fn(s.cache); err != nil {
		logging.LogError(ctx, s.logger, "point cache "+op+" failed", err)
	}
}

// Forget empties the snapshot and the local cache.
func (s *PointService) Forget(ctx context.Context) error {
	s.mu.Lock()
	s.points = nil
	s.fromCache = false
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	if err := s.cache.Replace(ctx, models.PointFilter{}, nil); err != nil {
		return fmt.Errorf("clear point cache: %w", err)
	}
	return nil
}

func (s *PointService) Points() []models.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.points)
}

func (s *PointService) Filter() models.PointFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *PointService) Get(id string) (models.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.points[i], true
	}
	return models.Point{}, false
}

// NameTaken reports whether name already belongs to a point other than
// exceptID. A status filter hides the other half of the collection, so while
// one is active the check runs against an unfiltered listing, falling back
// to the cache and then to the snapshot when the server cannot answer.
func (s *PointService) NameTaken(ctx context.Context, name, exceptID string) bool {
	list := s.guardList(ctx)
	if exceptID == "" {
		return points.IsDuplicate(name, list)
	}
	return points.IsDuplicateExcept(name, exceptID, list)
}

func (s *PointService) guardList(ctx context.Context) []models.Point {
	s.mu.RLock()
	list, filter := slices.Clone(s.points), s.filter
	s.mu.RUnlock()
	if filter.Status == "" {
		return list
	}

	all, err := s.api.ListPoints(ctx, models.PointFilter{})
	if err == nil {
		return all
	}
	s.logger.Debug(ctx, "unfiltered listing for duplicate check failed", "error", err)
	if s.cache != nil {
		if cached, cerr := s.cache.List(ctx, models.PointFilter{}); cerr == nil {
			return cached
		}
	}
	return list
}

// Create adds a point after checking it locally with NameTaken. The server
// has the final word and its conflict is reported as ErrDuplicateName too.
func (s *PointService) Create(ctx context.Context, in models.PointInput) (*models.Point, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if s.NameTaken(ctx, in.Name, "") {
		return nil, ErrDuplicateName
	}

	p, err := s.api.CreatePoint(ctx, in)
	if errors.Is(err, client.ErrConflict) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("create point: %w", err)
	}
	s.cacheDo(ctx, "upsert", func(c PointCache) error { return c.Upsert(ctx, *p) })

	s.mu.Lock()
	if s.matchesLocked(*p) {
		s.points = slices.Insert(s.points, 0, *p)
	}
	s.mu.Unlock()
	return p, nil
}

func (s *PointService) Update(ctx context.Context, id string, in models.PointInput) (*models.Point, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if s.NameTaken(ctx, in.Name, id) {
		return nil, ErrDuplicateName
	}

	p, err := s.api.UpdatePoint(ctx, id, in)
	if errors.Is(err, client.ErrConflict) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("update point: %w", err)
	}
	s.cacheDo(ctx, "upsert", func(c PointCache) error { return c.Upsert(ctx, *p) })

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		if s.matchesLocked(*p) {
			s.points[i] = *p
		} else {
			s.points = slices.Delete(s.points, i, i+1)
		}
	}
	s.mu.Unlock()
	return p, nil
}

func (s *PointService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeletePoint(ctx, id); err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	s.cacheDo(ctx, "delete", func(c PointCache) error { return c.Delete(ctx, id) })

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.points = slices.Delete(s.points, i, i+1)
	}
	s.mu.Unlock()
	return nil
}

// Search autocompletes point names. A blank prefix returns nothing.
func (s *PointService) Search(ctx context.Context, prefix string) ([]models.Point, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	list, err := s.api.SearchPoints(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	return list, nil
}

func (s *PointService) matchesLocked(p models.Point) bool {
	return s.filter.Status == "" || s.filter.Status == p.Status
}

func (s *PointService) indexLocked(id string) int {
	return slices.IndexFunc(s.points, func(p models.Point) bool { return p.ID == id })
}

func validateInput(in *models.PointInput) error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: %w", ErrInvalidPoint, ErrEmptyName)
	case in.Latitude < -90 || in.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidPoint, in.Latitude)
	case in.Longitude < -180 || in.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidPoint, in.Longitude)
	case in.Points < 0:
		return fmt.Errorf("%w: points must not be negative", ErrInvalidPoint)
	}
	if in.Status == "" {
		in.Status = models.StatusToSelect
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPoint, in.Status)
	}
	return nil
}

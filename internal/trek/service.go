package trek

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// Validation errors.
var (
	ErrInvalidDayNumber   = errors.New("camp day number must be a positive integer")
	ErrDuplicateDayNumber = errors.New("camp day numbers must be unique within a trek")
)

// ServiceConfig holds configuration for the trek service.
type ServiceConfig struct {
	// Repository is the trek storage backend.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache trek data (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on repository errors
	// (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides trek data with caching and derived statistics.
type Service struct {
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedData
}

type cachedData struct {
	data      *TrekData
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new trek service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cachedData),
	}
}

// List retrieves treks.
func (s *Service) List(ctx context.Context, limit int) (*ListResult, error) {
	return s.repo.List(ctx, ListOptions{Limit: limit})
}

// Get retrieves a trek record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Trek, error) {
	return s.repo.Get(ctx, id)
}

// GetData returns the route and camps for a trek, cached.
func (s *Service) GetData(ctx context.Context, trekID string) (*TrekData, error) {
	s.mu.RLock()
	if cached, ok := s.cache[trekID]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.data, nil
	}
	s.mu.RUnlock()

	return s.fetchData(ctx, trekID)
}

// fetchData fetches trek data from the repository and updates the cache.
func (s *Service) fetchData(ctx context.Context, trekID string) (*TrekData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[trekID]; ok && time.Now().Before(cached.expiresAt) {
		return cached.data, nil
	}

	data, err := s.repo.GetData(ctx, trekID)
	if err != nil {
		if errors.Is(err, ErrTrekDataNotFound) {
			return nil, err
		}

		// Stale-if-error: serve the last good copy while the store is down.
		if cached, ok := s.cache[trekID]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Err(err).
					Str("trek_id", trekID).
					Time("fetched_at", cached.fetchedAt).
					Msg("serving stale trek data due to repository error")
				return cached.data, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[trekID] = &cachedData{
		data:      data,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("trek_id", trekID).
		Int("route_points", len(data.Route)).
		Int("camps", len(data.Camps)).
		Msg("cached trek data")

	return data, nil
}

// Create validates and creates a trek record.
func (s *Service) Create(ctx context.Context, t *Trek) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.repo.Create(ctx, t)
}

// Update updates a trek record.
func (s *Service) Update(ctx context.Context, t *Trek) error {
	t.UpdatedAt = time.Now()
	return s.repo.Update(ctx, t)
}

// Delete deletes a trek and drops its cached data.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
	return nil
}

// PutData validates and replaces a trek's route and camps, then invalidates
// the cached copy.
func (s *Service) PutData(ctx context.Context, data *TrekData) error {
	if err := validateCamps(data.Camps); err != nil {
		return err
	}

	if err := s.repo.PutData(ctx, data); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.cache, data.TrekID)
	s.mu.Unlock()
	return nil
}

// InvalidateCache clears all cached trek data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedData)
}

// Stats computes the day-over-day statistics for a trek.
func (s *Service) Stats(ctx context.Context, trekID string) (*Stats, error) {
	data, err := s.GetData(ctx, trekID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(data), nil
}

// ComputeStats derives display statistics from trek data. Degenerate input
// (no route, no camps) yields zeroed fields rather than an error.
func ComputeStats(data *TrekData) *Stats {
	stats := &Stats{
		TotalDistanceKm: geo.RouteDistanceKm(data.Route),
		TotalDays:       len(data.Camps),
		RoutePointCount: len(data.Route),
	}

	if stats.TotalDays > 0 {
		stats.AvgDailyKm = stats.TotalDistanceKm / float64(stats.TotalDays)
	}

	for i, p := range data.Route {
		if i == 0 {
			stats.MinElevationM = p.Elevation
			stats.MaxElevationM = p.Elevation
			continue
		}
		if p.Elevation < stats.MinElevationM {
			stats.MinElevationM = p.Elevation
		}
		if p.Elevation > stats.MaxElevationM {
			stats.MaxElevationM = p.Elevation
		}
	}

	// Daily gain is measured camp to camp; the first day starts from the
	// route's first point.
	prevElevation := 0.0
	if len(data.Route) > 0 {
		prevElevation = data.Route[0].Elevation
	}
	for _, c := range data.Camps {
		if gain := c.Elevation - prevElevation; gain > stats.MaxDailyGainM {
			stats.MaxDailyGainM = gain
		}
		prevElevation = c.Elevation

		if c.Elevation > stats.HighestCampM {
			stats.HighestCampM = c.Elevation
			stats.HighestCampName = c.Name
			stats.HighestCampDay = c.DayNumber
		}
	}

	return stats
}

// validateCamps enforces the day-number invariant: positive and unique.
func validateCamps(camps []Camp) error {
	seen := make(map[int]struct{}, len(camps))
	for _, c := range camps {
		if c.DayNumber <= 0 {
			return fmt.Errorf("%w: day %d", ErrInvalidDayNumber, c.DayNumber)
		}
		if _, ok := seen[c.DayNumber]; ok {
			return fmt.Errorf("%w: day %d", ErrDuplicateDayNumber, c.DayNumber)
		}
		seen[c.DayNumber] = struct{}{}
	}
	return nil
}

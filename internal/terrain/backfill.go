package terrain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// BackfillerConfig holds configuration for the elevation backfiller.
type BackfillerConfig struct {
	Provider Provider
	Logger   zerolog.Logger
}

// Backfiller fills in elevations for route points imported without them.
// A point with elevation 0 is treated as missing; no trek we carry camps at
// sea level, so 0 is a safe missing marker.
type Backfiller struct {
	provider Provider
	logger   zerolog.Logger
}

// NewBackfiller creates an elevation backfiller.
func NewBackfiller(cfg BackfillerConfig) *Backfiller {
	return &Backfiller{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Backfill returns a copy of the route with missing elevations resolved
// through the provider, plus the number of points filled. A route with no
// missing elevations is returned as-is without touching the provider.
func (b *Backfiller) Backfill(ctx context.Context, route []geo.Point) ([]geo.Point, int, error) {
	var missing []int
	for i, p := range route {
		if p.Elevation == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return route, 0, nil
	}

	points := make([]geo.Point, len(missing))
	for i, idx := range missing {
		points[i] = route[idx]
	}

	elevations, err := b.provider.Elevations(ctx, points)
	if err != nil {
		return nil, 0, fmt.Errorf("backfill elevations via %s: %w", b.provider.Name(), err)
	}

	filled := make([]geo.Point, len(route))
	copy(filled, route)

	count := 0
	for i, idx := range missing {
		if elevations[i] != 0 {
			filled[idx].Elevation = elevations[i]
			count++
		}
	}

	b.logger.Debug().
		Int("missing", len(missing)).
		Int("filled", count).
		Msg("elevation backfill complete")

	return filled, count, nil
}

// Package terrain defines the elevation provider abstraction used to backfill
// route points that were imported without elevation data.
package terrain

import (
	"context"
	"errors"
	"fmt"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// Provider errors.
var (
	// ErrProviderUnavailable indicates the elevation provider cannot be reached.
	ErrProviderUnavailable = errors.New("elevation provider unavailable")

	// ErrInvalidCoordinates indicates the points are outside valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrRateLimitExceeded indicates the provider rate limit was hit.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Error is a provider error with context about which provider failed and why.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Provider resolves elevations for a batch of points.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Elevations returns one elevation in meters per input point, in input
	// order. Points the provider has no data for come back as 0.
	Elevations(ctx context.Context, points []geo.Point) ([]float64, error)
}

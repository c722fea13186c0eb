// Package worker provides background job processing for TrekAtlas.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the trek refresh job.
type RefreshConfig struct {
	// Concurrency is the number of treks processed in parallel.
	// Default: 3
	Concurrency int

	// Timeout is the per-trek processing timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxTreks caps how many treks one run processes.
	// Default: 100
	MaxTreks int

	// BackfillElevations enables filling missing route elevations from the
	// terrain provider. Off by default: it makes outbound provider calls.
	BackfillElevations bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency: 3,
		Timeout:     30 * time.Second,
		MaxTreks:    100,
	}
}

// withDefaults fills zero fields with defaults.
func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxTreks <= 0 {
		c.MaxTreks = 100
	}
	return c
}

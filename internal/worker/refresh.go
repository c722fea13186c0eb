package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/terrain"
	"github.com/trekatlas/trekatlas/internal/trek"
)

// RefreshJob warms the trek data cache and optionally backfills missing
// route elevations from the terrain provider.
type RefreshJob struct {
	config     RefreshConfig
	logger     zerolog.Logger
	treks      *trek.Service
	backfiller *terrain.Backfiller

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns        int64
	TreksProcessed   int64
	TreksFailed      int64
	ElevationsFilled int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config      RefreshConfig
	Logger      zerolog.Logger
	TrekService *trek.Service

	// Backfiller is optional; without it elevation backfill is skipped.
	Backfiller *terrain.Backfiller
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:     cfg.Config.withDefaults(),
		logger:     cfg.Logger,
		treks:      cfg.TrekService,
		backfiller: cfg.Backfiller,
		metrics:    &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	TotalTreks       int
	Successful       int
	Failed           int
	ElevationsFilled int
	Errors           []RefreshError
}

// RefreshError records one trek that could not be refreshed.
type RefreshError struct {
	TrekID string
	Error  string
}

// Run warms the cache for every trek, backfilling elevations when enabled.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	list, err := j.treks.List(ctx, j.config.MaxTreks)
	if err != nil {
		j.logger.Error().Err(err).Msg("listing treks for refresh")
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		result.Errors = append(result.Errors, RefreshError{Error: err.Error()})
		j.updateMetrics(result)
		return result
	}

	result.TotalTreks = len(list.Items)

	j.logger.Info().
		Int("total_treks", result.TotalTreks).
		Int("concurrency", j.config.Concurrency).
		Bool("backfill", j.config.BackfillElevations).
		Msg("starting trek refresh job")

	ids := make(chan string, len(list.Items))
	results := make(chan trekResult, len(list.Items))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, ids, results)
		}()
	}

	for _, t := range list.Items {
		ids <- t.ID
	}
	close(ids)

	go func() {
		wg.Wait()
		close(results)
	}()

	for tr := range results {
		if tr.err == nil {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, RefreshError{TrekID: tr.trekID, Error: tr.err.Error()})
		}
		result.ElevationsFilled += tr.filled
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("elevations_filled", result.ElevationsFilled).
		Msg("trek refresh job completed")

	return result
}

type trekResult struct {
	trekID string
	filled int
	err    error
}

func (j *RefreshJob) refreshWorker(ctx context.Context, ids <-chan string, results chan<- trekResult) {
	for trekID := range ids {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshTrek(ctx, trekID)
		}
	}
}

// refreshTrek loads one trek's data, which also warms the service cache, and
// backfills missing elevations when enabled.
func (j *RefreshJob) refreshTrek(ctx context.Context, trekID string) trekResult {
	trekCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	data, err := j.treks.GetData(trekCtx, trekID)
	if err != nil {
		return trekResult{trekID: trekID, err: err}
	}

	if !j.config.BackfillElevations || j.backfiller == nil {
		return trekResult{trekID: trekID}
	}

	route, filled, err := j.backfiller.Backfill(trekCtx, data.Route)
	if err != nil {
		j.logger.Warn().Err(err).Str("trek_id", trekID).Msg("elevation backfill failed")
		return trekResult{trekID: trekID, err: err}
	}
	if filled == 0 {
		return trekResult{trekID: trekID}
	}

	updated := &trek.TrekData{
		TrekID: data.TrekID,
		Route:  route,
		Camps:  data.Camps,
	}
	if err := j.treks.PutData(trekCtx, updated); err != nil {
		return trekResult{trekID: trekID, err: err}
	}

	j.logger.Info().
		Str("trek_id", trekID).
		Int("filled", filled).
		Msg("backfilled route elevations")

	return trekResult{trekID: trekID, filled: filled}
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.TreksProcessed += int64(result.Successful)
	j.metrics.TreksFailed += int64(result.Failed)
	j.metrics.ElevationsFilled += int64(result.ElevationsFilled)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:        j.metrics.TotalRuns,
		TreksProcessed:   j.metrics.TreksProcessed,
		TreksFailed:      j.metrics.TreksFailed,
		ElevationsFilled: j.metrics.ElevationsFilled,
		LastRunAt:        j.metrics.LastRunAt,
		LastRunDuration:  j.metrics.LastRunDuration,
		TotalDuration:    j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for logging.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"treks_processed":   m.TreksProcessed,
		"treks_failed":      m.TreksFailed,
		"elevations_filled": m.ElevationsFilled,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}

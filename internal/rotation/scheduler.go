// Package rotation schedules the idle globe rotation: when the user parks on
// the globe with nothing selected, rotation starts after a short delay and
// stops the moment a selection or interaction happens.
package rotation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDelay is the idle period before rotation starts.
const DefaultDelay = 3500 * time.Millisecond

// State is the scheduler's lifecycle state.
type State int

const (
	// StateIdle means rotation is off and no timer is pending.
	StateIdle State = iota
	// StateScheduled means the delay timer is armed.
	StateScheduled
	// StateRotating means the surface has been told to rotate.
	StateRotating
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRotating:
		return "rotating"
	default:
		return "unknown"
	}
}

// Conditions are the preconditions for idle rotation. All three must hold.
type Conditions struct {
	// GlobeView is true when the globe overview is showing.
	GlobeView bool
	// TrekSelected is true when any trek is selected; rotation requires none.
	TrekSelected bool
	// MapReady is true once the map surface has finished loading.
	MapReady bool
}

func (c Conditions) satisfied() bool {
	return c.GlobeView && !c.TrekSelected && c.MapReady
}

// Surface receives rotation commands. Implementations must tolerate
// StopRotation when no rotation is in progress.
type Surface interface {
	StartRotation()
	StopRotation()
}

// SchedulerConfig holds configuration for the rotation scheduler.
type SchedulerConfig struct {
	// Surface receives start/stop rotation commands.
	Surface Surface

	// Logger for scheduler transitions.
	Logger zerolog.Logger

	// Delay before rotation starts once conditions hold (default: 3.5s).
	Delay time.Duration
}

// Scheduler drives idle rotation through a single reducer over one explicit
// state, so there is never more than one pending timer and every transition
// is accounted for.
type Scheduler struct {
	surface Surface
	logger  zerolog.Logger
	delay   time.Duration

	mu         sync.Mutex
	state      State
	conditions Conditions
	timer      *time.Timer
	generation uint64
}

// NewScheduler creates a rotation scheduler in the idle state.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Scheduler{
		surface: cfg.Surface,
		logger:  cfg.Logger,
		delay:   delay,
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Check updates the preconditions and reduces. Calling it again with the same
// satisfied conditions while a timer is pending or rotation is running is a
// no-op; losing any condition tears down synchronously.
func (s *Scheduler) Check(c Conditions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conditions = c
	s.reduce()
}

// Interact reports a user interaction: rotation stops immediately and the
// timer re-arms if the preconditions still hold.
func (s *Scheduler) Interact() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardown()
	s.reduce()
}

// Stop cancels any pending timer and stops rotation, regardless of
// conditions. The scheduler stays usable; the next Check can re-arm it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardown()
}

// reduce is the single transition function. Callers hold s.mu.
func (s *Scheduler) reduce() {
	if !s.conditions.satisfied() {
		s.teardown()
		return
	}

	if s.state != StateIdle {
		return
	}

	s.generation++
	gen := s.generation
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	s.state = StateScheduled

	s.logger.Debug().Dur("delay", s.delay).Msg("idle rotation scheduled")
}

// teardown cancels the timer, stops rotation if running, and returns to
// idle. Callers hold s.mu.
func (s *Scheduler) teardown() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++

	if s.state == StateRotating {
		s.stopSurface()
	}
	s.state = StateIdle
}

// fire runs on the timer goroutine when the idle delay elapses.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A stale timer that lost the race with teardown must not start anything.
	if gen != s.generation || s.state != StateScheduled {
		return
	}

	s.timer = nil
	s.state = StateRotating
	s.startSurface()

	s.logger.Debug().Msg("idle rotation started")
}

func (s *Scheduler) startSurface() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("rotation surface panicked in StartRotation")
		}
	}()
	s.surface.StartRotation()
}

func (s *Scheduler) stopSurface() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("rotation surface panicked in StopRotation")
		}
	}()
	s.surface.StopRotation()
}

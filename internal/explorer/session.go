// Package explorer owns the selection state machine: which view is showing,
// which trek is selected, and which day. All mutation goes through the event
// methods, and every mutation re-derives the camera and the idle-rotation
// preconditions from the resulting state.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/camera"
	"github.com/trekatlas/trekatlas/internal/rotation"
	"github.com/trekatlas/trekatlas/internal/trek"
)

// Session errors.
var (
	ErrNoTrekSelected = errors.New("no trek selected")
	ErrNotInTrekView  = errors.New("not in trek view")
	ErrUnknownDay     = errors.New("no camp for that day")
)

// SessionConfig holds the session's collaborators.
type SessionConfig struct {
	Treks    *trek.Service
	Camera   *camera.Orchestrator
	Rotation *rotation.Scheduler
	Logger   zerolog.Logger
}

// Session is one user's exploration state. Invariants it maintains:
// a selected day implies a selected trek and the trek view; a trek selected
// while in globe view is the preview sub-state; returning to the globe
// clears the selection.
type Session struct {
	treks    *trek.Service
	camera   *camera.Orchestrator
	rotation *rotation.Scheduler
	logger   zerolog.Logger

	mu       sync.Mutex
	view     camera.View
	selected *trek.Trek
	data     *trek.TrekData
	day      int
	mapReady bool
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	View     camera.View
	TrekID   string
	Day      int
	MapReady bool
}

// NewSession creates a session in the globe idle state.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		treks:    cfg.Treks,
		camera:   cfg.Camera,
		rotation: cfg.Rotation,
		logger:   cfg.Logger,
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{View: s.view, Day: s.day, MapReady: s.mapReady}
	if s.selected != nil {
		snap.TrekID = s.selected.ID
	}
	return snap
}

// SetMapReady records map surface readiness. The camera holds off until the
// map is ready; rotation cannot start before it either.
func (s *Session) SetMapReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mapReady = ready
	s.sync()
}

// SelectTrek selects a trek from the globe, entering the preview sub-state.
// Selecting with an empty ID clears the selection.
func (s *Session) SelectTrek(ctx context.Context, trekID string) error {
	if trekID == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.clearSelection()
		s.sync()
		return nil
	}

	t, err := s.treks.Get(ctx, trekID)
	if err != nil {
		return fmt.Errorf("select trek %s: %w", trekID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = camera.ViewGlobe
	s.selected = t
	s.data = nil
	s.day = 0
	s.sync()
	return nil
}

// Explore enters the trek view for the selected trek, loading its route data.
func (s *Session) Explore(ctx context.Context) error {
	s.mu.Lock()
	t := s.selected
	s.mu.Unlock()

	if t == nil {
		return ErrNoTrekSelected
	}

	// Loaded outside the lock; a concurrent re-selection wins below.
	data, err := s.treks.GetData(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("explore trek %s: %w", t.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil || s.selected.ID != t.ID {
		return nil
	}

	s.view = camera.ViewTrek
	s.data = data
	s.day = 0
	s.sync()
	return nil
}

// SelectDay selects a camp day within the trek view. Day 0 returns to the
// whole-route framing.
func (s *Session) SelectDay(day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != camera.ViewTrek || s.data == nil {
		return ErrNotInTrekView
	}
	if day != 0 && s.data.CampByDay(day) == nil {
		return fmt.Errorf("%w: day %d", ErrUnknownDay, day)
	}

	s.day = day
	s.sync()
	return nil
}

// Back steps one level out: day view to whole route, trek view to globe.
// Returning to the globe drops the selection.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == camera.ViewTrek && s.day != 0 {
		s.day = 0
	} else {
		s.clearSelection()
	}
	s.sync()
}

// Reset returns to the globe idle state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearSelection()
	s.sync()
}

// Interact reports a user map interaction, which halts any idle rotation.
func (s *Session) Interact() {
	s.rotation.Interact()
}

// clearSelection returns to globe view with nothing selected. Callers hold
// s.mu.
func (s *Session) clearSelection() {
	s.view = camera.ViewGlobe
	s.selected = nil
	s.data = nil
	s.day = 0
}

// sync re-derives rotation preconditions and camera commands from the
// current state. Callers hold s.mu.
func (s *Session) sync() {
	s.rotation.Check(rotation.Conditions{
		GlobeView:    s.view == camera.ViewGlobe,
		TrekSelected: s.selected != nil,
		MapReady:     s.mapReady,
	})

	if !s.mapReady {
		return
	}

	s.camera.Apply(camera.Selection{
		View: s.view,
		Trek: s.selected,
		Data: s.data,
		Day:  s.day,
	})
}

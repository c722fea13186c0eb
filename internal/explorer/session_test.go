package explorer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/trekatlas/trekatlas/internal/camera"
	"github.com/trekatlas/trekatlas/internal/rotation"
	"github.com/trekatlas/trekatlas/internal/trek"
	"github.com/trekatlas/trekatlas/pkg/geo"
)

// fakeMap records the camera commands the session drives.
type fakeMap struct {
	mu         sync.Mutex
	flyTos     int
	fitBounds  int
	lastPose   camera.Pose
	shownRoute string
	routeHides int
	segments   int
	clears     int
}

func (f *fakeMap) FlyTo(pose camera.Pose) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flyTos++
	f.lastPose = pose
}

func (f *fakeMap) FitBounds(geo.Bounds, camera.Padding) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fitBounds++
}

func (f *fakeMap) ShowRoute(trekID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shownRoute = trekID
}

func (f *fakeMap) HideAllRoutes() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shownRoute = ""
	f.routeHides++
}

func (f *fakeMap) SetActiveSegment([]geo.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.segments++
}

func (f *fakeMap) ClearActiveSegment() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

type fakeRotator struct{}

func (fakeRotator) StartRotation() {}
func (fakeRotator) StopRotation()  {}

func newTestSession(t *testing.T) (*Session, *fakeMap, *rotation.Scheduler) {
	t.Helper()

	repo := trek.NewInMemoryRepository()
	ctx := context.Background()

	route := make([]geo.Point, 10)
	for i := range route {
		route[i] = geo.Point{Lon: 86.7, Lat: 27.6 + float64(i)*0.001, Elevation: 2600}
	}

	err := repo.Create(ctx, &trek.Trek{
		ID:        "trk_everest",
		Name:      "Everest Base Camp",
		MarkerLat: route[0].Lat,
		MarkerLon: route[0].Lon,
	})
	if err != nil {
		t.Fatalf("seed trek: %v", err)
	}

	err = repo.PutData(ctx, &trek.TrekData{
		TrekID: "trk_everest",
		Route:  route,
		Camps: []trek.Camp{
			{DayNumber: 1, Name: "First", Coordinates: route[3]},
			{DayNumber: 2, Name: "Second", Coordinates: route[9]},
		},
	})
	if err != nil {
		t.Fatalf("seed data: %v", err)
	}

	surface := &fakeMap{}
	sched := rotation.NewScheduler(rotation.SchedulerConfig{
		Surface: fakeRotator{},
		Delay:   10 * time.Millisecond,
	})
	session := NewSession(SessionConfig{
		Treks:    trek.NewService(trek.ServiceConfig{Repository: repo}),
		Camera:   camera.NewOrchestrator(camera.OrchestratorConfig{Surface: surface}),
		Rotation: sched,
	})
	return session, surface, sched
}

func TestSession_MapReadyArmsRotationAndFramesGlobe(t *testing.T) {
	session, surface, sched := newTestSession(t)

	if got := sched.State(); got != rotation.StateIdle {
		t.Fatalf("rotation state before map ready = %v, want idle", got)
	}

	session.SetMapReady(true)

	if got := sched.State(); got != rotation.StateScheduled {
		t.Errorf("rotation state = %v, want scheduled", got)
	}
	if surface.flyTos != 1 {
		t.Errorf("FlyTo calls = %d, want 1 (globe idle)", surface.flyTos)
	}
}

func TestSession_SelectTrekEntersPreviewAndHaltsRotation(t *testing.T) {
	session, surface, sched := newTestSession(t)
	session.SetMapReady(true)

	if err := session.SelectTrek(context.Background(), "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := session.Snapshot()
	if snap.View != camera.ViewGlobe || snap.TrekID != "trk_everest" || snap.Day != 0 {
		t.Errorf("snapshot = %+v, want globe preview of trk_everest", snap)
	}
	if got := sched.State(); got != rotation.StateIdle {
		t.Errorf("rotation state = %v, want idle while a trek is selected", got)
	}
	if surface.lastPose.Zoom != camera.PreviewZoom {
		t.Errorf("last zoom = %v, want preview", surface.lastPose.Zoom)
	}
}

func TestSession_SelectTrekUnknown(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.SetMapReady(true)

	err := session.SelectTrek(context.Background(), "trk_missing")
	if !errors.Is(err, trek.ErrTrekNotFound) {
		t.Errorf("err = %v, want ErrTrekNotFound", err)
	}
	if snap := session.Snapshot(); snap.TrekID != "" {
		t.Errorf("failed selection must not stick, got %+v", snap)
	}
}

func TestSession_ExploreAndSelectDay(t *testing.T) {
	session, surface, _ := newTestSession(t)
	session.SetMapReady(true)
	ctx := context.Background()

	if err := session.SelectTrek(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.Explore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := session.Snapshot()
	if snap.View != camera.ViewTrek || snap.Day != 0 {
		t.Fatalf("snapshot = %+v, want whole-route trek view", snap)
	}
	if surface.fitBounds != 1 {
		t.Errorf("FitBounds calls = %d, want 1", surface.fitBounds)
	}
	if surface.shownRoute != "trk_everest" {
		t.Errorf("shown route = %q, want trk_everest after exploring", surface.shownRoute)
	}

	if err := session.SelectDay(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := session.Snapshot(); snap.Day != 2 {
		t.Errorf("day = %d, want 2", snap.Day)
	}
	if surface.segments != 1 {
		t.Errorf("SetActiveSegment calls = %d, want 1", surface.segments)
	}

	if err := session.SelectDay(7); !errors.Is(err, ErrUnknownDay) {
		t.Errorf("err = %v, want ErrUnknownDay", err)
	}
	if snap := session.Snapshot(); snap.Day != 2 {
		t.Errorf("failed day selection must not stick, day = %d", snap.Day)
	}
}

func TestSession_ExploreRequiresSelection(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.SetMapReady(true)

	if err := session.Explore(context.Background()); !errors.Is(err, ErrNoTrekSelected) {
		t.Errorf("err = %v, want ErrNoTrekSelected", err)
	}
}

func TestSession_SelectDayRequiresTrekView(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.SetMapReady(true)

	if err := session.SelectDay(1); !errors.Is(err, ErrNotInTrekView) {
		t.Errorf("err = %v, want ErrNotInTrekView", err)
	}
}

func TestSession_BackUnwindsAndClearsOnGlobe(t *testing.T) {
	session, surface, sched := newTestSession(t)
	session.SetMapReady(true)
	ctx := context.Background()

	if err := session.SelectTrek(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.Explore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.SelectDay(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session.Back()
	if snap := session.Snapshot(); snap.View != camera.ViewTrek || snap.Day != 0 {
		t.Errorf("after first back: %+v, want whole-route view", snap)
	}

	session.Back()
	snap := session.Snapshot()
	if snap.View != camera.ViewGlobe || snap.TrekID != "" {
		t.Errorf("after second back: %+v, want cleared globe", snap)
	}
	if got := sched.State(); got != rotation.StateScheduled {
		t.Errorf("rotation state = %v, want re-armed on cleared globe", got)
	}
	if surface.shownRoute != "" {
		t.Errorf("shown route = %q, want all routes hidden back on the globe", surface.shownRoute)
	}
}

func TestSession_ClearSelectionWithEmptyID(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.SetMapReady(true)
	ctx := context.Background()

	if err := session.SelectTrek(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := session.SelectTrek(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap := session.Snapshot(); snap.TrekID != "" {
		t.Errorf("snapshot = %+v, want no selection", snap)
	}
}

func TestSession_CameraDefersUntilMapReady(t *testing.T) {
	session, surface, _ := newTestSession(t)

	if err := session.SelectTrek(context.Background(), "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if surface.flyTos != 0 {
		t.Errorf("FlyTo calls before map ready = %d, want 0", surface.flyTos)
	}

	session.SetMapReady(true)
	if surface.flyTos != 1 {
		t.Errorf("FlyTo calls after map ready = %d, want 1", surface.flyTos)
	}
}

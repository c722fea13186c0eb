// Package camera derives map camera moves and active-segment visibility from
// the current selection. It owns no map state: every application fully
// re-derives the camera from the selection it is handed, so rapid
// re-selection is last-write-wins by construction.
package camera

import (
	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/trek"
	"github.com/trekatlas/trekatlas/pkg/geo"
)

// bearingLookback is how many route points to step back from a camp's
// nearest route index when deriving the arrival bearing. Fixed-count lookback
// keeps the approach direction stable regardless of point spacing.
const bearingLookback = 5

// Zoom and pitch presets per view.
const (
	GlobeZoom   = 1.6
	PreviewZoom = 8.5
	DayZoom     = 13.5
	DayPitch    = 62.0
)

// Pose is a full camera position for FlyTo.
type Pose struct {
	Center  geo.Point
	Zoom    float64
	Bearing float64
	Pitch   float64
}

// Padding is viewport padding in pixels for FitBounds. The left edge carries
// extra room for the detail panel.
type Padding struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// PanelPadding leaves room for the side panel when framing a whole route.
var PanelPadding = Padding{Top: 80, Bottom: 80, Left: 420, Right: 80}

// MapSurface is the map client the orchestrator drives. Route visibility is
// exclusive: ShowRoute displays one trek's route line and glow and hides
// every other trek's.
type MapSurface interface {
	FlyTo(pose Pose)
	FitBounds(b geo.Bounds, padding Padding)
	ShowRoute(trekID string)
	HideAllRoutes()
	SetActiveSegment(segment []geo.Point)
	ClearActiveSegment()
}

// View is the top-level presentation mode.
type View int

const (
	// ViewGlobe shows the spinning globe with trek markers.
	ViewGlobe View = iota
	// ViewTrek shows a single trek's route and camps.
	ViewTrek
)

// Selection is everything the camera derives from. Day 0 means no camp is
// selected; Data may be nil while trek data is still loading. A trek view
// with a nil Trek degrades to the idle globe.
type Selection struct {
	View View
	Trek *trek.Trek
	Data *trek.TrekData
	Day  int
}

// OrchestratorConfig holds configuration for the camera orchestrator.
type OrchestratorConfig struct {
	Surface MapSurface
	Logger  zerolog.Logger
}

// Orchestrator translates selections into map commands.
type Orchestrator struct {
	surface MapSurface
	logger  zerolog.Logger
}

// NewOrchestrator creates a camera orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		surface: cfg.Surface,
		logger:  cfg.Logger,
	}
}

// Apply issues the camera and segment commands for a selection. It never
// fails: selections the camera cannot fully resolve (missing data, camps off
// the route) degrade to the widest sensible framing with the segment hidden.
func (o *Orchestrator) Apply(sel Selection) {
	switch {
	case sel.Trek == nil:
		o.applyGlobeIdle()
	case sel.View == ViewGlobe:
		o.applyGlobePreview(sel.Trek)
	case sel.Day == 0:
		o.applyWholeRoute(sel)
	default:
		o.applyDayView(sel)
	}
}

// applyGlobeIdle frames the whole globe with nothing highlighted and no
// routes drawn.
func (o *Orchestrator) applyGlobeIdle() {
	o.surface.HideAllRoutes()
	o.surface.ClearActiveSegment()
	o.surface.FlyTo(Pose{Zoom: GlobeZoom})
}

// applyGlobePreview eases toward the selected trek's marker while staying in
// globe view. The route stays hidden until the user commits to exploring.
func (o *Orchestrator) applyGlobePreview(t *trek.Trek) {
	o.surface.HideAllRoutes()
	o.surface.ClearActiveSegment()
	o.surface.FlyTo(Pose{
		Center: geo.Point{Lon: t.MarkerLon, Lat: t.MarkerLat},
		Zoom:   PreviewZoom,
	})
}

// applyWholeRoute shows the selected trek's route line, fits it into the
// viewport next to the panel, and highlights no day segment.
func (o *Orchestrator) applyWholeRoute(sel Selection) {
	o.surface.ShowRoute(sel.Trek.ID)
	o.surface.ClearActiveSegment()

	if sel.Data != nil {
		if b, ok := geo.BoundsOf(sel.Data.Route); ok {
			o.surface.FitBounds(b, PanelPadding)
			return
		}
	}

	// No route to frame yet; fall back to the trek marker.
	o.surface.FlyTo(Pose{
		Center: geo.Point{Lon: sel.Trek.MarkerLon, Lat: sel.Trek.MarkerLat},
		Zoom:   PreviewZoom,
	})
}

// applyDayView flies to the selected day's camp and highlights the day's
// route segment.
func (o *Orchestrator) applyDayView(sel Selection) {
	if sel.Data == nil {
		o.applyWholeRoute(sel)
		return
	}

	camp := sel.Data.CampByDay(sel.Day)
	if camp == nil {
		o.logger.Warn().
			Str("trek_id", sel.Trek.ID).
			Int("day", sel.Day).
			Msg("selected day has no camp, framing whole route")
		o.applyWholeRoute(sel)
		return
	}

	o.surface.ShowRoute(sel.Trek.ID)

	pose := Pose{
		Center:  camp.Coordinates,
		Zoom:    DayZoom,
		Pitch:   DayPitch,
		Bearing: CampBearing(sel.Trek, sel.Data, camp),
	}
	if camp.Pitch != nil {
		pose.Pitch = *camp.Pitch
	}

	if segment := ActiveSegment(sel.Data, sel.Day); segment != nil {
		o.surface.SetActiveSegment(segment)
	} else {
		o.surface.ClearActiveSegment()
	}

	o.surface.FlyTo(pose)
}

// CampBearing resolves the camera bearing for a camp, in priority order:
// the camp's own override, the along-route arrival direction, the bearing
// from the previous camp, then the trek default.
func CampBearing(t *trek.Trek, data *trek.TrekData, camp *trek.Camp) float64 {
	if camp.Bearing != nil {
		return *camp.Bearing
	}

	// Arrival direction: bearing from a point a few steps back along the
	// route into the camp, so the camera looks the way the hiker walks in.
	idx := geo.FindNearestIndex(data.Route, camp.Coordinates, geo.DefaultNearestTolerance)
	if idx >= bearingLookback {
		from := data.Route[idx-bearingLookback]
		return geo.InitialBearing(from.Lat, from.Lon, camp.Coordinates.Lat, camp.Coordinates.Lon)
	}

	if prev := data.PreviousCamp(camp.DayNumber); prev != nil {
		return geo.InitialBearing(prev.Coordinates.Lat, prev.Coordinates.Lon, camp.Coordinates.Lat, camp.Coordinates.Lon)
	}

	if t != nil && t.DefaultBearing != nil {
		return *t.DefaultBearing
	}
	return 0
}

// ActiveSegment returns the route slice for a day: from the previous camp's
// nearest route point (or the route start on day one) through the selected
// camp's nearest point, inclusive. Returns nil when either endpoint fails to
// resolve or the indices are out of order; a missing highlight beats a wrong
// one.
func ActiveSegment(data *trek.TrekData, day int) []geo.Point {
	camp := data.CampByDay(day)
	if camp == nil {
		return nil
	}

	end := geo.FindNearestIndex(data.Route, camp.Coordinates, geo.DefaultNearestTolerance)
	if end < 0 {
		return nil
	}

	start := 0
	if prev := data.PreviousCamp(day); prev != nil {
		start = geo.FindNearestIndex(data.Route, prev.Coordinates, geo.DefaultNearestTolerance)
		if start < 0 {
			return nil
		}
	}

	if end < start {
		return nil
	}

	segment := make([]geo.Point, end-start+1)
	copy(segment, data.Route[start:end+1])
	return segment
}

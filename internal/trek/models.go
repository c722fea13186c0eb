// Package trek provides trek records, route data and derived statistics.
package trek

import (
	"errors"
	"time"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// Repository errors.
var (
	ErrTrekNotFound     = errors.New("trek not found")
	ErrTrekDataNotFound = errors.New("trek data not found")
)

// Trek is the catalog record for a single trek: what the globe view shows
// before the user commits to exploring.
type Trek struct {
	ID      string
	Name    string
	Country string
	Blurb   string

	// Marker position on the globe.
	MarkerLat float64
	MarkerLon float64

	// Preferred camera defaults for the whole-route view. Nil means the
	// orchestrator computes them.
	DefaultBearing *float64
	DefaultPitch   *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Camp is a daily waypoint. DayNumber is a positive integer, unique within a
// trek, and defines display and selection order. Camp coordinates are matched
// against the route by nearest-point lookup; they are not guaranteed to lie
// exactly on the polyline.
type Camp struct {
	DayNumber   int
	Name        string
	Coordinates geo.Point
	Elevation   float64
	Description string

	Highlights       []string
	Weather          *string
	PointsOfInterest []string
	FunFacts         []string
	HistoricalSites  []string

	// Manual camera overrides for the day view.
	Bearing *float64
	Pitch   *float64
}

// TrekData is the full route payload for one trek: the ordered route
// polyline and the camps ordered by day number. Immutable once loaded.
type TrekData struct {
	TrekID string
	Route  []geo.Point
	Camps  []Camp
}

// CampByDay returns the camp with the given day number, or nil.
func (d *TrekData) CampByDay(day int) *Camp {
	for i := range d.Camps {
		if d.Camps[i].DayNumber == day {
			return &d.Camps[i]
		}
	}
	return nil
}

// PreviousCamp returns the camp with the highest day number strictly below
// day, or nil when day is the first.
func (d *TrekData) PreviousCamp(day int) *Camp {
	var prev *Camp
	for i := range d.Camps {
		if d.Camps[i].DayNumber < day {
			if prev == nil || d.Camps[i].DayNumber > prev.DayNumber {
				prev = &d.Camps[i]
			}
		}
	}
	return prev
}

// Stats are the day-over-day numbers shown in the overview panel.
type Stats struct {
	TotalDistanceKm float64
	TotalDays       int
	AvgDailyKm      float64
	MaxDailyGainM   float64
	MinElevationM   float64
	MaxElevationM   float64
	HighestCampName string
	HighestCampM    float64
	HighestCampDay  int
	RoutePointCount int
}

// ListOptions controls trek listing.
type ListOptions struct {
	Limit int
}

// ListResult is a page of treks.
type ListResult struct {
	Items      []*Trek
	NextCursor string
}

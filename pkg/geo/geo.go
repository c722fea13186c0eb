// Package geo provides the spherical geometry primitives used to place the
// camera and slice trek routes: degree/radian conversion, great-circle
// distance, initial bearing, nearest-point lookup on a polyline, and
// cumulative route distance.
//
// All functions return sentinel values (-1, 0) on degenerate input instead of
// errors; callers branch on the sentinels to pick fallback behavior.
package geo

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// DefaultNearestTolerance is the matching tolerance for FindNearestIndex,
// in raw degrees. Matching on raw degrees rather than projected meters is
// intentional: it is tied to the point density of the authored routes, and
// the camp fixtures were authored against this exact behavior.
const DefaultNearestTolerance = 0.0001

// Point is a single route vertex: longitude, latitude (degrees) and
// elevation (meters). Routes are ordered along the direction of travel.
type Point struct {
	Lon       float64
	Lat       float64
	Elevation float64
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DistanceKm returns the great-circle distance between two points in
// kilometers using the Haversine formula. The spherical approximation is
// within ~0.5% of ellipsoidal models, fine at trek scale.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := Deg2Rad(lat2 - lat1)
	dLon := Deg2Rad(lon2 - lon1)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	a := sinDLat*sinDLat +
		math.Cos(Deg2Rad(lat1))*math.Cos(Deg2Rad(lat2))*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// InitialBearing returns the initial compass bearing in degrees from point 1
// to point 2, normalized to [0, 360). 0° is due north, 90° due east.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := Deg2Rad(lat1)
	phi2 := Deg2Rad(lat2)
	dLon := Deg2Rad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	bearing := Rad2Deg(math.Atan2(y, x))
	return math.Mod(bearing+360, 360)
}

// FindNearestIndex returns the index of the first route point whose
// longitude and latitude are both within tolerance (raw degrees) of the
// target, or -1 when no point is close enough. A -1 is an expected outcome
// (camps rarely lie exactly on the route polyline), not an error.
func FindNearestIndex(route []Point, target Point, tolerance float64) int {
	if tolerance <= 0 {
		tolerance = DefaultNearestTolerance
	}

	for i, p := range route {
		if math.Abs(p.Lon-target.Lon) <= tolerance && math.Abs(p.Lat-target.Lat) <= tolerance {
			return i
		}
	}
	return -1
}

// RouteDistanceKm returns the cumulative distance along a route in
// kilometers. Nil, empty and single-point routes yield 0.
func RouteDistanceKm(route []Point) float64 {
	if len(route) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(route); i++ {
		total += DistanceKm(route[i-1].Lat, route[i-1].Lon, route[i].Lat, route[i].Lon)
	}
	return total
}

// CumulativeDistancesKm returns the along-route distance at every point.
// The first entry is always 0; nil input yields nil.
func CumulativeDistancesKm(route []Point) []float64 {
	if len(route) == 0 {
		return nil
	}

	distances := make([]float64, len(route))
	for i := 1; i < len(route); i++ {
		distances[i] = distances[i-1] +
			DistanceKm(route[i-1].Lat, route[i-1].Lon, route[i].Lat, route[i].Lon)
	}
	return distances
}

// Bounds is a geographic bounding box in degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoundsOf returns the bounding box of a route, or false when the route is
// empty.
func BoundsOf(route []Point) (Bounds, bool) {
	if len(route) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinLon: route[0].Lon, MaxLon: route[0].Lon,
		MinLat: route[0].Lat, MaxLat: route[0].Lat,
	}
	for _, p := range route[1:] {
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b, true
}

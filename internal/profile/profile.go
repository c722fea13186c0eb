// Package profile turns a trek route into an SVG-ready elevation chart.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// Default viewbox dimensions for the chart path.
const (
	DefaultWidth  = 300.0
	DefaultHeight = 120.0
)

// flatRoutePad is the plotting pad applied when the route has no elevation
// range at all, so a flat route still renders a visible band instead of a
// zero-height chart.
const flatRoutePad = 100.0

// Profile is the computed elevation chart for a route.
type Profile struct {
	// MinElevation and MaxElevation are the raw extremes across the route.
	MinElevation float64
	MaxElevation float64

	// PlotMin and PlotMax are the padded plotting range:
	// PlotMin = max(0, min - 10% of range), PlotMax = max + 10% of range.
	PlotMin float64
	PlotMax float64

	// Distances holds the cumulative along-route distance at each point, km.
	Distances []float64

	// TotalKm is the full route length.
	TotalKm float64

	// LinePath is the SVG path ("M x,y L ...") of the elevation line within
	// the Width x Height viewbox. Higher elevations draw higher on screen
	// (smaller y).
	LinePath string

	// AreaPath is LinePath closed along the bottom edge, for fill rendering.
	AreaPath string

	Width  float64
	Height float64
}

// Options overrides the chart viewbox.
type Options struct {
	Width  float64
	Height float64
}

// Build computes the elevation profile for a route. Returns nil for an
// empty route; any other input produces a usable chart, including flat and
// single-point routes.
func Build(route []geo.Point, opts Options) *Profile {
	if len(route) == 0 {
		return nil
	}

	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	height := opts.Height
	if height <= 0 {
		height = DefaultHeight
	}

	minEle := route[0].Elevation
	maxEle := route[0].Elevation
	for _, p := range route[1:] {
		minEle = math.Min(minEle, p.Elevation)
		maxEle = math.Max(maxEle, p.Elevation)
	}

	pad := (maxEle - minEle) * 0.1
	if pad == 0 {
		pad = flatRoutePad
	}
	plotMin := math.Max(0, minEle-pad)
	plotMax := maxEle + pad

	distances := geo.CumulativeDistancesKm(route)
	totalKm := distances[len(distances)-1]

	var line strings.Builder
	for i, p := range route {
		x := 0.0
		if totalKm > 0 {
			x = distances[i] / totalKm * width
		}
		// Invert y: plotMax maps to the top of the viewbox.
		y := (1 - (p.Elevation-plotMin)/(plotMax-plotMin)) * height

		if i == 0 {
			fmt.Fprintf(&line, "M %.2f,%.2f", x, y)
		} else {
			fmt.Fprintf(&line, " L %.2f,%.2f", x, y)
		}
	}
	linePath := line.String()

	// Close along the baseline for fill rendering.
	lastX := width
	if totalKm == 0 {
		lastX = 0
	}
	areaPath := fmt.Sprintf("%s L %.2f,%.2f L %.2f,%.2f Z", linePath, lastX, height, 0.0, height)

	return &Profile{
		MinElevation: minEle,
		MaxElevation: maxEle,
		PlotMin:      plotMin,
		PlotMax:      plotMax,
		Distances:    distances,
		TotalKm:      totalKm,
		LinePath:     linePath,
		AreaPath:     areaPath,
		Width:        width,
		Height:       height,
	}
}

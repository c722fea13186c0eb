package profile

import (
	"strings"
	"testing"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

func TestBuild_EmptyRoute(t *testing.T) {
	if p := Build(nil, Options{}); p != nil {
		t.Errorf("Build(nil) = %+v, want nil", p)
	}
	if p := Build([]geo.Point{}, Options{}); p != nil {
		t.Errorf("Build(empty) = %+v, want nil", p)
	}
}

func TestBuild_PlotRangeBracketsElevations(t *testing.T) {
	route := []geo.Point{
		{Lon: 86.85, Lat: 27.68, Elevation: 2600},
		{Lon: 86.72, Lat: 27.81, Elevation: 3400},
		{Lon: 86.71, Lat: 27.89, Elevation: 5400},
	}

	p := Build(route, Options{})
	if p == nil {
		t.Fatal("Build returned nil for non-empty route")
	}

	if p.MinElevation != 2600 || p.MaxElevation != 5400 {
		t.Errorf("elevation range = [%v, %v], want [2600, 5400]", p.MinElevation, p.MaxElevation)
	}

	// 10% of the 2800m range on each side.
	if p.PlotMin != 2320 {
		t.Errorf("PlotMin = %v, want 2320", p.PlotMin)
	}
	if p.PlotMax != 5680 {
		t.Errorf("PlotMax = %v, want 5680", p.PlotMax)
	}

	if !(p.PlotMin <= p.MinElevation && p.MaxElevation <= p.PlotMax) {
		t.Errorf("plot range [%v, %v] does not bracket [%v, %v]",
			p.PlotMin, p.PlotMax, p.MinElevation, p.MaxElevation)
	}
}

func TestBuild_PlotMinClampedAtZero(t *testing.T) {
	route := []geo.Point{
		{Lon: 4.89, Lat: 52.37, Elevation: 2},
		{Lon: 4.95, Lat: 52.35, Elevation: 90},
	}

	p := Build(route, Options{})
	if p.PlotMin != 0 {
		t.Errorf("PlotMin = %v, want 0 (clamped)", p.PlotMin)
	}
}

func TestBuild_FlatRouteHasNonZeroRange(t *testing.T) {
	route := []geo.Point{
		{Lon: 4.89, Lat: 52.37, Elevation: 1500},
		{Lon: 4.95, Lat: 52.35, Elevation: 1500},
		{Lon: 5.01, Lat: 52.33, Elevation: 1500},
	}

	p := Build(route, Options{})
	if p.PlotMax <= p.PlotMin {
		t.Fatalf("flat route plot range [%v, %v] is degenerate", p.PlotMin, p.PlotMax)
	}
	if p.PlotMin != 1400 || p.PlotMax != 1600 {
		t.Errorf("flat route plot range = [%v, %v], want [1400, 1600]", p.PlotMin, p.PlotMax)
	}
}

func TestBuild_Paths(t *testing.T) {
	route := []geo.Point{
		{Lon: 86.85, Lat: 27.68, Elevation: 2600},
		{Lon: 86.72, Lat: 27.81, Elevation: 3400},
		{Lon: 86.71, Lat: 27.89, Elevation: 4400},
	}

	p := Build(route, Options{})

	if !strings.HasPrefix(p.LinePath, "M 0.00,") {
		t.Errorf("LinePath should start at x=0, got %q", p.LinePath)
	}
	if got := strings.Count(p.LinePath, " L "); got != 2 {
		t.Errorf("LinePath has %d line segments, want 2", got)
	}
	if !strings.HasSuffix(p.AreaPath, "Z") {
		t.Errorf("AreaPath should be closed, got %q", p.AreaPath)
	}
	if !strings.HasPrefix(p.AreaPath, p.LinePath) {
		t.Error("AreaPath should extend LinePath")
	}

	// The last line point lands on the right edge of the viewbox.
	if !strings.Contains(p.LinePath, " L 300.00,") {
		t.Errorf("LinePath should end at x=300, got %q", p.LinePath)
	}
}

func TestBuild_SinglePoint(t *testing.T) {
	p := Build([]geo.Point{{Lon: 86.85, Lat: 27.68, Elevation: 2600}}, Options{})
	if p == nil {
		t.Fatal("Build returned nil for single-point route")
	}
	if p.TotalKm != 0 {
		t.Errorf("TotalKm = %v, want 0", p.TotalKm)
	}
	if !strings.HasPrefix(p.LinePath, "M 0.00,") {
		t.Errorf("single point should plot at x=0, got %q", p.LinePath)
	}
}

func TestBuild_CustomViewbox(t *testing.T) {
	route := []geo.Point{
		{Lon: 86.85, Lat: 27.68, Elevation: 2600},
		{Lon: 86.72, Lat: 27.81, Elevation: 3400},
	}

	p := Build(route, Options{Width: 600, Height: 200})
	if p.Width != 600 || p.Height != 200 {
		t.Errorf("viewbox = %vx%v, want 600x200", p.Width, p.Height)
	}
	if !strings.Contains(p.LinePath, " L 600.00,") {
		t.Errorf("LinePath should end at x=600, got %q", p.LinePath)
	}
}

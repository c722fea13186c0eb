package trek

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trekatlas/trekatlas/pkg/geo"
)

// mockRepository counts GetData calls and can be switched into failure mode.
type mockRepository struct {
	*InMemoryRepository
	getDataCalls atomic.Int32
	failGetData  atomic.Bool
}

func (m *mockRepository) GetData(ctx context.Context, trekID string) (*TrekData, error) {
	m.getDataCalls.Add(1)
	if m.failGetData.Load() {
		return nil, errors.New("connection refused")
	}
	return m.InMemoryRepository.GetData(ctx, trekID)
}

func newTestRepo(t *testing.T) *mockRepository {
	t.Helper()
	repo := &mockRepository{InMemoryRepository: NewInMemoryRepository()}

	err := repo.PutData(context.Background(), &TrekData{
		TrekID: "trk_everest",
		Route: []geo.Point{
			{Lon: 86.85, Lat: 27.68, Elevation: 2610},
			{Lon: 86.72, Lat: 27.81, Elevation: 3440},
			{Lon: 86.71, Lat: 27.89, Elevation: 3860},
			{Lon: 86.73, Lat: 27.94, Elevation: 4410},
		},
		Camps: []Camp{
			{DayNumber: 1, Name: "Phakding", Coordinates: geo.Point{Lon: 86.72, Lat: 27.81}, Elevation: 2610},
			{DayNumber: 2, Name: "Namche", Coordinates: geo.Point{Lon: 86.71, Lat: 27.89}, Elevation: 3440},
			{DayNumber: 3, Name: "Dingboche", Coordinates: geo.Point{Lon: 86.73, Lat: 27.94}, Elevation: 4410},
		},
	})
	if err != nil {
		t.Fatalf("seed data: %v", err)
	}

	return repo
}

func TestService_GetData_CachesRepositoryReads(t *testing.T) {
	repo := newTestRepo(t)
	service := NewService(ServiceConfig{
		Repository: repo,
		CacheTTL:   5 * time.Minute,
	})

	ctx := context.Background()
	if _, err := service.GetData(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.GetData(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := repo.getDataCalls.Load(); got != 1 {
		t.Errorf("expected 1 repository read (cache hit on second), got %d", got)
	}
}

func TestService_GetData_StaleIfError(t *testing.T) {
	repo := newTestRepo(t)
	service := NewService(ServiceConfig{
		Repository:      repo,
		CacheTTL:        1 * time.Nanosecond, // force immediate expiry
		StaleIfErrorTTL: time.Hour,
	})

	ctx := context.Background()
	if _, err := service.GetData(ctx, "trk_everest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.failGetData.Store(true)
	time.Sleep(time.Millisecond)

	data, err := service.GetData(ctx, "trk_everest")
	if err != nil {
		t.Fatalf("expected stale data on repository error, got %v", err)
	}
	if len(data.Camps) != 3 {
		t.Errorf("stale data has %d camps, want 3", len(data.Camps))
	}
}

func TestService_GetData_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	service := NewService(ServiceConfig{Repository: repo})

	_, err := service.GetData(context.Background(), "trk_missing")
	if !errors.Is(err, ErrTrekDataNotFound) {
		t.Errorf("err = %v, want ErrTrekDataNotFound", err)
	}
}

func TestService_PutData_ValidatesDayNumbers(t *testing.T) {
	repo := newTestRepo(t)
	service := NewService(ServiceConfig{Repository: repo})
	ctx := context.Background()

	err := service.PutData(ctx, &TrekData{
		TrekID: "trk_bad",
		Camps:  []Camp{{DayNumber: 0, Name: "Start"}},
	})
	if !errors.Is(err, ErrInvalidDayNumber) {
		t.Errorf("err = %v, want ErrInvalidDayNumber", err)
	}

	err = service.PutData(ctx, &TrekData{
		TrekID: "trk_bad",
		Camps: []Camp{
			{DayNumber: 1, Name: "Start"},
			{DayNumber: 1, Name: "Again"},
		},
	})
	if !errors.Is(err, ErrDuplicateDayNumber) {
		t.Errorf("err = %v, want ErrDuplicateDayNumber", err)
	}
}

func TestService_PutData_InvalidatesCache(t *testing.T) {
	repo := newTestRepo(t)
	service := NewService(ServiceConfig{
		Repository: repo,
		CacheTTL:   time.Hour,
	})
	ctx := context.Background()

	before, err := service.GetData(ctx, "trk_everest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := *before
	updated.Camps = updated.Camps[:2]
	if err := service.PutData(ctx, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := service.GetData(ctx, "trk_everest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after.Camps) != 2 {
		t.Errorf("expected fresh data after PutData, got %d camps", len(after.Camps))
	}
}

func TestComputeStats(t *testing.T) {
	repo := newTestRepo(t)
	data, err := repo.GetData(context.Background(), "trk_everest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := ComputeStats(data)

	if stats.TotalDays != 3 {
		t.Errorf("TotalDays = %d, want 3", stats.TotalDays)
	}
	if stats.TotalDistanceKm <= 0 {
		t.Errorf("TotalDistanceKm = %v, want > 0", stats.TotalDistanceKm)
	}
	wantAvg := stats.TotalDistanceKm / 3
	if math.Abs(stats.AvgDailyKm-wantAvg) > 1e-9 {
		t.Errorf("AvgDailyKm = %v, want %v", stats.AvgDailyKm, wantAvg)
	}
	// Largest camp-to-camp climb is Namche (3440) to Dingboche (4410).
	if stats.MaxDailyGainM != 970 {
		t.Errorf("MaxDailyGainM = %v, want 970", stats.MaxDailyGainM)
	}
	if stats.MinElevationM != 2610 || stats.MaxElevationM != 4410 {
		t.Errorf("elevation range = [%v, %v], want [2610, 4410]", stats.MinElevationM, stats.MaxElevationM)
	}
	if stats.HighestCampName != "Dingboche" || stats.HighestCampDay != 3 {
		t.Errorf("highest camp = %q day %d, want Dingboche day 3", stats.HighestCampName, stats.HighestCampDay)
	}
}

func TestComputeStats_Degenerate(t *testing.T) {
	stats := ComputeStats(&TrekData{TrekID: "trk_empty"})
	if stats.TotalDistanceKm != 0 || stats.TotalDays != 0 || stats.MaxDailyGainM != 0 {
		t.Errorf("expected zeroed stats for empty data, got %+v", stats)
	}
}

func TestTrekData_CampLookups(t *testing.T) {
	repo := newTestRepo(t)
	data, err := repo.GetData(context.Background(), "trk_everest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c := data.CampByDay(2); c == nil || c.Name != "Namche" {
		t.Errorf("CampByDay(2) = %+v, want Namche", c)
	}
	if c := data.CampByDay(9); c != nil {
		t.Errorf("CampByDay(9) = %+v, want nil", c)
	}

	if p := data.PreviousCamp(3); p == nil || p.DayNumber != 2 {
		t.Errorf("PreviousCamp(3) = %+v, want day 2", p)
	}
	if p := data.PreviousCamp(1); p != nil {
		t.Errorf("PreviousCamp(1) = %+v, want nil", p)
	}
}

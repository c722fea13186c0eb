package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/api/models"
	"github.com/trekatlas/trekatlas/internal/api/response"
	"github.com/trekatlas/trekatlas/internal/camera"
	"github.com/trekatlas/trekatlas/internal/profile"
	"github.com/trekatlas/trekatlas/internal/trek"
	"github.com/trekatlas/trekatlas/pkg/geo"
)

const defaultListLimit = 50

// TrekHandler handles the public trek endpoints.
type TrekHandler struct {
	treks  *trek.Service
	logger zerolog.Logger
}

// NewTrekHandler creates a new TrekHandler.
func NewTrekHandler(treks *trek.Service, logger zerolog.Logger) *TrekHandler {
	return &TrekHandler{treks: treks, logger: logger}
}

// ListTreks handles GET /v1/treks - list the trek catalog.
func (h *TrekHandler) ListTreks(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 200", []models.FieldError{
				{Field: "limit", Message: "must be between 1 and 200"},
			})
			return
		}
		limit = parsed
	}

	result, err := h.treks.List(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("listing treks")
		response.InternalError(w, r, "failed to list treks")
		return
	}

	items := make([]models.TrekSummary, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTrekSummary(t))
	}

	resp := models.TrekListResponse{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit},
	}
	if result.NextCursor != "" {
		resp.Meta.NextCursor = &result.NextCursor
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// GetTrek handles GET /v1/treks/{trekId} - get a trek record.
func (h *TrekHandler) GetTrek(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	t, err := h.treks.Get(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, toTrekResponse(t))
}

// GetTrekData handles GET /v1/treks/{trekId}/data - route polyline, per-point
// elevations and camps.
func (h *TrekHandler) GetTrekData(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	data, err := h.treks.GetData(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	elevations := make([]float64, len(data.Route))
	for i, p := range data.Route {
		elevations[i] = p.Elevation
	}

	camps := make([]models.CampResponse, 0, len(data.Camps))
	for i := range data.Camps {
		camps = append(camps, toCampResponse(&data.Camps[i]))
	}

	resp := models.TrekDataResponse{
		TrekID:        data.TrekID,
		RoutePolyline: geo.EncodePolyline(data.Route),
		Elevations:    elevations,
		Camps:         camps,
	}
	if bounds, ok := geo.BoundsOf(data.Route); ok {
		resp.Bounds = &models.GeoBox{
			MinLon: bounds.MinLon,
			MinLat: bounds.MinLat,
			MaxLon: bounds.MaxLon,
			MaxLat: bounds.MaxLat,
		}
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// GetProfile handles GET /v1/treks/{trekId}/profile - the elevation chart.
// Optional width and height query parameters override the viewbox.
func (h *TrekHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	var opts profile.Options
	var fieldErrs []models.FieldError
	opts.Width, fieldErrs = dimensionParam(r, "width", fieldErrs)
	opts.Height, fieldErrs = dimensionParam(r, "height", fieldErrs)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid chart dimensions", fieldErrs)
		return
	}

	data, err := h.treks.GetData(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	p := profile.Build(data.Route, opts)
	if p == nil {
		response.NotFound(w, r, "trek has no route data")
		return
	}

	resp := models.ProfileResponse{
		MinElevation: p.MinElevation,
		MaxElevation: p.MaxElevation,
		PlotMin:      p.PlotMin,
		PlotMax:      p.PlotMax,
		TotalKm:      p.TotalKm,
		LinePath:     p.LinePath,
		AreaPath:     p.AreaPath,
		Width:        p.Width,
		Height:       p.Height,
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// GetStats handles GET /v1/treks/{trekId}/stats - day-over-day statistics.
func (h *TrekHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	stats, err := h.treks.Stats(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	resp := models.StatsResponse{
		TotalDistanceKm: stats.TotalDistanceKm,
		TotalDays:       stats.TotalDays,
		AvgDailyKm:      stats.AvgDailyKm,
		MaxDailyGainM:   stats.MaxDailyGainM,
		MinElevationM:   stats.MinElevationM,
		MaxElevationM:   stats.MaxElevationM,
		HighestCampName: stats.HighestCampName,
		HighestCampM:    stats.HighestCampM,
		HighestCampDay:  stats.HighestCampDay,
		RoutePointCount: stats.RoutePointCount,
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// GetCamera handles GET /v1/treks/{trekId}/camera?day=N - the computed
// day-view camera pose and active route segment.
func (h *TrekHandler) GetCamera(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	day, err := strconv.Atoi(r.URL.Query().Get("day"))
	if err != nil || day < 1 {
		response.BadRequest(w, r, "day must be a positive integer", []models.FieldError{
			{Field: "day", Message: "must be a positive integer"},
		})
		return
	}

	t, err := h.treks.Get(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	data, err := h.treks.GetData(r.Context(), trekID)
	if err != nil {
		h.writeTrekError(w, r, trekID, err)
		return
	}

	camp := data.CampByDay(day)
	if camp == nil {
		response.NotFound(w, r, "no camp for the requested day")
		return
	}

	pitch := camera.DayPitch
	if camp.Pitch != nil {
		pitch = *camp.Pitch
	}

	resp := models.CameraResponse{
		Day:     day,
		Center:  toPoint(camp.Coordinates),
		Zoom:    camera.DayZoom,
		Bearing: camera.CampBearing(t, data, camp),
		Pitch:   pitch,
	}

	if segment := camera.ActiveSegment(data, day); segment != nil {
		points := make([]models.Point, len(segment))
		for i, p := range segment {
			points[i] = toPoint(p)
		}
		resp.Segment = points
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// writeTrekError maps service errors to problem responses.
func (h *TrekHandler) writeTrekError(w http.ResponseWriter, r *http.Request, trekID string, err error) {
	switch {
	case errors.Is(err, trek.ErrTrekNotFound):
		response.NotFound(w, r, "trek not found")
	case errors.Is(err, trek.ErrTrekDataNotFound):
		response.NotFound(w, r, "trek data not found")
	default:
		h.logger.Error().Err(err).Str("trek_id", trekID).Msg("trek request failed")
		response.InternalError(w, r, "failed to load trek")
	}
}

// dimensionParam parses an optional positive float query parameter,
// accumulating a field error on bad input. Zero means "use the default".
func dimensionParam(r *http.Request, name string, fieldErrs []models.FieldError) (float64, []models.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fieldErrs
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v > 4096 {
		return 0, append(fieldErrs, models.FieldError{Field: name, Message: "must be a number between 1 and 4096"})
	}
	return v, fieldErrs
}

func toTrekSummary(t *trek.Trek) models.TrekSummary {
	return models.TrekSummary{
		ID:      t.ID,
		Name:    t.Name,
		Country: t.Country,
		Blurb:   t.Blurb,
		Marker:  models.Point{Lon: t.MarkerLon, Lat: t.MarkerLat},
	}
}

func toTrekResponse(t *trek.Trek) models.TrekResponse {
	return models.TrekResponse{
		ID:             t.ID,
		Name:           t.Name,
		Country:        t.Country,
		Blurb:          t.Blurb,
		Marker:         models.Point{Lon: t.MarkerLon, Lat: t.MarkerLat},
		DefaultBearing: t.DefaultBearing,
		DefaultPitch:   t.DefaultPitch,
		CreatedAt:      models.Timestamp(t.CreatedAt),
		UpdatedAt:      models.Timestamp(t.UpdatedAt),
	}
}

func toCampResponse(c *trek.Camp) models.CampResponse {
	return models.CampResponse{
		DayNumber:        c.DayNumber,
		Name:             c.Name,
		Coordinates:      toPoint(c.Coordinates),
		Elevation:        c.Elevation,
		Description:      c.Description,
		Highlights:       c.Highlights,
		Weather:          c.Weather,
		PointsOfInterest: c.PointsOfInterest,
		FunFacts:         c.FunFacts,
		HistoricalSites:  c.HistoricalSites,
	}
}

func toPoint(p geo.Point) models.Point {
	return models.Point{Lon: p.Lon, Lat: p.Lat, Elevation: p.Elevation}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trekatlas/trekatlas/internal/api/models"
	"github.com/trekatlas/trekatlas/internal/api/response"
	"github.com/trekatlas/trekatlas/internal/trek"
	"github.com/trekatlas/trekatlas/pkg/geo"
)

// AdminHandler handles the admin trek management endpoints.
type AdminHandler struct {
	treks  *trek.Service
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(treks *trek.Service, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{treks: treks, logger: logger}
}

// CreateTrek handles POST /v1/admin/treks - create a trek record.
func (h *AdminHandler) CreateTrek(w http.ResponseWriter, r *http.Request) {
	var input models.TrekUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrs := validateTrekUpsert(&input); len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}

	t := trekFromUpsert("trk_"+uuid.New().String()[:22], &input)
	if err := h.treks.Create(r.Context(), t); err != nil {
		h.logger.Error().Err(err).Msg("creating trek")
		response.InternalError(w, r, "failed to create trek")
		return
	}

	location := fmt.Sprintf("/v1/treks/%s", t.ID)
	response.Created(w, r, location, toTrekResponse(t))
}

// UpdateTrek handles PUT /v1/admin/treks/{trekId} - replace a trek record.
func (h *AdminHandler) UpdateTrek(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	var input models.TrekUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrs := validateTrekUpsert(&input); len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}

	existing, err := h.treks.Get(r.Context(), trekID)
	if err != nil {
		if errors.Is(err, trek.ErrTrekNotFound) {
			response.NotFound(w, r, "trek not found")
			return
		}
		h.logger.Error().Err(err).Str("trek_id", trekID).Msg("loading trek for update")
		response.InternalError(w, r, "failed to update trek")
		return
	}

	t := trekFromUpsert(trekID, &input)
	t.CreatedAt = existing.CreatedAt
	if err := h.treks.Update(r.Context(), t); err != nil {
		h.logger.Error().Err(err).Str("trek_id", trekID).Msg("updating trek")
		response.InternalError(w, r, "failed to update trek")
		return
	}

	response.JSON(w, r, http.StatusOK, toTrekResponse(t))
}

// DeleteTrek handles DELETE /v1/admin/treks/{trekId}.
func (h *AdminHandler) DeleteTrek(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	if err := h.treks.Delete(r.Context(), trekID); err != nil {
		if errors.Is(err, trek.ErrTrekNotFound) {
			response.NotFound(w, r, "trek not found")
			return
		}
		h.logger.Error().Err(err).Str("trek_id", trekID).Msg("deleting trek")
		response.InternalError(w, r, "failed to delete trek")
		return
	}

	response.NoContent(w, r)
}

// PutTrekData handles PUT /v1/admin/treks/{trekId}/data - replace a trek's
// route and camps.
func (h *AdminHandler) PutTrekData(w http.ResponseWriter, r *http.Request) {
	trekID := chi.URLParam(r, "trekId")

	var input models.TrekDataUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	// The trek record must exist before data can be attached.
	if _, err := h.treks.Get(r.Context(), trekID); err != nil {
		if errors.Is(err, trek.ErrTrekNotFound) {
			response.NotFound(w, r, "trek not found")
			return
		}
		h.logger.Error().Err(err).Str("trek_id", trekID).Msg("loading trek for data upsert")
		response.InternalError(w, r, "failed to store trek data")
		return
	}

	route := geo.DecodePolyline(input.RoutePolyline)
	if len(route) == 0 {
		response.BadRequest(w, r, "routePolyline must decode to at least one point", []models.FieldError{
			{Field: "routePolyline", Message: "must be a non-empty encoded polyline"},
		})
		return
	}

	if len(input.Elevations) > 0 {
		if len(input.Elevations) != len(route) {
			response.BadRequest(w, r, "elevations must match the route point count", []models.FieldError{
				{Field: "elevations", Message: fmt.Sprintf("expected %d values, got %d", len(route), len(input.Elevations))},
			})
			return
		}
		for i := range route {
			route[i].Elevation = input.Elevations[i]
		}
	}

	camps := make([]trek.Camp, 0, len(input.Camps))
	for i := range input.Camps {
		camps = append(camps, campFromUpsert(&input.Camps[i]))
	}

	data := &trek.TrekData{
		TrekID: trekID,
		Route:  route,
		Camps:  camps,
	}

	if err := h.treks.PutData(r.Context(), data); err != nil {
		switch {
		case errors.Is(err, trek.ErrInvalidDayNumber):
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "camps", Message: "day numbers must be positive"},
			})
		case errors.Is(err, trek.ErrDuplicateDayNumber):
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "camps", Message: "day numbers must be unique"},
			})
		default:
			h.logger.Error().Err(err).Str("trek_id", trekID).Msg("storing trek data")
			response.InternalError(w, r, "failed to store trek data")
		}
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/cache/invalidate - drop all cached
// trek data so the next reads hit the repository.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.treks.InvalidateCache()
	h.logger.Info().Msg("trek cache invalidated")
	response.NoContent(w, r)
}

// validateTrekUpsert checks the required trek fields.
func validateTrekUpsert(input *models.TrekUpsertRequest) []models.FieldError {
	var fieldErrs []models.FieldError
	if input.Name == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "name", Message: "is required"})
	}
	if input.Country == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "country", Message: "is required"})
	}
	if input.Marker.Lat < -90 || input.Marker.Lat > 90 {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "marker.lat", Message: "must be between -90 and 90"})
	}
	if input.Marker.Lon < -180 || input.Marker.Lon > 180 {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "marker.lon", Message: "must be between -180 and 180"})
	}
	return fieldErrs
}

func trekFromUpsert(id string, input *models.TrekUpsertRequest) *trek.Trek {
	return &trek.Trek{
		ID:             id,
		Name:           input.Name,
		Country:        input.Country,
		Blurb:          input.Blurb,
		MarkerLat:      input.Marker.Lat,
		MarkerLon:      input.Marker.Lon,
		DefaultBearing: input.DefaultBearing,
		DefaultPitch:   input.DefaultPitch,
	}
}

func campFromUpsert(c *models.CampUpsert) trek.Camp {
	return trek.Camp{
		DayNumber:        c.DayNumber,
		Name:             c.Name,
		Coordinates:      geo.Point{Lon: c.Coordinates.Lon, Lat: c.Coordinates.Lat, Elevation: c.Coordinates.Elevation},
		Elevation:        c.Elevation,
		Description:      c.Description,
		Highlights:       c.Highlights,
		Weather:          c.Weather,
		PointsOfInterest: c.PointsOfInterest,
		FunFacts:         c.FunFacts,
		HistoricalSites:  c.HistoricalSites,
		Bearing:          c.Bearing,
		Pitch:            c.Pitch,
	}
}

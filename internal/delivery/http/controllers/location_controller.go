package controllers

import (
	"log/slog"
	"net/http"

	h "pintapoa/internal/delivery/http/helpers"
	"pintapoa/internal/domain"
)

// LocationRequest is the request body for creating or updating a location.
type LocationRequest struct {
	// ID is accepted so clients can send a listed location back as is. The path id wins.
	ID          string `json:"id,omitempty" swaggerignore:"true"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ImageURL    string `json:"imageUrl"`
	Coordinates string `json:"coordinates"`
}

func (l LocationRequest) input() domain.LocationInput {
	return domain.LocationInput{
		Name:        l.Name,
		Address:     l.Address,
		Date:        l.Date,
		Time:        l.Time,
		ImageURL:    l.ImageURL,
		Coordinates: l.Coordinates,
	}
}

// Validate implements Validator. name, address, date and time are required and date is YYYY-MM-DD.
func (l LocationRequest) Validate() []string {
	err := l.input().Normalize().Validate()
	if err == nil {
		return nil
	}
	if verr, ok := err.(*domain.ValidationError); ok {
		return verr.Fields
	}
	return []string{err.Error()}
}

// LocationSuccessResponse is the success response envelope for a single location.
type LocationSuccessResponse struct {
	Data  *domain.Location `json:"data"`
	Error *h.APIError      `json:"error"`
}

// LocationListSuccessResponse is the success response envelope for a list of locations.
type LocationListSuccessResponse struct {
	Data  []*domain.Location `json:"data"`
	Error *h.APIError        `json:"error"`
}

// ActiveLocationResponse reports whether the event is running and where.
type ActiveLocationResponse struct {
	Active   bool             `json:"active"`
	Location *domain.Location `json:"location"`
}

type LocationController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

func NewLocationController(logger *slog.Logger, svc domain.LocationService) *LocationController {
	return &LocationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListLocations godoc
// @Summary List locations
// @Description Returns every location, most recent date first. An unreachable store yields an empty list.
// @Tags locations
// @Produce json
// @Success 200 {object} controllers.LocationListSuccessResponse
// @Router /api/locations [get]
func (c *LocationController) ListLocations(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.ListLocations(r.Context()))
}

// GetLatestLocation godoc
// @Summary Get the latest location
// @Description Returns the location with the most recent date, or null when there is none.
// @Tags locations
// @Produce json
// @Success 200 {object} controllers.LocationSuccessResponse
// @Router /api/locations/latest [get]
func (c *LocationController) GetLatestLocation(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.GetLatestLocation(r.Context()))
}

// GetPastLocations godoc
// @Summary List past locations
// @Description Returns up to limit locations, most recent first. While the event is active the latest location is left out.
// @Tags locations
// @Produce json
// @Param limit query int false "Maximum number of locations (default 5, max 50)"
// @Success 200 {object} controllers.LocationListSuccessResponse
// @Router /api/locations/past [get]
func (c *LocationController) GetPastLocations(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.GetPastLocations(r.Context(), h.ParseLimit(r)))
}

// GetActiveLocation godoc
// @Summary Get the active location
// @Description Reports whether the event is active and, if so, the latest location.
// @Tags locations
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains active and location"
// @Router /api/locations/active [get]
func (c *LocationController) GetActiveLocation(w http.ResponseWriter, r *http.Request) {
	active, loc := c.Service.HasActiveLocation(r.Context())
	h.WriteJSONSuccess(w, http.StatusOK, ActiveLocationResponse{Active: active, Location: loc})
}

// CreateLocation godoc
// @Summary Create a location
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param location body LocationRequest true "Location data"
// @Success 201 {object} controllers.LocationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/admin/locations [post]
func (c *LocationController) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	loc, err := c.Service.CreateLocation(r.Context(), req.input())
	if err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, loc)
}

// UpdateLocation godoc
// @Summary Replace a location
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param location body LocationRequest true "Location data"
// @Success 200 {object} controllers.LocationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/admin/locations/{id} [put]
func (c *LocationController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req LocationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	loc, err := c.Service.UpdateLocation(r.Context(), id, req.input())
	if err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, loc)
}

// DeleteLocation godoc
// @Summary Delete a location
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/admin/locations/{id} [delete]
func (c *LocationController) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteLocation(r.Context(), r.PathValue("id")); err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

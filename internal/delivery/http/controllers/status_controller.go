package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "pintapoa/internal/delivery/http/helpers"
	"pintapoa/internal/domain"
)

// StatusRequest is the request body for PUT /api/admin/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// Validate implements Validator.
func (s StatusRequest) Validate() []string {
	if strings.TrimSpace(s.Status) == "" {
		return []string{"status is required"}
	}
	if _, err := domain.ParseEventStatus(s.Status); err != nil {
		return []string{`status must be one of "waiting", "active", "see-you-soon", "ended"`}
	}
	return nil
}

// StatusResponse is the data of the status endpoints.
type StatusResponse struct {
	Status domain.EventStatus `json:"status"`
}

type StatusController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

func NewStatusController(logger *slog.Logger, svc domain.LocationService) *StatusController {
	return &StatusController{
		Logger:  logger,
		Service: svc,
	}
}

// GetStatus godoc
// @Summary Get the event status
// @Description Returns the current event status. Falls back to "waiting" when the store is unreachable.
// @Tags status
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Router /api/status [get]
func (c *StatusController) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: c.Service.GetStatus(r.Context())})
}

// UpdateStatus godoc
// @Summary Set the event status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/admin/status [put]
func (c *StatusController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseEventStatus(req.Status)
	if err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.SetStatus(r.Context(), status); err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: status})
}

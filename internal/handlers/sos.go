package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/services"
)

type SOSHandler struct {
	alerts *services.AlertService
}

func NewSOSHandler(alerts *services.AlertService) *SOSHandler {
	return &SOSHandler{alerts: alerts}
}

// Trigger opens an incident and queues the alert fan-out. Triggering while
// an incident is already open returns the open one without re-alerting.
func (h *SOSHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.TriggerSOSRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	incident, created, err := h.alerts.TriggerSOS(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, incident)
}

func (h *SOSHandler) Active(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	incident, err := h.alerts.Active(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, incident)
}

func (h *SOSHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	incidentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid incident ID", r))
		return
	}

	incident, err := h.alerts.Resolve(r.Context(), incidentID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, incident)
}

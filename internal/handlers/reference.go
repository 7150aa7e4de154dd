package handlers

import (
	"net/http"

	"resqlink-backend/internal/content"
)

// ReferenceHandler serves the static first-aid reference material. All
// endpoints are public and read-only.
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

func (h *ReferenceHandler) Manual(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": content.ManualSections(search),
	})
}

func (h *ReferenceHandler) LifeTips(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tips": content.LifeTips(search),
	})
}

func (h *ReferenceHandler) VideoGuides(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": content.VideoGuides(),
	})
}

func (h *ReferenceHandler) EmergencyNumbers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"numbers": content.EmergencyNumbers(),
		"steps":   content.EmergencyCallSteps(),
	})
}

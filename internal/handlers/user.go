package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/services"
)

type UserHandler struct {
	authService *services.AuthService
	userRepo    *repository.UserRepo
}

func NewUserHandler(authService *services.AuthService, userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{authService: authService, userRepo: userRepo}
}

// GetMe returns the caller's session: identity plus profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.authService.CurrentSession(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	profile, err := h.authService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// DeleteMe permanently removes the caller's account. The body may carry the
// active refresh token so it is revoked in the same call.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	// Body is optional; a missing refresh token just skips store cleanup.
	var req models.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.authService.DeleteAccount(r.Context(), userID, req.RefreshToken); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// SearchUsers finds registered users by email, for linking a contact to an
// app user. The caller is excluded from results.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("email"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query parameter 'email' is required", r))
		return
	}

	profiles, err := h.userRepo.SearchProfiles(r.Context(), userID, query, 10)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": profiles})
}

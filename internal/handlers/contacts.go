package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/services"
)

type ContactHandler struct {
	contactRepo *repository.ContactRepo
	userRepo    *repository.UserRepo
	notifRepo   *repository.NotificationRepo
	publisher   *services.EventPublisher
}

func NewContactHandler(
	contactRepo *repository.ContactRepo,
	userRepo *repository.UserRepo,
	notifRepo *repository.NotificationRepo,
	publisher *services.EventPublisher,
) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		publisher:   publisher,
	}
}

// List returns the caller's emergency contacts, primary contacts first.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	contacts, err := h.contactRepo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": contacts})
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name and phone are required", r))
		return
	}

	contact := &models.EmergencyContact{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Relationship: strings.TrimSpace(req.Relationship),
		IsPrimary:    req.IsPrimary,
	}

	if err := h.contactRepo.Create(r.Context(), contact); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// Link adds another registered user as an emergency contact and sends them
// a friend request notification.
func (h *ContactHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.LinkContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.AppUserID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "app_user_id is required", r))
		return
	}
	if req.AppUserID == userID {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "You cannot add yourself as a contact", r))
		return
	}

	exists, err := h.contactRepo.FindLink(r.Context(), userID, req.AppUserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if exists {
		handleServiceError(w, r, &services.ConflictError{Message: "This user is already in your contacts"})
		return
	}

	profile, err := h.userRepo.GetProfile(r.Context(), req.AppUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			handleServiceError(w, r, &services.NotFoundError{Message: "User not found"})
			return
		}
		handleServiceError(w, r, err)
		return
	}

	appUserID := profile.ID
	contact := &models.EmergencyContact{
		UserID:    userID,
		Name:      profile.FullName,
		Phone:     profile.Phone,
		IsAppUser: true,
		AppUserID: &appUserID,
	}

	if err := h.contactRepo.Create(r.Context(), contact); err != nil {
		handleServiceError(w, r, err)
		return
	}

	requester, err := h.userRepo.GetProfile(r.Context(), userID)
	if err == nil {
		notif := &models.Notification{
			UserID:   appUserID,
			Type:     models.NotificationFriendRequest,
			Title:    "Friend Request",
			Message:  fmt.Sprintf("%s added you as an emergency contact", requester.FullName),
			FromUser: &userID,
		}
		if err := h.notifRepo.Create(r.Context(), notif); err == nil {
			h.publisher.PublishMessage(r.Context(), appUserID, models.WSMessage{
				Type:    models.WSNotification,
				Payload: notif,
			})
		}
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid contact ID", r))
		return
	}

	contact, err := h.contactRepo.GetByID(r.Context(), contactID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			handleServiceError(w, r, &services.NotFoundError{Message: "Contact not found"})
			return
		}
		handleServiceError(w, r, err)
		return
	}
	if contact.UserID != userID {
		handleServiceError(w, r, &services.ForbiddenError{Message: "You can only update your own contacts"})
		return
	}

	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		contact.Name = name
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		contact.Phone = phone
	}
	contact.Relationship = strings.TrimSpace(req.Relationship)
	contact.IsPrimary = req.IsPrimary

	if err := h.contactRepo.Update(r.Context(), contact); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	contactID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid contact ID", r))
		return
	}

	if err := h.contactRepo.Delete(r.Context(), contactID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Contact deleted"})
}

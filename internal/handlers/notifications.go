package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/services"
)

type NotificationHandler struct {
	notifRepo   *repository.NotificationRepo
	contactRepo *repository.ContactRepo
	userRepo    *repository.UserRepo
}

func NewNotificationHandler(
	notifRepo *repository.NotificationRepo,
	contactRepo *repository.ContactRepo,
	userRepo *repository.UserRepo,
) *NotificationHandler {
	return &NotificationHandler{
		notifRepo:   notifRepo,
		contactRepo: contactRepo,
		userRepo:    userRepo,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notifications, err := h.notifRepo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notifID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid notification ID", r))
		return
	}

	if err := h.notifRepo.MarkRead(r.Context(), notifID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// Accept resolves a pending friend request: the status is persisted and the
// requester becomes a contact of the accepter as well, so the link works in
// both directions.
func (h *NotificationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notif, err := h.loadPendingRequest(r, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.notifRepo.UpdateStatus(r.Context(), notif.ID, models.RequestAccepted); err != nil {
		handleServiceError(w, r, err)
		return
	}

	exists, err := h.contactRepo.FindLink(r.Context(), userID, *notif.FromUser)
	if err == nil && !exists {
		if profile, perr := h.userRepo.GetProfile(r.Context(), *notif.FromUser); perr == nil {
			requesterID := profile.ID
			reciprocal := &models.EmergencyContact{
				UserID:    userID,
				Name:      profile.FullName,
				Phone:     profile.Phone,
				IsAppUser: true,
				AppUserID: &requesterID,
			}
			_ = h.contactRepo.Create(r.Context(), reciprocal)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Request accepted"})
}

// Reject resolves a pending friend request without creating any contact.
func (h *NotificationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notif, err := h.loadPendingRequest(r, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.notifRepo.UpdateStatus(r.Context(), notif.ID, models.RequestRejected); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Request rejected"})
}

func (h *NotificationHandler) loadPendingRequest(r *http.Request, userID uuid.UUID) (*models.Notification, error) {
	notifID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, &services.ValidationError{Cause: services.CauseRequired, Message: "Invalid notification ID"}
	}

	notif, err := h.notifRepo.GetByID(r.Context(), notifID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &services.NotFoundError{Message: "Notification not found"}
		}
		return nil, err
	}

	if notif.UserID != userID {
		return nil, &services.ForbiddenError{Message: "You can only respond to your own notifications"}
	}
	if notif.Type != models.NotificationFriendRequest || notif.FromUser == nil {
		return nil, &services.ValidationError{Cause: services.CauseRequired, Message: "Notification is not a friend request"}
	}
	if notif.Status != models.RequestPending {
		return nil, &services.ConflictError{Message: "Request has already been resolved"}
	}

	return notif, nil
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/repository"
	"resqlink-backend/internal/services"
)

type MessageHandler struct {
	messageRepo *repository.MessageRepo
	publisher   *services.EventPublisher
}

func NewMessageHandler(messageRepo *repository.MessageRepo, publisher *services.EventPublisher) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, publisher: publisher}
}

// Conversation returns the message history between the caller and another
// user, oldest first, and marks the other side's messages as read.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	contactID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid user ID", r))
		return
	}

	messages, err := h.messageRepo.ListConversation(r.Context(), userID, contactID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Best effort; listing still succeeds if the read marker lags.
	_ = h.messageRepo.MarkRead(r.Context(), userID, contactID)

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Send persists a message and pushes it onto the receiver's realtime feed.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message cannot be empty", r))
		return
	}
	if req.ReceiverID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "receiver_id is required", r))
		return
	}

	msg := &models.ChatMessage{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Message:    text,
	}

	if err := h.messageRepo.Create(r.Context(), msg); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.publisher.PublishMessage(r.Context(), req.ReceiverID, models.WSMessage{
		Type:    models.WSChatMessage,
		Payload: msg,
	})

	writeJSON(w, http.StatusCreated, msg)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted turn between two registered users.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Message    string    `json:"message"`
}

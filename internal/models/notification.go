package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationEmergency     = "emergency"
	NotificationAlert         = "alert"
	NotificationHelpRequest   = "request"
	NotificationFriendRequest = "friend_request"
)

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Location  *string    `json:"location,omitempty"`
	FromUser  *uuid.UUID `json:"from_user,omitempty"`
	Status    string     `json:"status"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

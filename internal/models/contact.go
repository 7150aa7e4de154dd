package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is a person to reach during an emergency. A contact may
// optionally link to another registered user, in which case Phone may be
// empty and Email is resolved from their profile.
type EmergencyContact struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Relationship string     `json:"relationship"`
	IsPrimary    bool       `json:"is_primary"`
	IsAppUser    bool       `json:"is_app_user"`
	AppUserID    *uuid.UUID `json:"app_user_id,omitempty"`
	Email        *string    `json:"email,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	IsPrimary    bool   `json:"is_primary"`
}

type LinkContactRequest struct {
	AppUserID uuid.UUID `json:"app_user_id"`
}

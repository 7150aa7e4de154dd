package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	IncidentOpen     = "open"
	IncidentResolved = "resolved"
)

// Incident is one SOS activation. It stays open until the reporter resolves
// it, mirroring the press-again-to-stop behavior of the SOS trigger.
type Incident struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

type TriggerSOSRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// AlertJob is the queued fan-out work for one SOS activation.
type AlertJob struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

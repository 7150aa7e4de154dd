package models

// WSMessage is the envelope for every event delivered on a user's realtime
// channel: auth-state changes, incoming chat messages, and notifications.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSAuthStateChanged = "auth_state_changed"
	WSChatMessage      = "chat_message"
	WSNotification     = "notification"
)

// AuthEvent reports a sign-in or sign-out, including ones triggered from
// another device or tab.
type AuthEvent struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
}

const (
	AuthSignedIn  = "signed_in"
	AuthSignedOut = "signed_out"
)

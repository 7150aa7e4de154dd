package models

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// AssistantMessage is a single rendered chat bubble. Created on send and on
// receive, never mutated.
type AssistantMessage struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// AssistantTurn is one entry of the AI session history. Unlike the display
// transcript it contains the seed exchange and omits the greeting bubble.
type AssistantTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type AssistantSendRequest struct {
	Text string `json:"text"`
}

type AssistantSendResponse struct {
	Reply string `json:"reply"`
}

type SpeakRequest struct {
	Text string `json:"text"`
}

type TranscribeRequest struct {
	Audio    []byte `json:"audio"`
	MIMEType string `json:"mime_type"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

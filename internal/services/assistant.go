package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"resqlink-backend/internal/models"
)

// Greeting shown as the first transcript bubble. It is display-only and
// never part of the AI session history.
const AssistantGreeting = "Hello! I'm here to help you with emergency-related questions."

// FallbackReply replaces the bot turn whenever the AI service fails.
const FallbackReply = "I'm sorry, I'm having trouble processing your request right now. If this is an emergency, please call emergency services immediately."

// Every session opens with this scripted exchange before any user input.
const (
	seedUserTurn  = "hiii"
	seedModelTurn = "Hello there. I hope you are doing well. If you are experiencing any kind of emergency or disaster-related situation, please tell me what's going on. I'm here to help you and provide some guidance. If it's a serious emergency, please remember that I can only offer initial advice, and you should seek immediate professional medical attention.\n"
)

const nurseInstruction = `Act as a kind, calm nurse who understands every Indian language.
When someone describes their current situation or an emergency, tell them briefly what to do, and remind them to seek a doctor's advice if it is a real emergency.
Provide the emergency number appropriate to their need.
Mirror the user's chat language pattern. Keep the tone calm, steady, and gentle so the person feels at ease.
Use simple and positive phrases. Only answer disaster or emergency related talk and ignore useless conversation.
Chat like a human, not like a robot, and write short text responses.`

// chatTurner is one remote AI chat session: send a user turn, get a reply.
type chatTurner interface {
	Send(ctx context.Context, text string) (string, error)
}

// Conversation owns one chat session's lifecycle. Sends are serialized so
// replies always land in issue order; the session history is appended only
// on success and is never corrupted by a failed exchange.
type Conversation struct {
	mu         sync.Mutex
	chat       chatTurner
	history    []models.AssistantTurn
	transcript []models.AssistantMessage
	Voice      *VoiceInput
	Speech     *VoiceOutput
}

// Send appends the user turn optimistically, then requests a completion.
// Empty or whitespace-only input is a no-op. Any AI failure is recovered
// locally by substituting the fixed fallback reply.
func (c *Conversation) Send(ctx context.Context, text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || c.chat == nil {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = append(c.transcript, models.AssistantMessage{Text: trimmed, Sender: models.SenderUser})

	reply, err := c.chat.Send(ctx, trimmed)
	if err != nil {
		c.transcript = append(c.transcript, models.AssistantMessage{Text: FallbackReply, Sender: models.SenderBot})
		return FallbackReply, true
	}

	c.history = append(c.history,
		models.AssistantTurn{Role: models.RoleUser, Text: trimmed},
		models.AssistantTurn{Role: models.RoleModel, Text: reply},
	)
	c.transcript = append(c.transcript, models.AssistantMessage{Text: reply, Sender: models.SenderBot})
	return reply, true
}

// Transcript returns a copy of the display messages in append order.
func (c *Conversation) Transcript() []models.AssistantMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AssistantMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// History returns a copy of the AI session history, seed exchange included.
func (c *Conversation) History() []models.AssistantTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AssistantTurn, len(c.history))
	copy(out, c.history)
	return out
}

// AssistantService manages one conversation per user and the shared Gemini
// client behind them.
type AssistantService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	newChat  func() chatTurner
	synth    Synthesizer
	rateChan chan struct{} // concurrent call slots

	mu    sync.Mutex
	convs map[uuid.UUID]*Conversation
}

func NewAssistantService(apiKey, modelName string, callSlots int, synth Synthesizer) (*AssistantService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SetTopP(0.95)
	model.SetTopK(64)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "text/plain"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(nurseInstruction)},
	}

	rateChan := make(chan struct{}, callSlots)
	for i := 0; i < callSlots; i++ {
		rateChan <- struct{}{}
	}

	s := &AssistantService{
		client:   client,
		model:    model,
		synth:    synth,
		rateChan: rateChan,
		convs:    make(map[uuid.UUID]*Conversation),
	}
	s.newChat = s.startGeminiChat
	return s, nil
}

// VoiceOutputAvailable reports whether speech synthesis is configured.
func (s *AssistantService) VoiceOutputAvailable() bool {
	return s.synth != nil
}

func (s *AssistantService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Start establishes a conversation for the user, replacing any existing one
// (prior history is discarded). The session is seeded with the scripted
// greeting exchange before any real user turn.
func (s *AssistantService) Start(userID uuid.UUID) *Conversation {
	conv := &Conversation{
		chat: s.newChat(),
		history: []models.AssistantTurn{
			{Role: models.RoleUser, Text: seedUserTurn},
			{Role: models.RoleModel, Text: seedModelTurn},
		},
		transcript: []models.AssistantMessage{
			{Text: AssistantGreeting, Sender: models.SenderBot},
		},
		Voice:  &VoiceInput{transcriber: s},
		Speech: &VoiceOutput{synth: s.synth},
	}

	s.mu.Lock()
	if prev, ok := s.convs[userID]; ok {
		prev.Speech.Cancel()
	}
	s.convs[userID] = conv
	s.mu.Unlock()

	return conv
}

// Get returns the user's running conversation, if one was started.
func (s *AssistantService) Get(userID uuid.UUID) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[userID]
	return conv, ok
}

// End tears the conversation down, stopping any in-progress voice capture
// and playback.
func (s *AssistantService) End(userID uuid.UUID) {
	s.mu.Lock()
	conv, ok := s.convs[userID]
	delete(s.convs, userID)
	s.mu.Unlock()

	if ok {
		conv.Voice.Stop()
		conv.Speech.Cancel()
	}
}

// acquireSlot blocks until a concurrent call slot is available
func (s *AssistantService) acquireSlot(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for assistant call slot")
	}
}

func (s *AssistantService) releaseSlot() {
	s.rateChan <- struct{}{}
}

func (s *AssistantService) startGeminiChat() chatTurner {
	cs := s.model.StartChat()
	cs.History = []*genai.Content{
		{Role: models.RoleUser, Parts: []genai.Part{genai.Text(seedUserTurn)}},
		{Role: models.RoleModel, Parts: []genai.Part{genai.Text(seedModelTurn)}},
	}
	return &geminiChat{service: s, cs: cs}
}

type geminiChat struct {
	service *AssistantService
	cs      *genai.ChatSession
}

func (g *geminiChat) Send(ctx context.Context, text string) (string, error) {
	if err := g.service.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer g.service.releaseSlot()

	resp, err := g.cs.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", fmt.Errorf("Gemini returned empty response")
	}
	return reply, nil
}

// Transcribe uses the Gemini File API to turn one recorded utterance into
// text for the pending-input field.
func (s *AssistantService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := s.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer s.releaseSlot()

	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	file, err := s.client.UploadFile(ctx, "", bytes.NewReader(audio), &genai.UploadFileOptions{
		DisplayName: "voice-utterance",
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to Gemini: %w", err)
	}

	// Ensure remote file is cleaned up
	defer s.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := s.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("Gemini failed to process uploaded audio file")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("audio file did not become active in time")
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations."

	resp, err := s.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty transcription")
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/models"
	"resqlink-backend/internal/services"
)

// 10 MB cap on uploaded voice clips
const maxAudioBytes = 10 << 20

type AssistantHandler struct {
	assistant *services.AssistantService
}

func NewAssistantHandler(assistant *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Capabilities reports which voice features this deployment supports, so
// clients can hide the controls instead of failing on use.
func (h *AssistantHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"voice_input":  true,
		"voice_output": h.assistant.VoiceOutputAvailable(),
	})
}

// Start opens a fresh conversation for the caller, discarding any previous
// one, and returns the opening transcript.
func (h *AssistantHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv := h.assistant.Start(userID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"messages": conv.Transcript(),
	})
}

// Send submits one user turn and returns the reply. The reply text is the
// AI completion, or the standing fallback when the AI call fails.
func (h *AssistantHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv, ok := h.assistant.Get(userID)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "No active conversation"})
		return
	}

	var req models.AssistantSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	reply, sent := conv.Send(r.Context(), req.Text)
	if !sent {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message cannot be empty", r))
		return
	}

	writeJSON(w, http.StatusOK, models.AssistantSendResponse{Reply: reply})
}

func (h *AssistantHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv, ok := h.assistant.Get(userID)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "No active conversation"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": conv.Transcript(),
	})
}

func (h *AssistantHandler) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	h.assistant.End(userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation closed"})
}

// Transcribe accepts one recorded utterance and returns its text, for the
// voice input flow.
func (h *AssistantHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv, ok := h.assistant.Get(userID)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "No active conversation"})
		return
	}

	audio, mimeType, err := readAudio(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	text, err := conv.Voice.Capture(r.Context(), audio, mimeType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TranscribeResponse{Transcript: text})
}

// Speak synthesizes the given text and streams the audio back.
func (h *AssistantHandler) Speak(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv, ok := h.assistant.Get(userID)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "No active conversation"})
		return
	}

	var req models.SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	audio, mimeType, err := conv.Speech.Speak(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// StopSpeaking cancels the in-progress utterance.
func (h *AssistantHandler) StopSpeaking(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conv, ok := h.assistant.Get(userID)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "No active conversation"})
		return
	}

	conv.Speech.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Speech stopped"})
}

func readAudio(r *http.Request) ([]byte, string, error) {
	// Raw audio body, or JSON with a base64 payload
	contentType := r.Header.Get("Content-Type")
	if contentType == "application/json" {
		var req models.TranscribeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxAudioBytes)).Decode(&req); err != nil {
			return nil, "", err
		}
		if req.MIMEType == "" {
			req.MIMEType = "audio/webm"
		}
		return req.Audio, req.MIMEType, nil
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = "audio/webm"
	}
	return audio, contentType, nil
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Transcriber converts one recorded utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Synthesizer renders text into playable audio. A nil Synthesizer means the
// capability is not configured on this deployment.
type Synthesizer interface {
	Voices(ctx context.Context) ([]string, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, string, error)
}

// VoiceInput captures spoken input and resolves it into text. The listening
// flag is observable state: it is set for the duration of a capture and
// always returns to off, whether the capture succeeds, fails, or yields
// nothing.
type VoiceInput struct {
	transcriber Transcriber

	mu        sync.Mutex
	listening bool
}

func (v *VoiceInput) Listening() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listening
}

// Capture transcribes one utterance. Concurrent captures are refused: the
// second caller gets an error while the first keeps the session.
func (v *VoiceInput) Capture(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if v.transcriber == nil {
		return "", &CapabilityUnavailableError{Capability: "voice input"}
	}

	v.mu.Lock()
	if v.listening {
		v.mu.Unlock()
		return "", fmt.Errorf("a voice capture is already in progress")
	}
	v.listening = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.listening = false
		v.mu.Unlock()
	}()

	text, err := v.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Stop clears the listening flag for an abandoned capture.
func (v *VoiceInput) Stop() {
	v.mu.Lock()
	v.listening = false
	v.mu.Unlock()
}

// VoiceOutput reads assistant replies aloud. Starting a new utterance
// cancels the one in progress; the speaking flag returns to off when
// playback finishes or fails.
type VoiceOutput struct {
	synth Synthesizer

	mu       sync.Mutex
	speaking bool
	cancel   context.CancelFunc
	voice    string
}

func (v *VoiceOutput) Speaking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speaking
}

// Speak synthesizes the text and returns the audio payload with its MIME
// type. Unavailable synthesis surfaces a typed error rather than silence.
func (v *VoiceOutput) Speak(ctx context.Context, text string) ([]byte, string, error) {
	if v.synth == nil {
		return nil, "", &CapabilityUnavailableError{Capability: "voice output"}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, "", fmt.Errorf("nothing to speak")
	}

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel() // interrupt the current utterance
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.speaking = true
	voice := v.voice
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		if v.cancel != nil {
			v.cancel()
			v.cancel = nil
		}
		v.speaking = false
		v.mu.Unlock()
	}()

	if voice == "" {
		names, err := v.synth.Voices(ctx)
		if err == nil {
			voice = pickVoice(names)
			v.mu.Lock()
			v.voice = voice
			v.mu.Unlock()
		}
	}

	audio, mimeType, err := v.synth.Synthesize(ctx, trimmed, voice)
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis failed: %w", err)
	}
	return audio, mimeType, nil
}

// Cancel stops the in-progress utterance, if any.
func (v *VoiceOutput) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.speaking = false
}

// pickVoice prefers a female-sounding voice when the engine offers one,
// otherwise falls back to the first available.
func pickVoice(names []string) string {
	if len(names) == 0 {
		return ""
	}
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "female") ||
			strings.Contains(lower, "woman") ||
			strings.Contains(lower, "zira") ||
			strings.Contains(lower, "samantha") {
			return name
		}
	}
	return names[0]
}

// HTTPSynthesizer talks to an external text-to-speech endpoint.
type HTTPSynthesizer struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSynthesizer(endpoint string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPSynthesizer) Voices(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"/voices", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice listing returned status %d", resp.StatusCode)
	}

	var payload struct {
		Voices []string `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode voice list: %w", err)
	}
	return payload.Voices, nil
}

func (h *HTTPSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	body, err := json.Marshal(map[string]string{"text": text, "voice": voice})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("synthesis returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return audio, mimeType, nil
}

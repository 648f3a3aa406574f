package api

import (
	"time"

	"github.com/satriahrh/cerita/server/internal/audio"
)

// ClientAuthRequest represents the request payload for client authentication
type ClientAuthRequest struct {
	ClientID string `json:"client_id"`
}

// ClientAuthResponse represents the response payload for client authentication
type ClientAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

// TranslateRequest asks for a stored analysis in another language.
type TranslateRequest struct {
	Language string `json:"language" validate:"required"`
}

// SpeechRequest asks for synthesized speech for a text fragment.
type SpeechRequest struct {
	Text string `json:"text" validate:"required"`
}

// SpeechResponse carries the provider payload alongside the stats of the
// decoded buffer so clients can validate what they are about to play.
type SpeechResponse struct {
	Payload    string       `json:"payload"`
	Format     audio.Format `json:"format"`
	FrameCount int          `json:"frame_count"`
	DurationMs int64        `json:"duration_ms"`
}

// LanguagesResponse lists the translation targets the server accepts.
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package entities

import (
	"github.com/satriahrh/cerita/server/internal/audio"
)

// SpeechAudio is a synthesized speech payload as it travels over the
// wire: base64-encoded raw audio bytes plus the format descriptor that
// tells the receiver how to interpret them. Raw PCM is headerless, so
// the payload must never travel without its format.
type SpeechAudio struct {
	Payload string       `json:"payload"`
	Format  audio.Format `json:"format"`
}

// Empty reports whether the provider returned no audio data.
func (s SpeechAudio) Empty() bool {
	return s.Payload == ""
}

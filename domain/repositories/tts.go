package repositories

import (
	"context"

	"github.com/satriahrh/cerita/server/domain/entities"
)

// SpeechSynthesizer abstracts a text-to-speech provider. The returned
// payload is base64-encoded raw audio bytes accompanied by the format
// descriptor the provider produced them in.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (entities.SpeechAudio, error)
}

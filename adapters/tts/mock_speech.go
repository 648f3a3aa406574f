package tts

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
	"github.com/satriahrh/cerita/server/internal/audio"
)

// MockSpeech is a placeholder speech synthesizer. It emits a short sine
// tone whose length scales with the text, so downstream decode and
// playback paths can be exercised without a provider key.
type MockSpeech struct {
	logger *zap.Logger
}

// NewMockSpeech creates a new mock speech synthesizer
func NewMockSpeech(logger *zap.Logger) repositories.SpeechSynthesizer {
	return &MockSpeech{logger: logger}
}

// Synthesize implements repositories.SpeechSynthesizer
func (m *MockSpeech) Synthesize(ctx context.Context, text string) (entities.SpeechAudio, error) {
	if strings.TrimSpace(text) == "" {
		return entities.SpeechAudio{}, fmt.Errorf("text cannot be empty")
	}

	format := audio.DefaultFormat()

	// Roughly 60ms of tone per word, between 0.2s and 2s.
	words := len(strings.Fields(text))
	frames := words * format.SampleRate * 60 / 1000
	if minFrames := format.SampleRate / 5; frames < minFrames {
		frames = minFrames
	}
	if maxFrames := format.SampleRate * 2; frames > maxFrames {
		frames = maxFrames
	}

	raw := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		sample := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(format.SampleRate)))
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}

	m.logger.Debug("Mock speech synthesized",
		zap.Int("words", words),
		zap.Int("frames", frames))

	return entities.SpeechAudio{
		Payload: base64.StdEncoding.EncodeToString(raw),
		Format:  format,
	}, nil
}

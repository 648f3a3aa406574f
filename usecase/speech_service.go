package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
	"github.com/satriahrh/cerita/server/internal/audio"
)

// SpeechResult carries both representations of a synthesized utterance:
// the wire payload for clients that decode themselves, and the decoded
// buffer for server-side streaming.
type SpeechResult struct {
	Audio  entities.SpeechAudio
	Buffer *audio.Buffer
}

// SpeechService runs the synthesize-then-decode pipeline
type SpeechService struct {
	synthesizer repositories.SpeechSynthesizer
	logger      *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(synthesizer repositories.SpeechSynthesizer, logger *zap.Logger) *SpeechService {
	return &SpeechService{
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Speak synthesizes text and decodes the provider's payload into a
// playable buffer. A malformed payload fails with
// audio.ErrMalformedPayload; an empty payload decodes to the minimum
// silent buffer rather than failing.
func (s *SpeechService) Speak(ctx context.Context, text string) (*SpeechResult, error) {
	speech, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	decoder, err := audio.NewDecoder(audio.DecoderConfig{Format: speech.Format})
	if err != nil {
		return nil, fmt.Errorf("invalid speech format from provider: %w", err)
	}

	buffer, err := decoder.DecodeBase64(speech.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode speech payload: %w", err)
	}

	s.logger.Info("Speech decoded",
		zap.Int("text_length", len(text)),
		zap.Int("frame_count", buffer.FrameCount()),
		zap.Int("channels", buffer.NumChannels()),
		zap.Duration("duration", buffer.Duration()))

	return &SpeechResult{
		Audio:  speech,
		Buffer: buffer,
	}, nil
}

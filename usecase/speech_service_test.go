package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/adapters/tts"
	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/internal/audio"
)

// stubSynthesizer returns a fixed payload, for driving decode paths.
type stubSynthesizer struct {
	speech entities.SpeechAudio
	err    error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text string) (entities.SpeechAudio, error) {
	return s.speech, s.err
}

func TestSpeak(t *testing.T) {
	service := NewSpeechService(tts.NewMockSpeech(zap.NewNop()), zap.NewNop())

	result, err := service.Speak(context.Background(), "tell me about this picture")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if result.Audio.Empty() {
		t.Error("Expected a non-empty wire payload")
	}
	if result.Buffer.FrameCount() == 0 {
		t.Error("Expected decoded frames")
	}
	if result.Buffer.NumChannels() != result.Audio.Format.Channels {
		t.Errorf("Buffer channels %d do not match format %d",
			result.Buffer.NumChannels(), result.Audio.Format.Channels)
	}
	if result.Buffer.SampleRate() != result.Audio.Format.SampleRate {
		t.Errorf("Buffer rate %d does not match format %d",
			result.Buffer.SampleRate(), result.Audio.Format.SampleRate)
	}
}

func TestSpeak_EmptyPayloadDecodesToSilence(t *testing.T) {
	synth := &stubSynthesizer{speech: entities.SpeechAudio{
		Payload: "",
		Format:  audio.DefaultFormat(),
	}}
	service := NewSpeechService(synth, zap.NewNop())

	result, err := service.Speak(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if result.Buffer.FrameCount() != 1 {
		t.Errorf("Expected 1 silent frame, got %d", result.Buffer.FrameCount())
	}
	if result.Buffer.Channel(0)[0] != 0.0 {
		t.Errorf("Expected silence, got %f", result.Buffer.Channel(0)[0])
	}
}

func TestSpeak_MalformedPayload(t *testing.T) {
	synth := &stubSynthesizer{speech: entities.SpeechAudio{
		Payload: "!!!not base64!!!",
		Format:  audio.DefaultFormat(),
	}}
	service := NewSpeechService(synth, zap.NewNop())

	_, err := service.Speak(context.Background(), "anything")
	if err == nil {
		t.Fatal("Expected error for malformed payload")
	}
	if !errors.Is(err, audio.ErrMalformedPayload) {
		t.Errorf("Expected ErrMalformedPayload, got %v", err)
	}
}

func TestSpeak_SynthesisFailure(t *testing.T) {
	upstream := errors.New("provider down")
	service := NewSpeechService(&stubSynthesizer{err: upstream}, zap.NewNop())

	_, err := service.Speak(context.Background(), "anything")
	if !errors.Is(err, upstream) {
		t.Errorf("Expected wrapped synthesis error, got %v", err)
	}
}

func TestSpeak_InvalidProviderFormat(t *testing.T) {
	synth := &stubSynthesizer{speech: entities.SpeechAudio{
		Payload: "AAAA",
		Format:  audio.Format{Encoding: "mp3", SampleRate: 44100, Channels: 2},
	}}
	service := NewSpeechService(synth, zap.NewNop())

	if _, err := service.Speak(context.Background(), "anything"); err == nil {
		t.Error("Expected error for unsupported provider format")
	}
}

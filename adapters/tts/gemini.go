package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
	"github.com/satriahrh/cerita/server/internal/audio"
)

const (
	defaultSpeechModel   = "gemini-2.5-flash-preview-tts"
	defaultVoiceName     = "Kore"
	defaultSpeechTimeout = 60
	speechMaxAttempts    = 3
	geminiSpeechRate     = 24000 // The TTS models emit 24kHz mono PCM16LE
	geminiSpeechChannels = 1
)

// GeminiSpeechConfig holds configuration for the Gemini speech adapter
// Required fields:
// - APIKey: Your Google AI API key
// Optional fields with defaults:
// - Model: The TTS model ID (default: "gemini-2.5-flash-preview-tts")
// - Voice: The prebuilt voice name (default: "Kore")
// - TimeoutSeconds: Per-request timeout (default: 60)
type GeminiSpeechConfig struct {
	APIKey         string
	Model          string
	Voice          string
	TimeoutSeconds int
}

// ValidateGeminiSpeechConfig validates the GeminiSpeechConfig
func ValidateGeminiSpeechConfig(config GeminiSpeechConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}

// NewGeminiSpeechConfigFromEnv creates a GeminiSpeechConfig from environment variables
func NewGeminiSpeechConfigFromEnv() GeminiSpeechConfig {
	config := GeminiSpeechConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_TTS_MODEL"),
		Voice:  os.Getenv("GEMINI_TTS_VOICE"),
	}

	if timeoutStr := os.Getenv("GEMINI_TTS_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

// GeminiSpeech implements SpeechSynthesizer using the Gemini TTS models.
// The provider hands back raw headerless PCM, so the adapter always
// pairs the base64 payload with its format descriptor.
type GeminiSpeech struct {
	client         *genai.Client
	logger         *zap.Logger
	model          string
	voice          string
	timeoutSeconds int
}

// Ensure GeminiSpeech implements the SpeechSynthesizer interface
var _ repositories.SpeechSynthesizer = (*GeminiSpeech)(nil)

// NewGeminiSpeech creates a new Gemini speech synthesizer
func NewGeminiSpeech(config GeminiSpeechConfig, logger *zap.Logger) (*GeminiSpeech, error) {
	if err := ValidateGeminiSpeechConfig(config); err != nil {
		return nil, err
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultSpeechModel
		logger.Info("Using default TTS model", zap.String("model", model))
	}

	voice := config.Voice
	if voice == "" {
		voice = defaultVoiceName
		logger.Info("Using default voice", zap.String("voice", voice))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultSpeechTimeout
		logger.Info("Using default timeoutSeconds", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	return &GeminiSpeech{
		client:         client,
		logger:         logger,
		model:          model,
		voice:          voice,
		timeoutSeconds: timeoutSeconds,
	}, nil
}

// Synthesize converts text to speech and returns the base64 payload
// with its format descriptor
func (g *GeminiSpeech) Synthesize(ctx context.Context, text string) (entities.SpeechAudio, error) {
	if strings.TrimSpace(text) == "" {
		return entities.SpeechAudio{}, fmt.Errorf("text cannot be empty")
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: g.voice,
				},
			},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.timeoutSeconds)*time.Second)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < speechMaxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to synthesize speech, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < speechMaxAttempts-1 {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	if err != nil {
		return entities.SpeechAudio{}, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	data := extractInlineAudio(response)
	if len(data) == 0 {
		return entities.SpeechAudio{}, fmt.Errorf("provider returned no audio data")
	}

	g.logger.Info("Speech synthesized",
		zap.String("voice", g.voice),
		zap.Int("text_length", len(text)),
		zap.Int("audio_bytes", len(data)))

	return entities.SpeechAudio{
		Payload: base64.StdEncoding.EncodeToString(data),
		Format: audio.Format{
			Encoding:   audio.EncodingPCM16LE,
			SampleRate: geminiSpeechRate,
			Channels:   geminiSpeechChannels,
		},
	}, nil
}

// extractInlineAudio collects the inline audio bytes from a response.
func extractInlineAudio(response *genai.GenerateContentResponse) []byte {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil
	}

	var data []byte
	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			data = append(data, part.InlineData.Data...)
		}
	}
	return data
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTemperature    = 0.4
	defaultTopP           = 0.95
	defaultMaxTokens      = 2048
	defaultTimeoutSeconds = 45
	maxAttempts           = 3
)

// GeminiConfig holds configuration for the Gemini vision adapter
// Required fields:
// - APIKey: Your Google AI API key
// Optional fields with defaults:
// - Model: The model ID to use (default: "gemini-2.0-flash")
// - Temperature: Sampling temperature between 0 and 1 (default: 0.4)
// - TopP: Nucleus sampling value between 0 and 1 (default: 0.95)
// - MaxOutputTokens: Response token budget (default: 2048)
// - TimeoutSeconds: Per-request timeout (default: 45)
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
	TimeoutSeconds  int
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 1) {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}

	if config.TopP != 0 && (config.TopP < 0 || config.TopP > 1) {
		return fmt.Errorf("topP must be between 0 and 1, got %f", config.TopP)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("maxOutputTokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewGeminiConfigFromEnv creates a GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}

	if temperatureStr := os.Getenv("GEMINI_TEMPERATURE"); temperatureStr != "" {
		if temperature, err := strconv.ParseFloat(temperatureStr, 32); err == nil && temperature >= 0 && temperature <= 1 {
			config.Temperature = float32(temperature)
		}
	}

	if topPStr := os.Getenv("GEMINI_TOP_P"); topPStr != "" {
		if topP, err := strconv.ParseFloat(topPStr, 32); err == nil && topP >= 0 && topP <= 1 {
			config.TopP = float32(topP)
		}
	}

	if maxTokensStr := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil && maxTokens > 0 {
			config.MaxOutputTokens = maxTokens
		}
	}

	if timeoutStr := os.Getenv("GEMINI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

// GeminiVision implements the VisionAnalyzer interface using Google's
// Gemini API with a fixed JSON response schema, so every analysis and
// every translation come back in the same structure.
type GeminiVision struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	topP            float32
	maxOutputTokens int
	timeoutSeconds  int
}

// Ensure GeminiVision implements the VisionAnalyzer interface
var _ repositories.VisionAnalyzer = (*GeminiVision)(nil)

// NewGeminiVision creates a new Gemini vision analyzer
func NewGeminiVision(config GeminiConfig, logger *zap.Logger) (*GeminiVision, error) {
	if err := ValidateGeminiConfig(config); err != nil {
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
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = float32(defaultTemperature)
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	topP := config.TopP
	if topP == 0 {
		topP = float32(defaultTopP)
		logger.Info("Using default topP", zap.Float32("topP", topP))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
		logger.Info("Using default timeoutSeconds", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	return &GeminiVision{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		topP:            topP,
		maxOutputTokens: maxOutputTokens,
		timeoutSeconds:  timeoutSeconds,
	}, nil
}

// Describe analyzes an image and returns its structured description in English
func (g *GeminiVision) Describe(ctx context.Context, image []byte, mimeType string) (entities.ImageAnalysis, error) {
	if len(image) == 0 {
		return entities.ImageAnalysis{}, fmt.Errorf("image data cannot be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(describePrompt),
		}, genai.RoleUser),
	}

	analysis, err := g.generateAnalysis(ctx, contents)
	if err != nil {
		return entities.ImageAnalysis{}, err
	}

	g.logger.Info("Image described",
		zap.String("mime_type", mimeType),
		zap.Int("image_bytes", len(image)),
		zap.String("caption", analysis.Caption))

	return analysis, nil
}

// Translate renders an existing analysis into the target language
func (g *GeminiVision) Translate(ctx context.Context, analysis entities.ImageAnalysis, targetLanguage string) (entities.ImageAnalysis, error) {
	if err := analysis.Validate(); err != nil {
		return entities.ImageAnalysis{}, fmt.Errorf("cannot translate invalid analysis: %w", err)
	}
	if err := entities.ValidateLanguage(targetLanguage); err != nil {
		return entities.ImageAnalysis{}, err
	}

	source, err := json.Marshal(analysis)
	if err != nil {
		return entities.ImageAnalysis{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	prompt := fmt.Sprintf(translatePromptFormat, targetLanguage, string(source))
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	translated, err := g.generateAnalysis(ctx, contents)
	if err != nil {
		return entities.ImageAnalysis{}, err
	}

	g.logger.Info("Analysis translated",
		zap.String("target_language", targetLanguage),
		zap.String("caption", translated.Caption))

	return translated, nil
}

// generateAnalysis calls the model with the shared response schema and
// parses the JSON reply into an ImageAnalysis.
func (g *GeminiVision) generateAnalysis(ctx context.Context, contents []*genai.Content) (entities.ImageAnalysis, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		TopP:             genai.Ptr(g.topP),
		MaxOutputTokens:  int32(g.maxOutputTokens),
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.timeoutSeconds)*time.Second)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate content, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < maxAttempts-1 {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	if err != nil {
		return entities.ImageAnalysis{}, fmt.Errorf("failed to generate analysis: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil ||
		len(response.Candidates[0].Content.Parts) == 0 {
		return entities.ImageAnalysis{}, fmt.Errorf("no content generated")
	}

	var responseText string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			responseText += part.Text
		}
	}

	return parseAnalysisResponse(responseText)
}

// parseAnalysisResponse decodes the model's JSON reply and checks the
// required fields survived generation.
func parseAnalysisResponse(responseText string) (entities.ImageAnalysis, error) {
	if responseText == "" {
		return entities.ImageAnalysis{}, fmt.Errorf("empty response from model")
	}

	var analysis entities.ImageAnalysis
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		return entities.ImageAnalysis{}, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	if err := analysis.Validate(); err != nil {
		return entities.ImageAnalysis{}, fmt.Errorf("model returned incomplete analysis: %w", err)
	}

	return analysis, nil
}

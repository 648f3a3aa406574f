package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/adapters"
	"github.com/satriahrh/cerita/server/adapters/llm"
	adaptersMongo "github.com/satriahrh/cerita/server/adapters/mongo"
	"github.com/satriahrh/cerita/server/adapters/tts"
	"github.com/satriahrh/cerita/server/domain/repositories"
	"github.com/satriahrh/cerita/server/internal/api"
	"github.com/satriahrh/cerita/server/internal/websocket"
	"github.com/satriahrh/cerita/server/usecase"
)

func main() {
	// Load .env if present. Missing files are fine in deployed
	// environments where configuration comes from the process env.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	vision := buildVision(logger)
	synthesizer := buildSynthesizer(logger)
	analysisRepo, mongoClient := buildAnalysisRepository(logger)

	// Initialize usecase services
	analysisService := usecase.NewAnalysisService(vision, analysisRepo, logger)
	speechService := usecase.NewSpeechService(synthesizer, logger)

	// Initialize WebSocket hub with speech service
	hub := websocket.NewHub(speechService, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, hub, analysisService, speechService, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if mongoClient != nil {
		mongoClient.Close(ctx)
	}

	logger.Info("Server exited")
}

// buildVision wires the Gemini vision adapter, falling back to the mock
// when no API key is configured.
func buildVision(logger *zap.Logger) repositories.VisionAnalyzer {
	config := llm.NewGeminiConfigFromEnv()
	if config.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using mock vision analyzer")
		return llm.NewMockVision()
	}

	vision, err := llm.NewGeminiVision(config, logger)
	if err != nil {
		logger.Error("Failed to initialize Gemini vision, using mock", zap.Error(err))
		return llm.NewMockVision()
	}
	return vision
}

// buildSynthesizer picks a speech provider: ElevenLabs when configured,
// then Gemini, then the mock tone generator.
func buildSynthesizer(logger *zap.Logger) repositories.SpeechSynthesizer {
	if elevenConfig := tts.NewElevenLabsConfigFromEnv(); elevenConfig.APIKey != "" {
		synthesizer, err := tts.NewElevenLabsTTS(elevenConfig, logger)
		if err == nil {
			return synthesizer
		}
		logger.Error("Failed to initialize ElevenLabs TTS", zap.Error(err))
	}

	if geminiConfig := tts.NewGeminiSpeechConfigFromEnv(); geminiConfig.APIKey != "" {
		synthesizer, err := tts.NewGeminiSpeech(geminiConfig, logger)
		if err == nil {
			return synthesizer
		}
		logger.Error("Failed to initialize Gemini TTS", zap.Error(err))
	}

	logger.Warn("No speech provider configured, using mock synthesizer")
	return tts.NewMockSpeech(logger)
}

// buildAnalysisRepository connects to MongoDB when configured, falling
// back to the in-memory repository for development.
func buildAnalysisRepository(logger *zap.Logger) (repositories.AnalysisRepository, *adaptersMongo.Client) {
	if os.Getenv("MONGODB_URI") == "" {
		logger.Warn("MONGODB_URI not set, using in-memory analysis repository")
		return adapters.NewMemoryAnalysisRepository(), nil
	}

	client, err := adaptersMongo.NewClient(logger)
	if err != nil {
		logger.Error("Failed to connect to MongoDB, using in-memory repository", zap.Error(err))
		return adapters.NewMemoryAnalysisRepository(), nil
	}

	return adapters.NewMongoAnalysisRepository(client.Database, logger), client
}

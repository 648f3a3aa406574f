package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/internal/auth"
	"github.com/satriahrh/cerita/server/internal/websocket"
	"github.com/satriahrh/cerita/server/usecase"
)

// maxImageBytes caps a single image upload.
const maxImageBytes = 10 << 20

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *websocket.Hub,
	analyses *usecase.AnalysisService,
	speech *usecase.SpeechService,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "cerita-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/client/auth", func(c echo.Context) error {
		return clientAuth(c, logger)
	})

	v1.GET("/languages", getLanguages)

	// Routes below require a client token.
	guarded := v1.Group("", requireClient(logger))

	guarded.POST("/analyses", func(c echo.Context) error {
		return createAnalysis(c, analyses, logger)
	})
	guarded.GET("/analyses", func(c echo.Context) error {
		return listAnalyses(c, analyses)
	})
	guarded.GET("/analyses/:id", func(c echo.Context) error {
		return getAnalysis(c, analyses)
	})
	guarded.POST("/analyses/:id/translations", func(c echo.Context) error {
		return translateAnalysis(c, analyses, logger)
	})
	guarded.POST("/speech", func(c echo.Context) error {
		return synthesizeSpeech(c, speech, logger)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocketWithAuth(hub, c, logger)
	})
}

// clientAuth issues a client token. New clients omit client_id and get a
// freshly generated identity.
func clientAuth(c echo.Context, logger *zap.Logger) error {
	var req ClientAuthRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind client auth request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	token, err := auth.GenerateClientToken(clientID)
	if err != nil {
		logger.Error("Failed to generate client token",
			zap.String("client_id", clientID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	// Expiration mirrors the JWT claims.
	expiresAt := time.Now().Add(24 * time.Hour)

	logger.Info("Client authenticated", zap.String("client_id", clientID))

	return c.JSON(http.StatusOK, ClientAuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		ClientID:  clientID,
	})
}

func getLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, LanguagesResponse{
		Languages: entities.SupportedLanguages(),
	})
}

// requireClient validates the Bearer token and stores the caller's
// client ID in the request context.
func requireClient(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "JWT token is required in Authorization header",
				})
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}

			if claims.Role != "client" || claims.ClientID == "" {
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "invalid_role",
					Message: "Only client tokens are allowed",
				})
			}

			c.Set("clientID", claims.ClientID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return ""
}

func clientID(c echo.Context) string {
	id, _ := c.Get("clientID").(string)
	return id
}

// createAnalysis accepts a multipart image upload and returns the stored
// analysis record.
func createAnalysis(c echo.Context, analyses *usecase.AnalysisService, logger *zap.Logger) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_image",
			Message: "An image file is required in the 'image' field",
		})
	}
	if fileHeader.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "image_too_large",
			Message: "Image exceeds the upload size limit",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded image", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_image",
			Message: "Could not read uploaded image",
		})
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		logger.Error("Failed to read uploaded image", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_image",
			Message: "Could not read uploaded image",
		})
	}
	if len(image) > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "image_too_large",
			Message: "Image exceeds the upload size limit",
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	record, err := analyses.AnalyzeImage(c.Request().Context(), clientID(c), image, mimeType)
	if err != nil {
		logger.Error("Image analysis failed",
			zap.String("client_id", clientID(c)),
			zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "analysis_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, record)
}

func listAnalyses(c echo.Context, analyses *usecase.AnalysisService) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a non-negative integer",
			})
		}
		limit = parsed
	}

	records, err := analyses.History(c.Request().Context(), clientID(c), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to load analysis history",
		})
	}
	if records == nil {
		records = []*entities.AnalysisRecord{}
	}

	return c.JSON(http.StatusOK, records)
}

func getAnalysis(c echo.Context, analyses *usecase.AnalysisService) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Analysis ID must be a valid object ID",
		})
	}

	record, err := analyses.Get(c.Request().Context(), clientID(c), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Analysis not found",
		})
	}

	return c.JSON(http.StatusOK, record)
}

func translateAnalysis(c echo.Context, analyses *usecase.AnalysisService, logger *zap.Logger) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Analysis ID must be a valid object ID",
		})
	}

	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if err := entities.ValidateLanguage(req.Language); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_language",
			Message: err.Error(),
		})
	}

	record, err := analyses.Translate(c.Request().Context(), clientID(c), id, req.Language)
	if err != nil {
		logger.Error("Translation failed",
			zap.String("analysis_id", id.Hex()),
			zap.String("language", req.Language),
			zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "translation_failed",
			Message: "Failed to translate analysis",
		})
	}

	return c.JSON(http.StatusOK, record)
}

// synthesizeSpeech runs the synthesize-then-decode pipeline and returns
// the payload with its decoded stats.
func synthesizeSpeech(c echo.Context, speech *usecase.SpeechService, logger *zap.Logger) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_text",
			Message: "Text is required",
		})
	}

	result, err := speech.Speak(c.Request().Context(), req.Text)
	if err != nil {
		logger.Error("Speech synthesis failed",
			zap.String("client_id", clientID(c)),
			zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "Failed to synthesize speech",
		})
	}

	return c.JSON(http.StatusOK, SpeechResponse{
		Payload:    result.Audio.Payload,
		Format:     result.Audio.Format,
		FrameCount: result.Buffer.FrameCount(),
		DurationMs: result.Buffer.Duration().Milliseconds(),
	})
}

// websocketWithAuth handles WebSocket connections with JWT authentication
func websocketWithAuth(hub *websocket.Hub, c echo.Context, logger *zap.Logger) error {
	token := bearerToken(c)
	if token == "" {
		// Browsers cannot set headers on WebSocket upgrades.
		token = c.QueryParam("token")
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "JWT token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired JWT token",
		})
	}

	if claims.Role != "client" || claims.ClientID == "" {
		logger.Warn("WebSocket connection rejected: invalid role",
			zap.String("role", claims.Role))
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "invalid_role",
			Message: "Only client tokens are allowed for WebSocket connections",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("client_id", claims.ClientID))

	return websocket.HandleWebSocketWithAuth(hub, c, claims.ClientID, logger)
}

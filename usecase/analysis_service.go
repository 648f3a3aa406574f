package usecase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
)

// supportedImageMIMEs are the upload types the vision provider accepts.
var supportedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AnalysisService orchestrates image analysis and translation
type AnalysisService struct {
	vision   repositories.VisionAnalyzer
	analyses repositories.AnalysisRepository
	logger   *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	vision repositories.VisionAnalyzer,
	analyses repositories.AnalysisRepository,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		vision:   vision,
		analyses: analyses,
		logger:   logger,
	}
}

// AnalyzeImage runs the vision model over an uploaded image and stores
// the resulting record in the client's history.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, clientID string, image []byte, mimeType string) (*entities.AnalysisRecord, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}
	if !supportedImageMIMEs[mimeType] {
		return nil, fmt.Errorf("unsupported image type: %q", mimeType)
	}

	analysis, err := s.vision.Describe(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}

	record := entities.NewAnalysisRecord(clientID, mimeType, analysis)
	if err := s.analyses.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}

	s.logger.Info("Image analyzed",
		zap.String("analysis_id", record.ID.Hex()),
		zap.String("client_id", clientID),
		zap.String("mime_type", mimeType))

	return record, nil
}

// Translate renders a stored analysis into the target language and
// attaches the result to the record. Previously requested translations
// are reused instead of calling the provider again.
func (s *AnalysisService) Translate(ctx context.Context, clientID string, id primitive.ObjectID, targetLanguage string) (*entities.AnalysisRecord, error) {
	if err := entities.ValidateLanguage(targetLanguage); err != nil {
		return nil, err
	}

	record, err := s.getOwned(ctx, clientID, id)
	if err != nil {
		return nil, err
	}

	if _, ok := record.TranslationFor(targetLanguage); ok {
		s.logger.Info("Reusing stored translation",
			zap.String("analysis_id", id.Hex()),
			zap.String("target_language", targetLanguage))
		return record, nil
	}

	translated, err := s.vision.Translate(ctx, record.Analysis, targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	record.AddTranslation(targetLanguage, translated)
	if err := s.analyses.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store translation: %w", err)
	}

	s.logger.Info("Analysis translated",
		zap.String("analysis_id", id.Hex()),
		zap.String("client_id", clientID),
		zap.String("target_language", targetLanguage))

	return record, nil
}

// Get returns one of the client's analysis records.
func (s *AnalysisService) Get(ctx context.Context, clientID string, id primitive.ObjectID) (*entities.AnalysisRecord, error) {
	return s.getOwned(ctx, clientID, id)
}

// History returns the client's analysis records, newest first.
func (s *AnalysisService) History(ctx context.Context, clientID string, limit int) ([]*entities.AnalysisRecord, error) {
	return s.analyses.ListByClientID(ctx, clientID, limit)
}

// getOwned loads a record and checks it belongs to the requesting
// client. Records of other clients are reported as not found.
func (s *AnalysisService) getOwned(ctx context.Context, clientID string, id primitive.ObjectID) (*entities.AnalysisRecord, error) {
	record, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.ClientID != clientID {
		s.logger.Warn("Client requested another client's analysis",
			zap.String("analysis_id", id.Hex()),
			zap.String("client_id", clientID))
		return nil, fmt.Errorf("analysis not found")
	}
	return record, nil
}

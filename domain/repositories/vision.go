package repositories

import (
	"context"

	"github.com/satriahrh/cerita/server/domain/entities"
)

// VisionAnalyzer abstracts the generative vision provider.
type VisionAnalyzer interface {
	// Describe analyzes an image and returns its structured description
	// in English.
	Describe(ctx context.Context, image []byte, mimeType string) (entities.ImageAnalysis, error)
	// Translate renders an existing analysis into the target language,
	// preserving the structure field for field.
	Translate(ctx context.Context, analysis entities.ImageAnalysis, targetLanguage string) (entities.ImageAnalysis, error)
}

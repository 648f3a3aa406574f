package llm

import (
	"context"
	"fmt"

	"github.com/satriahrh/cerita/server/domain/entities"
	"github.com/satriahrh/cerita/server/domain/repositories"
)

// MockVision is a placeholder implementation for the vision analyzer
type MockVision struct{}

// NewMockVision creates a new mock vision analyzer
func NewMockVision() repositories.VisionAnalyzer {
	return &MockVision{}
}

// Describe implements repositories.VisionAnalyzer
func (m *MockVision) Describe(ctx context.Context, image []byte, mimeType string) (entities.ImageAnalysis, error) {
	if len(image) == 0 {
		return entities.ImageAnalysis{}, fmt.Errorf("image data cannot be empty")
	}

	return entities.ImageAnalysis{
		Caption: "A sunrise over a quiet rice field",
		AlternativeCaptions: []string{
			"Morning light spreading across terraced paddies",
			"Dawn breaking over farmland",
		},
		Narrative: "The first light of morning slides across the water between " +
			"the rows of young rice, turning the whole field into a mirror of " +
			"orange and gold while mist still clings to the far tree line.",
		Details: []entities.DetailGroup{
			{Category: "objects", Items: []string{"rice field", "mist", "tree line"}},
			{Category: "colors", Items: []string{"orange", "gold", "green"}},
			{Category: "mood", Items: []string{"calm", "hopeful"}},
			{Category: "setting", Items: []string{"rural", "early morning"}},
		},
	}, nil
}

// Translate implements repositories.VisionAnalyzer
func (m *MockVision) Translate(ctx context.Context, analysis entities.ImageAnalysis, targetLanguage string) (entities.ImageAnalysis, error) {
	if err := entities.ValidateLanguage(targetLanguage); err != nil {
		return entities.ImageAnalysis{}, err
	}

	translated := analysis
	translated.Caption = fmt.Sprintf("[%s] %s", targetLanguage, analysis.Caption)
	translated.Narrative = fmt.Sprintf("[%s] %s", targetLanguage, analysis.Narrative)

	translated.AlternativeCaptions = make([]string, len(analysis.AlternativeCaptions))
	for i, caption := range analysis.AlternativeCaptions {
		translated.AlternativeCaptions[i] = fmt.Sprintf("[%s] %s", targetLanguage, caption)
	}

	return translated, nil
}

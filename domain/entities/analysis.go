package entities

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DetailGroup is one category of observations about an image.
type DetailGroup struct {
	Category string   `json:"category" bson:"category"`
	Items    []string `json:"items" bson:"items"`
}

// ImageAnalysis is the structured description the vision model returns
// for an uploaded image. The same shape is used for translations so a
// client can render any language with one code path.
type ImageAnalysis struct {
	Caption             string        `json:"caption" bson:"caption"`
	AlternativeCaptions []string      `json:"alternative_captions" bson:"alternative_captions"`
	Narrative           string        `json:"narrative" bson:"narrative"`
	Details             []DetailGroup `json:"details" bson:"details"`
}

// Validate checks that the model returned a usable analysis.
func (a ImageAnalysis) Validate() error {
	if strings.TrimSpace(a.Caption) == "" {
		return errors.New("analysis caption is required")
	}
	if strings.TrimSpace(a.Narrative) == "" {
		return errors.New("analysis narrative is required")
	}
	return nil
}

// AnalysisRecord is a stored analysis together with any translations
// requested for it, keyed by target language name.
type AnalysisRecord struct {
	ID           primitive.ObjectID       `json:"id" bson:"_id,omitempty"`
	ClientID     string                   `json:"client_id" bson:"client_id"`
	ImageMIME    string                   `json:"image_mime" bson:"image_mime"`
	CreatedAt    time.Time                `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at" bson:"updated_at"`
	Analysis     ImageAnalysis            `json:"analysis" bson:"analysis"`
	Translations map[string]ImageAnalysis `json:"translations" bson:"translations"`
}

// NewAnalysisRecord creates a record for a freshly analyzed image.
func NewAnalysisRecord(clientID, imageMIME string, analysis ImageAnalysis) *AnalysisRecord {
	now := time.Now()
	return &AnalysisRecord{
		ID:           primitive.NewObjectID(),
		ClientID:     clientID,
		ImageMIME:    imageMIME,
		CreatedAt:    now,
		UpdatedAt:    now,
		Analysis:     analysis,
		Translations: make(map[string]ImageAnalysis),
	}
}

// Validate checks record invariants before persistence.
func (r *AnalysisRecord) Validate() error {
	if r.ClientID == "" {
		return errors.New("client ID is required")
	}
	return r.Analysis.Validate()
}

// AddTranslation attaches a translated analysis for a language,
// replacing any previous translation for the same language.
func (r *AnalysisRecord) AddTranslation(language string, analysis ImageAnalysis) {
	if r.Translations == nil {
		r.Translations = make(map[string]ImageAnalysis)
	}
	r.Translations[language] = analysis
	r.UpdatedAt = time.Now()
}

// TranslationFor returns the stored translation for a language, if any.
func (r *AnalysisRecord) TranslationFor(language string) (ImageAnalysis, bool) {
	analysis, ok := r.Translations[language]
	return analysis, ok
}

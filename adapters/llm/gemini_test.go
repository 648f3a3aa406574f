package llm

import (
	"context"
	"strings"
	"testing"
)

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{"valid minimal", GeminiConfig{APIKey: "key"}, false},
		{"valid full", GeminiConfig{APIKey: "key", Model: "gemini-2.0-flash", Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 1024, TimeoutSeconds: 30}, false},
		{"missing api key", GeminiConfig{}, true},
		{"temperature too high", GeminiConfig{APIKey: "key", Temperature: 1.5}, true},
		{"negative topP", GeminiConfig{APIKey: "key", TopP: -0.1}, true},
		{"negative timeout", GeminiConfig{APIKey: "key", TimeoutSeconds: -5}, true},
		{"negative max tokens", GeminiConfig{APIKey: "key", MaxOutputTokens: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeminiConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAnalysisResponse(t *testing.T) {
	t.Run("complete analysis", func(t *testing.T) {
		response := `{
			"caption": "A red bicycle leaning against a brick wall",
			"alternative_captions": ["A bike parked on a sidewalk", "An old bicycle at rest"],
			"narrative": "Someone left a red bicycle against the warm brick wall.",
			"details": [
				{"category": "objects", "items": ["bicycle", "brick wall"]},
				{"category": "colors", "items": ["red", "brown"]}
			]
		}`

		analysis, err := parseAnalysisResponse(response)
		if err != nil {
			t.Fatalf("Failed to parse analysis: %v", err)
		}

		if analysis.Caption != "A red bicycle leaning against a brick wall" {
			t.Errorf("Unexpected caption: %q", analysis.Caption)
		}
		if len(analysis.AlternativeCaptions) != 2 {
			t.Errorf("Expected 2 alternative captions, got %d", len(analysis.AlternativeCaptions))
		}
		if len(analysis.Details) != 2 {
			t.Errorf("Expected 2 detail groups, got %d", len(analysis.Details))
		}
		if analysis.Details[0].Category != "objects" {
			t.Errorf("Unexpected first category: %q", analysis.Details[0].Category)
		}
	})

	t.Run("empty response", func(t *testing.T) {
		if _, err := parseAnalysisResponse(""); err == nil {
			t.Error("Expected error for empty response")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseAnalysisResponse("not json at all"); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		if _, err := parseAnalysisResponse(`{"caption": "only a caption"}`); err == nil {
			t.Error("Expected error for analysis without narrative")
		}
	})
}

func TestAnalysisSchemaCoversEntityFields(t *testing.T) {
	for _, field := range []string{"caption", "alternative_captions", "narrative", "details"} {
		if _, ok := analysisSchema.Properties[field]; !ok {
			t.Errorf("Schema missing property %q", field)
		}
	}
	if len(analysisSchema.Required) != 4 {
		t.Errorf("Expected 4 required fields, got %d", len(analysisSchema.Required))
	}
}

func TestMockVision(t *testing.T) {
	mock := NewMockVision()
	ctx := context.Background()

	t.Run("describe", func(t *testing.T) {
		analysis, err := mock.Describe(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
		if err != nil {
			t.Fatalf("Describe failed: %v", err)
		}
		if err := analysis.Validate(); err != nil {
			t.Errorf("Mock analysis should be valid: %v", err)
		}
	})

	t.Run("describe empty image", func(t *testing.T) {
		if _, err := mock.Describe(ctx, nil, "image/jpeg"); err == nil {
			t.Error("Expected error for empty image")
		}
	})

	t.Run("translate", func(t *testing.T) {
		analysis, _ := mock.Describe(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
		translated, err := mock.Translate(ctx, analysis, "Spanish")
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		if !strings.Contains(translated.Caption, "Spanish") {
			t.Errorf("Expected translated caption marker, got %q", translated.Caption)
		}
		if len(translated.AlternativeCaptions) != len(analysis.AlternativeCaptions) {
			t.Error("Translation must preserve alternative caption count")
		}
	})

	t.Run("translate unsupported language", func(t *testing.T) {
		analysis, _ := mock.Describe(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
		if _, err := mock.Translate(ctx, analysis, "Klingon"); err == nil {
			t.Error("Expected error for unsupported language")
		}
	})
}

package llm

import "google.golang.org/genai"

const describePrompt = `Analyze this image and produce a structured description.
Provide:
- "caption": one concise sentence naming the main subject.
- "alternative_captions": two or three different one-sentence captions.
- "narrative": one vivid paragraph telling the scene as a short story.
- "details": categorized observations. Use categories such as
  "objects", "colors", "mood", "setting" and "text found", each with a
  list of short items. Omit a category when the image has nothing for it.
Respond in English.`

const translatePromptFormat = `Translate every text value in the following JSON image
analysis into %s. Keep the JSON structure, the field names and the
category grouping exactly as they are; translate only the values.

%s`

// analysisSchema constrains model output to the ImageAnalysis shape so
// responses parse without prompt-dependent cleanup.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"caption": {
			Type:        genai.TypeString,
			Description: "One-sentence caption of the image",
		},
		"alternative_captions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"narrative": {
			Type:        genai.TypeString,
			Description: "Narrative paragraph describing the scene",
		},
		"details": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {Type: genai.TypeString},
					"items": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"category", "items"},
			},
		},
	},
	Required: []string{"caption", "alternative_captions", "narrative", "details"},
}

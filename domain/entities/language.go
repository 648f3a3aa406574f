package entities

import "fmt"

// supportedLanguages are the translation targets offered to clients.
// The vision provider takes plain language names, not BCP 47 tags.
var supportedLanguages = []string{
	"Arabic",
	"Bengali",
	"Dutch",
	"French",
	"German",
	"Hindi",
	"Indonesian",
	"Italian",
	"Japanese",
	"Javanese",
	"Korean",
	"Mandarin Chinese",
	"Portuguese",
	"Russian",
	"Spanish",
	"Swahili",
	"Turkish",
	"Vietnamese",
}

// SupportedLanguages returns the translation target languages.
func SupportedLanguages() []string {
	languages := make([]string, len(supportedLanguages))
	copy(languages, supportedLanguages)
	return languages
}

// ValidateLanguage checks that a language is a supported translation
// target.
func ValidateLanguage(language string) error {
	for _, l := range supportedLanguages {
		if l == language {
			return nil
		}
	}
	return fmt.Errorf("unsupported target language: %q", language)
}

package entity

type Language struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	CitationFormat string `json:"citation_format"`
}

type LanguagesResponse struct {
	SupportedLanguages []Language `json:"supported_languages"`
}

const DefaultLanguage = "en"

// citationWords holds the word used to label sources per language.
var citationWords = map[string]string{
	"en": "Source",
	"hi": "स्रोत",
	"ta": "மூலம்",
	"te": "మూలం",
}

// CitationWord returns the sources label for language, falling back to English.
func CitationWord(language string) string {
	if word, ok := citationWords[language]; ok {
		return word
	}
	return citationWords[DefaultLanguage]
}

// IsKnownLanguage reports whether the backend accepts code as a language override.
func IsKnownLanguage(code string) bool {
	_, ok := citationWords[code]
	return ok
}

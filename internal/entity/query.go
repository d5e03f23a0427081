package entity

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query         string `json:"query"`
	Deterministic bool   `json:"deterministic"`
	Language      string `json:"language,omitempty"`
}

// Citation references a source document backing an answer.
type Citation struct {
	SourceID int            `json:"source_id"`
	Document string         `json:"document"`
	Page     *int           `json:"page,omitempty"`
	Section  *string        `json:"section,omitempty"`
	Snippet  string         `json:"content_snippet"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type QueryResult struct {
	Answer            string     `json:"answer"`
	Sources           []Citation `json:"sources"`
	DetectedLanguage  string     `json:"detected_language"`
	ProcessingSeconds float64    `json:"processing_time_seconds"`
}

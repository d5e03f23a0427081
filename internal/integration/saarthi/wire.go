package saarthi

import (
	"errors"

	"github.com/futig/saarthi/internal/entity"
)

var errMissingAnswer = errors.New("response has no answer")

// queryResponse is the wire form of /api/query. Answer is a pointer so a
// null or answerless body can be told apart from an empty answer.
type queryResponse struct {
	Answer            *string           `json:"answer"`
	Sources           []entity.Citation `json:"sources"`
	DetectedLanguage  string            `json:"detected_language"`
	ProcessingSeconds float64           `json:"processing_time_seconds"`
}

func (r *queryResponse) result() entity.QueryResult {
	sources := r.Sources
	if sources == nil {
		sources = []entity.Citation{}
	}
	return entity.QueryResult{
		Answer:            *r.Answer,
		Sources:           sources,
		DetectedLanguage:  r.DetectedLanguage,
		ProcessingSeconds: r.ProcessingSeconds,
	}
}

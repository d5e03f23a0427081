package saarthi

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/futig/saarthi/internal/entity"
	pkghttp "github.com/futig/saarthi/pkg/http"
)

// toTransportError folds the transport-level errors of pkg/http into the
// single error kind the rest of the application handles.
func toTransportError(err error) error {
	var (
		httpErr   *pkghttp.HTTPError
		decodeErr *pkghttp.DecodeError
	)

	switch {
	case errors.As(err, &httpErr):
		return &entity.TransportError{
			Kind:       entity.KindStatus,
			StatusCode: httpErr.StatusCode,
			Detail:     parseDetail(httpErr.Message),
			Err:        err,
		}
	case errors.As(err, &decodeErr):
		return &entity.TransportError{
			Kind: entity.KindMalformed,
			Err:  err,
		}
	default:
		return &entity.TransportError{
			Kind: entity.KindNetwork,
			Err:  err,
		}
	}
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseDetail extracts the human-readable message of an error body. The
// backend sends {"detail": "..."} or, for validation failures,
// {"detail": [{"msg": "..."}, ...]}.
func parseDetail(body string) string {
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err != nil {
		return ""
	}

	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			return detail
		}

		var issues []validationIssue
		if err := json.Unmarshal(eb.Detail, &issues); err == nil {
			msgs := make([]string, 0, len(issues))
			for _, issue := range issues {
				if issue.Msg != "" {
					msgs = append(msgs, issue.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

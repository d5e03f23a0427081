package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/saarthi/internal/entity"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	// headers are gone by now, a failed encode only truncates the body
	_ = json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BackendError reports a failed call to the answering backend as a gateway
// error: 504 when the backend was unreachable, 502 otherwise.
func BackendError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var transportErr *entity.TransportError
	if errors.As(err, &transportErr) && transportErr.Kind == entity.KindNetwork {
		status = http.StatusGatewayTimeout
	}
	Error(w, status, entity.RenderError(err))
}

package backend

import (
	"net/http"

	"github.com/futig/saarthi/internal/pkg/logger"
	"github.com/futig/saarthi/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase HealthUsecase
}

func NewHandler(usecase HealthUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Health handles GET /backend/health by probing the answering backend.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "BackendHealth")

	health, err := h.usecase.Check(ctx)
	if err != nil {
		ctxzap.Warn(ctx, "backend health check failed", zap.Error(err))
		response.BackendError(w, err)
		return
	}

	response.Success(w, health)
}

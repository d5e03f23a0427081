package api

import (
	"net/http"
	"time"

	backendapi "github.com/futig/saarthi/internal/api/backend"
	"github.com/futig/saarthi/internal/api/docs"
	"github.com/futig/saarthi/internal/api/middleware"
	telegramapi "github.com/futig/saarthi/internal/api/telegram"
	"github.com/futig/saarthi/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// handlerTimeout bounds a request; webhook updates are handled in the
// background so this only covers decoding and backend probes.
const handlerTimeout = 60 * time.Second

// SetupRouter builds the webhook server's router: liveness, API docs, the
// Telegram webhook and the backend health probe.
func SetupRouter(webhookHandler *telegramapi.Handler, backendHandler *backendapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimiddleware.Recoverer,
		chimiddleware.RequestID,
		middleware.Logger(logger),
		chimiddleware.Timeout(handlerTimeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})
	docs.RegisterRoutes(r)
	telegramapi.RegisterRoutes(r, webhookHandler)
	backendapi.RegisterRoutes(r, backendHandler)

	return r
}

package telegram

import (
	"crypto/subtle"
	"net/http"

	"github.com/futig/saarthi/internal/pkg/logger"
	"github.com/futig/saarthi/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SecretHeader carries the secret token registered with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type Handler struct {
	receiver UpdateReceiver
	secret   string
}

// NewHandler creates the webhook handler. An empty secret disables the
// header check.
func NewHandler(receiver UpdateReceiver, secret string) *Handler {
	return &Handler{
		receiver: receiver,
		secret:   secret,
	}
}

// ReceiveUpdate handles POST /telegram/webhook
func (h *Handler) ReceiveUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ReceiveUpdate")

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(h.secret)) != 1 {
		ctxzap.Warn(ctx, "webhook call with wrong secret token", zap.String("remote_addr", r.RemoteAddr))
		response.Error(w, http.StatusUnauthorized, "invalid secret token")
		return
	}

	if err := h.receiver.ReceiveWebhook(r.WithContext(ctx)); err != nil {
		ctxzap.Warn(ctx, "failed to accept update", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid update")
		return
	}

	response.Success(w, map[string]string{"status": "ok"})
}

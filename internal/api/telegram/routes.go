package telegram

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers telegram webhook routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/telegram/webhook", h.ReceiveUpdate)
}

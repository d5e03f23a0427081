package telegram

import "net/http"

// UpdateReceiver accepts an update pushed by Telegram.
type UpdateReceiver interface {
	ReceiveWebhook(r *http.Request) error
}

package middleware

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender delivers notices to users who hit a middleware limit.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

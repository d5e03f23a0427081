package handlers

import (
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
	"github.com/futig/saarthi/internal/usecase/conversation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Telegram Bot API the handlers use.
// *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ConversationRegistry hands out the conversation of a chat.
type ConversationRegistry interface {
	Get(chatID int64) *conversation.Conversation
	Reset(chatID int64)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}

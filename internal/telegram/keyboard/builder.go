package keyboard

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions
const (
	ActionExample       = "ex"
	ActionDeterministic = "det"
	ActionDownload      = "dl"
)

const callbackSep = ":"

// CallbackData is the action and argument packed into a button.
type CallbackData struct {
	Action string
	Value  string
}

// EncodeCallback packs action and value for a button's callback data.
func EncodeCallback(action, value string) string {
	return action + callbackSep + value
}

// ParseCallback unpacks callback data built by EncodeCallback. Data from
// buttons of another bot version with an unknown action is rejected.
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, callbackSep)
	if !ok {
		return nil, fmt.Errorf("malformed callback data %q", data)
	}
	switch action {
	case ActionExample, ActionDeterministic, ActionDownload:
		return &CallbackData{Action: action, Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown callback action %q", action)
	}
}

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// ExamplesKeyboard offers the example queries, one per row. The callback
// carries the query index so long queries stay within Telegram's 64-byte
// callback data limit.
func (b *Builder) ExamplesKeyboard(queries []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(queries))
	for i, q := range queries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(q, EncodeCallback(ActionExample, strconv.Itoa(i))),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// DeterministicKeyboard shows the current mode and a button to flip it.
func (b *Builder) DeterministicKeyboard(on bool) tgbotapi.InlineKeyboardMarkup {
	label := "☐ Deterministic mode"
	if on {
		label = "☑ Deterministic mode"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(ActionDeterministic, "toggle")),
		),
	)
}

// ExportKeyboard creates transcript download buttons
func (b *Builder) ExportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 .md", EncodeCallback(ActionDownload, "md")),
			tgbotapi.NewInlineKeyboardButtonData("📕 .pdf", EncodeCallback(ActionDownload, "pdf")),
			tgbotapi.NewInlineKeyboardButtonData("📘 .docx", EncodeCallback(ActionDownload, "docx")),
		),
	)
}

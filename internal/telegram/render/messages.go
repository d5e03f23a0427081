package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
)

const (
	MsgWelcome = `🚀 Welcome to StartupSaarthi!

Your AI guide to Indian startup funding. Ask me anything about funding, government schemes or investor ecosystems, in English, Hindi, Tamil or Telugu.

Try one of these:`

	MsgHelp = `🤖 Commands:

/start - Show the welcome screen
/help - Show this help
/deterministic - Toggle reproducible answers
/lang <en|hi|ta|te|auto> - Answer language
/export <md|pdf|docx> - Download this conversation
/reset - Start a new conversation

Any other text is sent as a question.`

	MsgBusy            = `⏳ Still thinking about your previous question. Please wait for the answer.`
	MsgDeterministic   = `Deterministic mode: %s`
	MsgLanguageSet     = `🌐 Answers will be in %s.`
	MsgLanguageAuto    = `🌐 The answer language will follow your question.`
	MsgReset           = `🧹 Conversation cleared. Ask a new question any time.`
	MsgEmptyTranscript = `Nothing to export yet. Ask a question first.`
	MsgExportCaption   = `📄 Your StartupSaarthi conversation`

	ErrGeneric            = `❌ Something went wrong. Please try again.`
	ErrUnknownCommand     = `❌ Unknown command. Use /help to see what I can do.`
	ErrNetworkIssue       = `❌ Could not reach the StartupSaarthi server. Please try again later.`
	ErrServiceUnavailable = `❌ The service is temporarily unavailable. Please try again in a few minutes.`
	ErrTimeout            = `❌ The request took too long. Please try again.`
	ErrInvalidInput       = `❌ Please send a non-empty question.`
	ErrLanguageUsage      = `❌ Usage: /lang <en|hi|ta|te|auto>`
	ErrExportUsage        = `❌ Usage: /export <md|pdf|docx>`
)

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
}

func RenderDeterministic(on bool) string {
	if on {
		return fmt.Sprintf(MsgDeterministic, "on ✅")
	}
	return fmt.Sprintf(MsgDeterministic, "off")
}

func RenderLanguage(code string) string {
	if code == "" {
		return MsgLanguageAuto
	}
	name, ok := languageNames[code]
	if !ok {
		name = code
	}
	return fmt.Sprintf(MsgLanguageSet, name)
}

// RenderTurn formats an assistant turn as plain text with its sources block.
func RenderTurn(turn entity.ConversationTurn) string {
	if len(turn.Citations) == 0 {
		return turn.Text
	}

	var sb strings.Builder
	sb.WriteString(turn.Text)
	sb.WriteString("\n\n📚 ")
	sb.WriteString(formatter.SourcesHeader(turn.DetectedLanguage))
	for _, c := range turn.Citations {
		sb.WriteString("\n")
		sb.WriteString(formatter.CitationLine(c))
	}
	return sb.String()
}

// ClassifyError picks the user-facing message for an error that did not
// end up in the transcript.
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, entity.ErrEmptyInput) {
		return ErrInvalidInput
	}
	if errors.Is(err, entity.ErrRequestInFlight) {
		return MsgBusy
	}

	var te *entity.TransportError
	if errors.As(err, &te) {
		switch {
		case te.Kind == entity.KindNetwork:
			return ErrNetworkIssue
		case te.Kind == entity.KindStatus && te.StatusCode >= 500:
			return ErrServiceUnavailable
		case te.Detail != "":
			return "❌ " + te.Detail
		}
	}

	return ErrGeneric
}

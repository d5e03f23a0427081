package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("unknown role: %s", r)
	}
}

// ConversationTurn is one message of a transcript. Turns are appended once
// and never modified afterwards.
type ConversationTurn struct {
	ID               string     `json:"id"`
	Role             Role       `json:"role"`
	Text             string     `json:"text"`
	Citations        []Citation `json:"citations,omitempty"`
	DetectedLanguage string     `json:"detected_language,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

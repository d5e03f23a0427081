package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
	"github.com/futig/saarthi/internal/usecase/conversation"
)

const welcomeText = `# StartupSaarthi

Ask anything about Indian startup funding: government schemes, investors, eligibility.

**Try one of these** (Tab fills the input):
`

func welcomeMarkdown() string {
	var b strings.Builder
	b.WriteString(welcomeText)
	b.WriteString("\n")
	for i, q := range conversation.ExampleQueries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return b.String()
}

// turnMarkdown renders an assistant turn with its sources block.
func turnMarkdown(turn entity.ConversationTurn) string {
	if len(turn.Citations) == 0 {
		return turn.Text
	}

	var b strings.Builder
	b.WriteString(turn.Text)
	b.WriteString("\n\n**")
	b.WriteString(formatter.SourcesHeader(turn.DetectedLanguage))
	b.WriteString("**\n\n")
	for _, c := range turn.Citations {
		b.WriteString("- ")
		b.WriteString(formatter.CitationLine(c))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func renderTranscript(r *glamour.TermRenderer, turns []entity.ConversationTurn) string {
	if len(turns) == 0 {
		return renderMarkdown(r, welcomeMarkdown())
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Role == entity.RoleUser {
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(turn.Text)
			continue
		}
		b.WriteString(assistantStyle.Render("StartupSaarthi:"))
		b.WriteString("\n")
		b.WriteString(renderMarkdown(r, turnMarkdown(turn)))
	}
	return b.String()
}

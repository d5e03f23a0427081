package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/saarthi/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(turns []entity.ConversationTurn) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", baseTitle)

	for _, turn := range turns {
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", roleLabel(turn.Role), turn.Text)

		if len(turn.Citations) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n**%s**\n\n", SourcesHeader(turn.DetectedLanguage))
		for _, c := range turn.Citations {
			fmt.Fprintf(&buf, "- %s\n", CitationLine(c))
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

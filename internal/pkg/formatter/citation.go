package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/saarthi/internal/entity"
)

// CitationLine renders a citation as "[id] document - Page p - section".
// Missing or zero pages and empty sections are left out.
func CitationLine(c entity.Citation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", c.SourceID, c.Document)
	if c.Page != nil && *c.Page != 0 {
		fmt.Fprintf(&b, " - Page %d", *c.Page)
	}
	if c.Section != nil && *c.Section != "" {
		fmt.Fprintf(&b, " - %s", *c.Section)
	}
	return b.String()
}

// SourcesHeader labels the sources block of a turn answered in language.
func SourcesHeader(language string) string {
	if language == "" || language == entity.DefaultLanguage {
		return "Sources:"
	}
	return entity.CitationWord(language) + ":"
}

func roleLabel(r entity.Role) string {
	if r == entity.RoleUser {
		return "You"
	}
	return "StartupSaarthi"
}

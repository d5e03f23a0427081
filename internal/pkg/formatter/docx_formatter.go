package formatter

import (
	"bytes"

	"github.com/futig/saarthi/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(turns []entity.ConversationTurn) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(baseTitle)

	for _, turn := range turns {
		rolePar := doc.AddParagraph()
		rolePar.SetStyle("Heading2")
		rolePar.AddRun().AddText(roleLabel(turn.Role))

		doc.AddParagraph().AddRun().AddText(turn.Text)

		if len(turn.Citations) == 0 {
			continue
		}

		headerRun := doc.AddParagraph().AddRun()
		headerRun.Properties().SetBold(true)
		headerRun.AddText(SourcesHeader(turn.DetectedLanguage))

		for _, c := range turn.Citations {
			doc.AddParagraph().AddRun().AddText(CitationLine(c))
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

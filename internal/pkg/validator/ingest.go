package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/entity"
)

// documentTypes maps file extensions to the backend's document types.
var documentTypes = map[string]entity.DocumentType{
	".pdf":  entity.DocumentTypePDF,
	".docx": entity.DocumentTypeDOCX,
	".txt":  entity.DocumentTypeTXT,
	".md":   entity.DocumentTypeTXT,
	".csv":  entity.DocumentTypeCSV,
	".xlsx": entity.DocumentTypeExcel,
	".xls":  entity.DocumentTypeExcel,
}

// Validator validates requests before they are sent to the backend
type Validator struct {
	extensions map[string]bool
}

func NewValidator(cfg config.IngestConfig) *Validator {
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Validator{extensions: exts}
}

func (v *Validator) ValidateIngest(req *entity.IngestRequest) error {
	if strings.TrimSpace(req.FilePath) == "" {
		return fmt.Errorf("%w: file_path", entity.ErrMissingField)
	}
	if req.DocumentType == "" {
		return fmt.Errorf("%w: document_type", entity.ErrMissingField)
	}
	return req.DocumentType.Validate()
}

// IsIngestible reports whether path has one of the configured extensions
// and a known document type.
func (v *Validator) IsIngestible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !v.extensions[ext] {
		return false
	}
	_, ok := documentTypes[ext]
	return ok
}

// DocumentTypeFor derives the document type from the file extension.
func DocumentTypeFor(path string) (entity.DocumentType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	dt, ok := documentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: unsupported extension %q", entity.ErrInvalidDocument, ext)
	}
	return dt, nil
}

package validator

import (
	"fmt"
	"strings"

	"github.com/futig/saarthi/internal/entity"
)

func (v *Validator) ValidateQuery(req *entity.QueryRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return entity.ErrEmptyInput
	}
	if req.Language != "" && !entity.IsKnownLanguage(req.Language) {
		return fmt.Errorf("%w: unsupported language %q", entity.ErrInvalidParameter, req.Language)
	}
	return nil
}

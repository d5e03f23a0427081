package ingest

import (
	"context"

	"github.com/futig/saarthi/internal/entity"
)

type Ingester interface {
	SubmitIngest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResult, error)
}

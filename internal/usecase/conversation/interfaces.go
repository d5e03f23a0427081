package conversation

import (
	"context"

	"github.com/futig/saarthi/internal/entity"
)

type QueryClient interface {
	SubmitQuery(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error)
}

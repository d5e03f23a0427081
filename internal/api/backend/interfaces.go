package backend

import (
	"context"

	"github.com/futig/saarthi/internal/entity"
)

type HealthUsecase interface {
	Check(ctx context.Context) (entity.Health, error)
}

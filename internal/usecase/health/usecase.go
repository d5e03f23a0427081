package health

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/futig/saarthi/internal/entity"
	pkgRetry "github.com/futig/saarthi/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) (entity.Health, error)
}

type HealthUsecase struct {
	checker HealthChecker
	logger  *zap.Logger
}

func NewUsecase(checker HealthChecker, logger *zap.Logger) *HealthUsecase {
	return &HealthUsecase{
		checker: checker,
		logger:  logger,
	}
}

// Check probes the backend once.
func (uc *HealthUsecase) Check(ctx context.Context) (entity.Health, error) {
	return uc.checker.HealthCheck(ctx)
}

// WaitReady polls the backend at a fixed interval until it answers its
// health probe or the attempts in rc run out. onAttempt, if set, is
// called after every failed probe with its 1-based number.
func (uc *HealthUsecase) WaitReady(ctx context.Context, rc *pkgRetry.RetryConfig, onAttempt func(n uint, err error)) (entity.Health, error) {
	var health entity.Health

	err := pkgRetry.Do(ctx, rc, func(ctx context.Context) error {
		h, err := uc.checker.HealthCheck(ctx)
		if err != nil {
			return err
		}
		health = h
		return nil
	},
		retry.DelayType(retry.FixedDelay),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Debug(ctx, "backend not ready", zap.Uint("attempt", n+1), zap.Error(err))
			if onAttempt != nil {
				onAttempt(n+1, err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("backend not ready after %d attempts: %w", rc.Attempts, err)
	}

	ctxzap.Info(ctx, "backend ready")
	return health, nil
}

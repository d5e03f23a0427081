package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/saarthi/internal/telegram"
	"go.uber.org/zap"
)

// App represents the Telegram bot with its optional webhook server
type App struct {
	bot    telegram.Bot
	server *http.Server
	logger *zap.Logger
}

// Run starts the bot, serves webhooks when configured and blocks until a
// shutdown signal or a fatal error.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)

	// The webhook server must be reachable before Telegram is told about it.
	if a.server != nil {
		go func() {
			a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	a.logger.Info("starting telegram bot")
	if err := a.bot.Start(ctx); err != nil {
		a.logger.Error("telegram bot error", zap.Error(err))
		_ = a.shutdown()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		_ = a.shutdown()
		return err
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// shutdown stops accepting webhooks first, then drains in-flight updates
func (a *App) shutdown() error {
	var errs []error

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a.logger.Info("Shutting down server gracefully")
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("Server shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if err := a.bot.Stop(); err != nil {
		a.logger.Error("error stopping bot", zap.Error(err))
		errs = append(errs, err)
	}

	a.logger.Info("telegram bot stopped gracefully")
	_ = a.logger.Sync()

	return errors.Join(errs...)
}

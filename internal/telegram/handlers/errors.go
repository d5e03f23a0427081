package handlers

import (
	"context"
	"errors"

	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorReporter tells users about errors a handler returned and logs them.
// Rejected input is only a warning; everything else is logged as an error.
type ErrorReporter struct {
	BaseHandler
}

func NewErrorReporter(api Sender, logger *zap.Logger) *ErrorReporter {
	return &ErrorReporter{BaseHandler: newBaseHandler(api, logger)}
}

func (r *ErrorReporter) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	level, msg := describeFailure(err)
	ctxzap.Extract(ctx).Log(level, msg, zap.Error(err), zap.Int64("chat_id", chatID))
	r.sendMessage(chatID, render.ClassifyError(err), nil)
}

func describeFailure(err error) (zapcore.Level, string) {
	var te *entity.TransportError
	switch {
	case errors.Is(err, entity.ErrEmptyInput),
		errors.Is(err, entity.ErrRequestInFlight),
		errors.Is(err, entity.ErrInvalidParameter):
		return zapcore.WarnLevel, "rejected input"
	case errors.As(err, &te):
		return zapcore.ErrorLevel, "backend request failed"
	default:
		return zapcore.ErrorLevel, "handler error"
	}
}

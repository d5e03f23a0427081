package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const exportFileName = "startupsaarthi-conversation"

// Exporter sends a chat's transcript as a document.
type Exporter struct {
	BaseHandler
	registry ConversationRegistry
	factory  FormatterFactory
}

func NewExporter(api Sender, registry ConversationRegistry, factory FormatterFactory, logger *zap.Logger) *Exporter {
	return &Exporter{
		BaseHandler: newBaseHandler(api, logger),
		registry:    registry,
		factory:     factory,
	}
}

func (e *Exporter) Export(ctx context.Context, chatID int64, format string) error {
	resultFormat := entity.ResultFormat(strings.ToLower(strings.TrimSpace(format)))
	if !resultFormat.IsValid() {
		e.sendMessage(chatID, render.ErrExportUsage, nil)
		return nil
	}

	turns := e.registry.Get(chatID).Transcript()
	if len(turns) == 0 {
		e.sendMessage(chatID, render.MsgEmptyTranscript, nil)
		return nil
	}

	fm, err := e.factory.Create(resultFormat)
	if err != nil {
		return fmt.Errorf("create formatter: %w", err)
	}

	data, err := fm.Format(turns)
	if err != nil {
		return fmt.Errorf("format transcript: %w", err)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  exportFileName + fm.FileExtension(),
		Bytes: data,
	})
	doc.Caption = render.MsgExportCaption

	if _, err := e.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	ctxzap.Info(ctx, "transcript exported",
		zap.Int64("chat_id", chatID),
		zap.String("format", string(resultFormat)),
		zap.Int("turns", len(turns)),
	)
	return nil
}

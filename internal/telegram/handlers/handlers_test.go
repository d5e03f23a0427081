package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
	pkgRetry "github.com/futig/saarthi/internal/pkg/retry"
	"github.com/futig/saarthi/internal/telegram/keyboard"
	"github.com/futig/saarthi/internal/telegram/render"
	"github.com/futig/saarthi/internal/telegram/state"
	"github.com/futig/saarthi/internal/usecase/conversation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (s *fakeSender) documents() []tgbotapi.DocumentConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []tgbotapi.DocumentConfig
	for _, c := range s.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

type fakeClient struct {
	mu       sync.Mutex
	requests []entity.QueryRequest
	result   *entity.QueryResult
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (c *fakeClient) SubmitQuery(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error) {
	c.mu.Lock()
	c.requests = append(c.requests, *req)
	c.mu.Unlock()

	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
	return c.result, c.err
}

func (c *fakeClient) last() entity.QueryRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

type fixture struct {
	sender   *fakeSender
	client   *fakeClient
	registry *state.Registry
	chat     *ChatHandler
	commands *CommandHandler
	callback *CallbackHandler
}

func newFixture(client *fakeClient) *fixture {
	logger := zap.NewNop()
	sender := &fakeSender{}
	registry := state.NewRegistry(time.Hour, func() *conversation.Conversation {
		return conversation.New(client)
	})
	kb := keyboard.NewBuilder()
	rc := &pkgRetry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond}

	chat := NewChatHandler(sender, registry, rc, logger)
	exporter := NewExporter(sender, registry, formatter.NewFactory(), logger)

	return &fixture{
		sender:   sender,
		client:   client,
		registry: registry,
		chat:     chat,
		commands: NewCommandHandler(sender, registry, kb, exporter, logger),
		callback: NewCallbackHandler(sender, registry, kb, chat, exporter, logger),
	}
}

func sidbiResult() *entity.QueryResult {
	return &entity.QueryResult{
		Answer:           "SIDBI FoF is...",
		Sources:          []entity.Citation{{SourceID: 1, Document: "SIDBI_Policy.pdf", Snippet: "..."}},
		DetectedLanguage: "en",
	}
}

func TestChatHandler_Answer(t *testing.T) {
	f := newFixture(&fakeClient{result: sidbiResult()})

	err := f.chat.Handle(context.Background(), &Message{ChatID: 42, Text: "What is SIDBI Fund of Funds?"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	texts := f.sender.texts()
	if len(texts) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(texts), texts)
	}
	if !strings.HasPrefix(texts[0], "SIDBI FoF is...") || !strings.Contains(texts[0], "[1] SIDBI_Policy.pdf") {
		t.Errorf("answer = %q", texts[0])
	}

	if n := f.registry.Get(42).Len(); n != 2 {
		t.Errorf("transcript length = %d, want 2", n)
	}

	f.sender.mu.Lock()
	defer f.sender.mu.Unlock()
	if len(f.sender.requests) == 0 {
		t.Error("no typing indicator sent")
	}
}

func TestChatHandler_FailureBecomesTurn(t *testing.T) {
	f := newFixture(&fakeClient{err: &entity.TransportError{Kind: entity.KindStatus, StatusCode: 500, Detail: "index missing"}})

	if err := f.chat.Handle(context.Background(), &Message{ChatID: 1, Text: "q"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	texts := f.sender.texts()
	if len(texts) != 1 || texts[0] != "Error: index missing" {
		t.Errorf("texts = %v", texts)
	}
}

func TestChatHandler_BusyWhileInFlight(t *testing.T) {
	client := &fakeClient{
		result:  sidbiResult(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	f := newFixture(client)

	done := make(chan error, 1)
	go func() {
		done <- f.chat.Handle(context.Background(), &Message{ChatID: 7, Text: "first"})
	}()
	<-client.started

	if err := f.chat.Handle(context.Background(), &Message{ChatID: 7, Text: "second"}); err != nil {
		t.Fatalf("second Handle: %v", err)
	}
	if n := f.registry.Get(7).Len(); n != 1 {
		t.Errorf("transcript length while in flight = %d, want 1", n)
	}

	// another chat is not blocked
	other := newFixture(&fakeClient{result: sidbiResult()})
	if err := other.chat.Handle(context.Background(), &Message{ChatID: 8, Text: "third"}); err != nil {
		t.Fatalf("other chat: %v", err)
	}

	close(client.release)
	if err := <-done; err != nil {
		t.Fatalf("first Handle: %v", err)
	}

	texts := f.sender.texts()
	if len(texts) != 2 || texts[0] != render.MsgBusy {
		t.Errorf("texts = %v", texts)
	}
	if n := f.registry.Get(7).Len(); n != 2 {
		t.Errorf("final transcript length = %d, want 2", n)
	}
}

func TestChatHandler_EmptyInput(t *testing.T) {
	f := newFixture(&fakeClient{result: sidbiResult()})

	if err := f.chat.Handle(context.Background(), &Message{ChatID: 1, Text: "   "}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if texts := f.sender.texts(); len(texts) != 1 || texts[0] != render.ErrInvalidInput {
		t.Errorf("texts = %v", texts)
	}
	if f.registry.Get(1).Len() != 0 {
		t.Error("empty input changed the transcript")
	}
}

func TestCommandHandler_LangAndDeterministic(t *testing.T) {
	client := &fakeClient{result: sidbiResult()}
	f := newFixture(client)
	ctx := context.Background()

	f.commands.Handle(ctx, &Message{ChatID: 1, Command: "lang", CommandArgs: "hi"})
	f.commands.Handle(ctx, &Message{ChatID: 1, Command: "lang", CommandArgs: "fr"})
	f.callback.Handle(ctx, &Message{ChatID: 1, CallbackID: "cb", CallbackData: "det:toggle"})
	f.chat.Handle(ctx, &Message{ChatID: 1, Text: "q"})

	texts := f.sender.texts()
	if texts[0] != render.RenderLanguage("hi") || texts[1] != render.ErrLanguageUsage {
		t.Errorf("texts = %v", texts)
	}

	req := client.last()
	if req.Language != "hi" || !req.Deterministic {
		t.Errorf("request = %+v", req)
	}
}

func TestCommandHandler_Reset(t *testing.T) {
	f := newFixture(&fakeClient{result: sidbiResult()})
	ctx := context.Background()

	f.chat.Handle(ctx, &Message{ChatID: 1, Text: "q"})
	f.commands.Handle(ctx, &Message{ChatID: 1, Command: "reset"})

	if f.registry.Get(1).Len() != 0 {
		t.Error("reset kept the transcript")
	}
}

func TestCommandHandler_Unknown(t *testing.T) {
	f := newFixture(&fakeClient{})
	f.commands.Handle(context.Background(), &Message{ChatID: 1, Command: "nope"})

	if texts := f.sender.texts(); len(texts) != 1 || texts[0] != render.ErrUnknownCommand {
		t.Errorf("texts = %v", texts)
	}
}

func TestExport(t *testing.T) {
	f := newFixture(&fakeClient{result: sidbiResult()})
	ctx := context.Background()

	f.commands.Handle(ctx, &Message{ChatID: 1, Command: "export", CommandArgs: "md"})
	if texts := f.sender.texts(); len(texts) != 1 || texts[0] != render.MsgEmptyTranscript {
		t.Fatalf("texts = %v", texts)
	}

	f.chat.Handle(ctx, &Message{ChatID: 1, Text: "What is SIDBI Fund of Funds?"})
	if err := f.callback.Handle(ctx, &Message{ChatID: 1, CallbackID: "cb", CallbackData: "dl:md"}); err != nil {
		t.Fatalf("export: %v", err)
	}

	docs := f.sender.documents()
	if len(docs) != 1 {
		t.Fatalf("documents = %d, want 1", len(docs))
	}
	file, ok := docs[0].File.(tgbotapi.FileBytes)
	if !ok {
		t.Fatalf("document file is %T", docs[0].File)
	}
	if file.Name != "startupsaarthi-conversation.md" {
		t.Errorf("file name = %q", file.Name)
	}
	if !strings.Contains(string(file.Bytes), "[1] SIDBI_Policy.pdf") {
		t.Errorf("export content = %s", file.Bytes)
	}
}

func TestCallback_Example(t *testing.T) {
	client := &fakeClient{result: sidbiResult()}
	f := newFixture(client)

	if err := f.callback.Handle(context.Background(), &Message{ChatID: 3, CallbackID: "cb", CallbackData: "ex:0"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := client.last().Query; got != conversation.ExampleQueries[0] {
		t.Errorf("query = %q", got)
	}

	if err := f.callback.Handle(context.Background(), &Message{ChatID: 3, CallbackID: "cb", CallbackData: "ex:99"}); err != nil {
		t.Fatalf("Handle out of range: %v", err)
	}
	if f.registry.Get(3).Len() != 2 {
		t.Errorf("out of range example changed the transcript")
	}
}

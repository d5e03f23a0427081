// Package conversation holds the chat view state: the transcript, the
// pending input, and the single in-flight request a view may have.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/saarthi/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

// LanguageAuto lets the backend detect the query language.
const LanguageAuto = "auto"

type Option func(*Conversation)

func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Conversation) {
		c.newID = newID
	}
}

func WithDeterministic(deterministic bool) Option {
	return func(c *Conversation) {
		c.deterministic = deterministic
	}
}

// Conversation is safe for concurrent use. Every method observes and
// mutates the state atomically, so a submission racing with another is
// rejected rather than interleaved.
type Conversation struct {
	mu sync.Mutex

	transcript    []entity.ConversationTurn
	input         string
	state         State
	deterministic bool
	language      string

	client QueryClient
	now    func() time.Time
	newID  func() string
}

func New(client QueryClient, opts ...Option) *Conversation {
	c := &Conversation{
		state:  StateIdle,
		client: client,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) InFlight() bool {
	return c.State() == StateAwaitingResponse
}

func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Conversation) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Conversation) Deterministic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deterministic
}

func (c *Conversation) SetDeterministic(deterministic bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deterministic = deterministic
}

// ToggleDeterministic flips deterministic mode and returns the new value.
// It only affects requests built after the call.
func (c *Conversation) ToggleDeterministic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deterministic = !c.deterministic
	return c.deterministic
}

// Language returns the language override, or "" when the backend detects it.
func (c *Conversation) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// SetLanguage overrides the answer language. "" or LanguageAuto clears the
// override.
func (c *Conversation) SetLanguage(code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == LanguageAuto {
		code = ""
	}
	if code != "" && !entity.IsKnownLanguage(code) {
		return fmt.Errorf("%w: unsupported language %q", entity.ErrInvalidParameter, code)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = code
	return nil
}

// Transcript returns a copy of the turns in display order.
func (c *Conversation) Transcript() []entity.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]entity.ConversationTurn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// Begin accepts the pending input as a submission: it appends the user
// turn, clears the input and enters AwaitingResponse. A rejected submission
// returns ErrRequestInFlight or ErrEmptyInput and changes nothing.
func (c *Conversation) Begin() (*entity.QueryRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begin()
}

func (c *Conversation) begin() (*entity.QueryRequest, error) {
	if c.state == StateAwaitingResponse {
		return nil, entity.ErrRequestInFlight
	}

	query := strings.TrimSpace(c.input)
	if query == "" {
		return nil, entity.ErrEmptyInput
	}

	c.transcript = append(c.transcript, entity.ConversationTurn{
		ID:        c.newID(),
		Role:      entity.RoleUser,
		Text:      query,
		CreatedAt: c.now(),
	})
	c.input = ""
	c.state = StateAwaitingResponse

	return &entity.QueryRequest{
		Query:         query,
		Deterministic: c.deterministic,
		Language:      c.language,
	}, nil
}

// Complete resolves the in-flight request with the backend's result or
// error and returns to Idle. It reports false, and does nothing, when no
// request is in flight.
func (c *Conversation) Complete(result *entity.QueryResult, err error) (entity.ConversationTurn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingResponse {
		return entity.ConversationTurn{}, false
	}

	turn := entity.ConversationTurn{
		ID:        c.newID(),
		Role:      entity.RoleAssistant,
		CreatedAt: c.now(),
	}

	if err != nil || result == nil {
		turn.Text = entity.RenderError(err)
	} else {
		turn.Text = result.Answer
		turn.DetectedLanguage = result.DetectedLanguage
		if len(result.Sources) > 0 {
			turn.Citations = make([]entity.Citation, len(result.Sources))
			copy(turn.Citations, result.Sources)
		}
	}

	c.transcript = append(c.transcript, turn)
	c.state = StateIdle

	return turn, true
}

// Fetch sends req to the backend. The call is detached from ctx
// cancellation: once issued, a request always resolves on its own.
func (c *Conversation) Fetch(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error) {
	return c.client.SubmitQuery(context.WithoutCancel(ctx), req)
}

// Submit runs a whole submission cycle for the pending input and returns
// the assistant turn. Backend failures end up in the turn text; the
// returned error is only set when the submission was rejected.
func (c *Conversation) Submit(ctx context.Context) (*entity.ConversationTurn, error) {
	req, err := c.Begin()
	if err != nil {
		return nil, err
	}
	return c.resolve(ctx, req)
}

// SubmitText submits text as if it had been typed into the pending input.
// A rejected submission leaves the pending input untouched.
func (c *Conversation) SubmitText(ctx context.Context, text string) (*entity.ConversationTurn, error) {
	c.mu.Lock()
	prev := c.input
	c.input = text
	req, err := c.begin()
	if err != nil {
		c.input = prev
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return c.resolve(ctx, req)
}

func (c *Conversation) resolve(ctx context.Context, req *entity.QueryRequest) (*entity.ConversationTurn, error) {
	start := c.now()
	result, fetchErr := c.Fetch(ctx, req)
	if fetchErr != nil {
		ctxzap.Warn(ctx, "query failed", zap.Error(fetchErr))
	} else {
		ctxzap.Debug(ctx, "query resolved",
			zap.Int("source_count", len(result.Sources)),
			zap.Duration("elapsed", c.now().Sub(start)),
		)
	}

	turn, ok := c.Complete(result, fetchErr)
	if !ok {
		return nil, entity.ErrRequestInFlight
	}
	return &turn, nil
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Connector speaks JSON to one backend rooted at BaseURL.
type Connector struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	cfg := defaultHTTPConfig()
	for _, opt := range options {
		opt(cfg)
	}

	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		userAgent:  cfg.userAgent,
		httpClient: newClient(cfg),
		logger:     config.Logger,
	}
}

// BaseURL returns the URL every endpoint is resolved against.
func (c *Connector) BaseURL() string {
	return c.baseURL
}

// DoRequest sends reqBody as JSON to baseURL+endpoint and decodes a 2xx
// response into respBody. A nil reqBody sends no body; a nil respBody
// discards the response.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any) error {
	req, err := c.newRequest(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	status, body, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &HTTPError{StatusCode: status, Message: string(body)}
	}

	return decodeBody(body, respBody)
}

func (c *Connector) newRequest(ctx context.Context, method, endpoint string, reqBody any) (*http.Request, error) {
	var payload []byte
	if reqBody != nil {
		var err error
		if payload, err = json.Marshal(reqBody); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		// the logging transport reads the payload back from the context
		ctx = context.WithValue(ctx, payloadContextKey{}, payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// roundTrip sends req and reads the whole response. Failures before a
// complete body arrived are NetworkErrors.
func (c *Connector) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}
	return resp.StatusCode, body, nil
}

func decodeBody(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(body) == 0 {
		return &DecodeError{Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Err: err, Body: string(body)}
	}
	return nil
}

// HTTPError is a non-2xx reply; Message holds the raw body.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError covers failures to get a complete reply: refused
// connections, timeouts and cut-off bodies. Its text is the cause's, the
// kind is carried by the type.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is returned when a 2xx response body is not the expected JSON.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

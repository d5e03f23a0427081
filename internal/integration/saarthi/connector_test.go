package saarthi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/credential"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/validator"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, url string, holder *credential.MemoryHolder) *Connector {
	t.Helper()

	cfg := config.APIClientConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:                   url,
			RequestTimeout:        2 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 2 * time.Second,
		},
		LanguagesCacheTTL: time.Minute,
	}
	v := validator.NewValidator(config.IngestConfig{Extensions: []string{".pdf", ".txt"}})

	return NewConnector(cfg, holder, v, zap.NewNop())
}

func TestSubmitQuery_SIDBI(t *testing.T) {
	var got entity.QueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Admin-Key") != "" {
			t.Errorf("public endpoint received admin key")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "SIDBI FoF is...",
			"sources": [{"source_id": 1, "document": "SIDBI_Policy.pdf", "content_snippet": "..."}],
			"detected_language": "en",
			"processing_time_seconds": 1.2
		}`))
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder("secret"))

	res, err := c.SubmitQuery(context.Background(), &entity.QueryRequest{
		Query:         "What is SIDBI Fund of Funds?",
		Deterministic: false,
	})
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}

	if got.Query != "What is SIDBI Fund of Funds?" || got.Deterministic {
		t.Errorf("request body = %+v", got)
	}
	if res.Answer != "SIDBI FoF is..." {
		t.Errorf("answer = %q", res.Answer)
	}
	if len(res.Sources) != 1 || res.Sources[0].SourceID != 1 || res.Sources[0].Document != "SIDBI_Policy.pdf" {
		t.Errorf("sources = %+v", res.Sources)
	}
	if res.Sources[0].Page != nil || res.Sources[0].Section != nil {
		t.Errorf("absent page/section should stay nil")
	}
	if res.DetectedLanguage != "en" || res.ProcessingSeconds != 1.2 {
		t.Errorf("metadata = %q %v", res.DetectedLanguage, res.ProcessingSeconds)
	}
}

func TestSubmitQuery_EmptyInputNeverReachesBackend(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder(""))

	_, err := c.SubmitQuery(context.Background(), &entity.QueryRequest{Query: "   "})
	if !errors.Is(err, entity.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times", calls.Load())
	}
}

func TestAdminUnauthorizedClearsCredential(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get("X-Admin-Key"))
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid admin key"}`))
	}))
	defer server.Close()

	holder := credential.NewMemoryHolder("wrong-key")
	c := newTestConnector(t, server.URL, holder)
	ctx := context.Background()

	_, err := c.FetchStats(ctx)
	var te *entity.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T %v, want *entity.TransportError", err, err)
	}
	if !te.IsUnauthorized() || te.Detail != "Invalid admin key" {
		t.Errorf("transport error = %+v", te)
	}

	stored, _ := holder.Credential(ctx)
	if stored != "" {
		t.Errorf("credential not cleared: %q", stored)
	}

	if _, err := c.TriggerReindex(ctx, true, true); err == nil {
		t.Fatal("expected second admin call to fail")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(keys) != 2 {
		t.Fatalf("backend saw %d requests, want 2", len(keys))
	}
	if keys[0] != "wrong-key" {
		t.Errorf("first request key = %q", keys[0])
	}
	if keys[1] != "" {
		t.Errorf("second request still carried X-Admin-Key %q", keys[1])
	}
}

func TestSubmitIngest(t *testing.T) {
	var got entity.IngestRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/ingest" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Admin-Key") != "secret" {
			t.Errorf("missing admin key")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success": true, "message": "ok", "chunks_created": 12, "document_id": "doc-1"}`))
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder("secret"))

	res, err := c.SubmitIngest(context.Background(), &entity.IngestRequest{
		FilePath:     "/data/policy.pdf",
		DocumentType: entity.DocumentTypePDF,
		Metadata:     map[string]any{"source": "/data"},
	})
	if err != nil {
		t.Fatalf("SubmitIngest: %v", err)
	}
	if !res.Success || res.ChunksCreated != 12 || res.DocumentID == nil || *res.DocumentID != "doc-1" {
		t.Errorf("result = %+v", res)
	}
	if got.DocumentType != entity.DocumentTypePDF || got.Metadata["source"] != "/data" {
		t.Errorf("request = %+v", got)
	}
}

func TestSubmitIngest_InvalidDocumentType(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder("secret"))

	_, err := c.SubmitIngest(context.Background(), &entity.IngestRequest{
		FilePath:     "/data/a.pptx",
		DocumentType: "pptx",
	})
	if !errors.Is(err, entity.ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend called on invalid request")
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   entity.TransportErrorKind
		wantDetail string
	}{
		{
			name:       "string detail",
			status:     http.StatusInternalServerError,
			body:       `{"detail": "Query processing failed: index not loaded"}`,
			wantKind:   entity.KindStatus,
			wantDetail: "Query processing failed: index not loaded",
		},
		{
			name:       "validation detail list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail": [{"loc": ["body", "query"], "msg": "field required"}, {"msg": "too short"}]}`,
			wantKind:   entity.KindStatus,
			wantDetail: "field required; too short",
		},
		{
			name:       "message field",
			status:     http.StatusBadGateway,
			body:       `{"message": "upstream down"}`,
			wantKind:   entity.KindStatus,
			wantDetail: "upstream down",
		},
		{
			name:     "no detail",
			status:   http.StatusServiceUnavailable,
			body:     `<html>unavailable</html>`,
			wantKind: entity.KindStatus,
		},
		{
			name:     "malformed success body",
			status:   http.StatusOK,
			body:     `{"answer": `,
			wantKind: entity.KindMalformed,
		},
		{
			name:     "null success body",
			status:   http.StatusOK,
			body:     `null`,
			wantKind: entity.KindMalformed,
		},
		{
			name:     "answerless success body",
			status:   http.StatusOK,
			body:     `{"sources": null}`,
			wantKind: entity.KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestConnector(t, server.URL, credential.NewMemoryHolder(""))

			_, err := c.SubmitQuery(context.Background(), &entity.QueryRequest{Query: "hello"})
			var te *entity.TransportError
			if !errors.As(err, &te) {
				t.Fatalf("err = %T %v, want *entity.TransportError", err, err)
			}
			if te.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", te.Kind, tt.wantKind)
			}
			if te.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", te.Detail, tt.wantDetail)
			}
			if tt.wantKind == entity.KindStatus && te.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", te.StatusCode, tt.status)
			}
		})
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder(""))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.SubmitQuery(ctx, &entity.QueryRequest{Query: "slow"})
	var te *entity.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T %v, want *entity.TransportError", err, err)
	}
	if te.Kind != entity.KindNetwork {
		t.Errorf("kind = %s, want network", te.Kind)
	}
	if got := entity.RenderError(err); got == "Error: " {
		t.Errorf("rendered error is empty")
	}
}

func TestUnreachableBackend(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestConnector(t, url, credential.NewMemoryHolder(""))

	_, err := c.HealthCheck(context.Background())
	var te *entity.TransportError
	if !errors.As(err, &te) || te.Kind != entity.KindNetwork {
		t.Fatalf("err = %v, want network transport error", err)
	}
}

func TestFetchSupportedLanguages_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail": "warming up"}`))
			return
		}
		w.Write([]byte(`{"supported_languages": [
			{"code": "en", "name": "English", "citation_format": "[Source {id}]"},
			{"code": "hi", "name": "Hindi", "citation_format": "[स्रोत {id}]"}
		]}`))
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder(""))
	ctx := context.Background()

	if _, err := c.FetchSupportedLanguages(ctx); err == nil {
		t.Fatal("expected first call to fail")
	}

	for i := 0; i < 3; i++ {
		langs, err := c.FetchSupportedLanguages(ctx)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(langs) != 2 || langs[1].Code != "hi" {
			t.Fatalf("languages = %+v", langs)
		}
	}

	langs, _ := c.FetchSupportedLanguages(ctx)
	langs[0].Code = "xx"
	if again, _ := c.FetchSupportedLanguages(ctx); again[0].Code != "en" {
		t.Errorf("caller edit leaked into the cache: %+v", again)
	}

	// one failure plus one successful fetch; the rest are served from cache
	if calls.Load() != 2 {
		t.Errorf("backend called %d times, want 2", calls.Load())
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "healthy", "components": {"faiss": true}}`))
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL+"/", credential.NewMemoryHolder(""))

	h, err := c.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if h["status"] != "healthy" {
		t.Errorf("health = %v", h)
	}
}

func TestSubmitQuery_EmptySourcesAreNonNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "No matching scheme.", "sources": null, "detected_language": "en"}`))
	}))
	defer server.Close()

	c := newTestConnector(t, server.URL, credential.NewMemoryHolder(""))
	res, err := c.SubmitQuery(context.Background(), &entity.QueryRequest{Query: "hello"})
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}
	if res.Answer != "No matching scheme." || res.Sources == nil || len(res.Sources) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestUnreachableBackend_RenderedOnce(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestConnector(t, url, credential.NewMemoryHolder(""))
	_, err := c.SubmitQuery(context.Background(), &entity.QueryRequest{Query: "hello"})

	got := entity.RenderError(err)
	if n := strings.Count(got, "network error"); n != 1 {
		t.Errorf("rendered %q, want a single network error prefix", got)
	}
}

package saarthi

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/integration/common"
	"github.com/futig/saarthi/internal/pkg/validator"
	pkghttp "github.com/futig/saarthi/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	queryEndpoint     = "/api/query"
	languagesEndpoint = "/api/languages"
	healthEndpoint    = "/health"
	ingestEndpoint    = "/api/admin/ingest"
	reindexEndpoint   = "/api/admin/reindex"
	statsEndpoint     = "/api/admin/stats"

	languagesCacheKey = "languages"
)

// Connector is the typed client of the StartupSaarthi backend. Every
// backend failure is returned as *entity.TransportError. Requests rejected
// by the validator before any network call fail with entity.ErrEmptyInput
// or entity.ErrInvalidParameter instead.
type Connector struct {
	config    config.APIClientConfig
	connector *pkghttp.Connector
	validator *validator.Validator
	languages *cache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.APIClientConfig,
	holder pkghttp.CredentialHolder,
	validator *validator.Validator,
	logger *zap.Logger,
) *Connector {
	c := &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, holder, logger),
		config:    cfg,
		validator: validator,
		logger:    logger,
	}

	if cfg.LanguagesCacheTTL > 0 {
		c.languages = cache.New(cfg.LanguagesCacheTTL, 2*cfg.LanguagesCacheTTL)
	}

	return c
}

// BaseURL returns the backend address the connector talks to.
func (c *Connector) BaseURL() string {
	return c.connector.BaseURL()
}

// SubmitQuery asks the backend a question
// POST /api/query
func (c *Connector) SubmitQuery(ctx context.Context, req *entity.QueryRequest) (*entity.QueryResult, error) {
	if err := c.validator.ValidateQuery(req); err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "submitting query",
		zap.Int("query_length", len(req.Query)),
		zap.Bool("deterministic", req.Deterministic),
		zap.String("language", req.Language),
	)

	var wire queryResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, queryEndpoint, req, &wire)
	if err == nil && wire.Answer == nil {
		err = &pkghttp.DecodeError{Err: errMissingAnswer}
	}
	if err != nil {
		ctxzap.Warn(ctx, "query failed", zap.Error(err))
		return nil, toTransportError(err)
	}
	resp := wire.result()

	ctxzap.Info(ctx, "query answered",
		zap.Int("source_count", len(resp.Sources)),
		zap.String("detected_language", resp.DetectedLanguage),
		zap.Float64("processing_seconds", resp.ProcessingSeconds),
	)

	return &resp, nil
}

// SubmitIngest asks the backend to ingest a document
// POST /api/admin/ingest
func (c *Connector) SubmitIngest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResult, error) {
	if err := c.validator.ValidateIngest(req); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "ingesting document",
		zap.String("file_path", req.FilePath),
		zap.String("document_type", string(req.DocumentType)),
	)

	var resp entity.IngestResult
	if err := c.connector.DoRequest(ctx, http.MethodPost, ingestEndpoint, req, &resp); err != nil {
		ctxzap.Error(ctx, "failed to ingest document", zap.Error(err))
		return nil, toTransportError(err)
	}

	ctxzap.Info(ctx, "document ingested",
		zap.Bool("success", resp.Success),
		zap.Int("chunks_created", resp.ChunksCreated),
	)

	return &resp, nil
}

// TriggerReindex rebuilds the dense and/or sparse indices
// POST /api/admin/reindex
func (c *Connector) TriggerReindex(ctx context.Context, rebuildFAISS, rebuildBM25 bool) (*entity.ReindexResult, error) {
	req := &entity.ReindexRequest{
		RebuildFAISS: rebuildFAISS,
		RebuildBM25:  rebuildBM25,
	}

	ctxzap.Info(ctx, "triggering reindex",
		zap.Bool("rebuild_faiss", rebuildFAISS),
		zap.Bool("rebuild_bm25", rebuildBM25),
	)

	var resp entity.ReindexResult
	if err := c.connector.DoRequest(ctx, http.MethodPost, reindexEndpoint, req, &resp); err != nil {
		ctxzap.Error(ctx, "failed to reindex", zap.Error(err))
		return nil, toTransportError(err)
	}

	return &resp, nil
}

// FetchStats returns index statistics
// GET /api/admin/stats
func (c *Connector) FetchStats(ctx context.Context) (*entity.Stats, error) {
	var resp entity.Stats
	if err := c.connector.DoRequest(ctx, http.MethodGet, statsEndpoint, nil, &resp); err != nil {
		ctxzap.Error(ctx, "failed to fetch stats", zap.Error(err))
		return nil, toTransportError(err)
	}

	return &resp, nil
}

// FetchSupportedLanguages lists the languages the backend answers in.
// Successful responses are cached for LanguagesCacheTTL.
// GET /api/languages
func (c *Connector) FetchSupportedLanguages(ctx context.Context) ([]entity.Language, error) {
	if c.languages != nil {
		if cached, ok := c.languages.Get(languagesCacheKey); ok {
			return slices.Clone(cached.([]entity.Language)), nil
		}
	}

	var resp entity.LanguagesResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, languagesEndpoint, nil, &resp); err != nil {
		ctxzap.Warn(ctx, "failed to fetch languages", zap.Error(err))
		return nil, toTransportError(err)
	}

	if c.languages != nil {
		c.languages.SetDefault(languagesCacheKey, slices.Clone(resp.SupportedLanguages))
	}

	return resp.SupportedLanguages, nil
}

// HealthCheck probes backend liveness
// GET /health
func (c *Connector) HealthCheck(ctx context.Context) (entity.Health, error) {
	var resp entity.Health
	if err := c.connector.DoRequest(ctx, http.MethodGet, healthEndpoint, nil, &resp); err != nil {
		return nil, toTransportError(err)
	}

	return resp, nil
}

func (c *Connector) String() string {
	return fmt.Sprintf("saarthi connector (%s)", c.BaseURL())
}

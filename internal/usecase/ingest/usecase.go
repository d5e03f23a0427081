// Package ingest feeds local documents to the backend's admin ingest
// endpoint, either once for a whole directory or continuously for files
// appearing in a watched directory.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/logger"
	"github.com/futig/saarthi/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	Path   string
	Result *entity.IngestResult
	Err    error
}

func (r FileResult) Succeeded() bool {
	return r.Err == nil && r.Result != nil && r.Result.Success
}

// DirReport summarizes a directory ingestion.
type DirReport struct {
	Dir     string
	Files   []FileResult
	Skipped []string
}

func (r *DirReport) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Succeeded() {
			n++
		}
	}
	return n
}

func (r *DirReport) Chunks() int {
	n := 0
	for _, f := range r.Files {
		if f.Succeeded() {
			n += f.Result.ChunksCreated
		}
	}
	return n
}

type IngestUsecase struct {
	ingester  Ingester
	validator *validator.Validator
	cfg       config.IngestConfig
	logger    *zap.Logger
}

func NewUsecase(ingester Ingester, validator *validator.Validator, cfg config.IngestConfig, logger *zap.Logger) *IngestUsecase {
	return &IngestUsecase{
		ingester:  ingester,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// IngestDir ingests every supported file directly inside dir, in name
// order. A failing file does not stop the others; the returned error is
// only set when dir cannot be read or ctx is done.
func (uc *IngestUsecase) IngestDir(ctx context.Context, dir string) (*DirReport, error) {
	ctx = logger.WithAction(ctx, "ingest_dir")

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	report := &DirReport{Dir: absDir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(absDir, e.Name())
		if !uc.validator.IsIngestible(path) {
			report.Skipped = append(report.Skipped, path)
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Files = append(report.Files, uc.IngestFile(ctx, path))
	}

	ctxzap.Info(ctx, "directory ingested",
		zap.String("dir", absDir),
		zap.Int("files", len(report.Files)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("chunks", report.Chunks()),
	)

	return report, nil
}

// IngestFile submits a single file, tagging it with its directory and
// file name as metadata.
func (uc *IngestUsecase) IngestFile(ctx context.Context, path string) FileResult {
	docType, err := validator.DocumentTypeFor(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	req := &entity.IngestRequest{
		FilePath:     path,
		DocumentType: docType,
		Metadata: map[string]any{
			"source":   filepath.Dir(path),
			"filename": filepath.Base(path),
		},
	}

	res, err := uc.ingester.SubmitIngest(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "failed to ingest file", zap.String("path", path), zap.Error(err))
		return FileResult{Path: path, Err: err}
	}
	if !res.Success {
		ctxzap.Warn(ctx, "backend rejected file", zap.String("path", path), zap.String("message", res.Message))
	}

	return FileResult{Path: path, Result: res}
}

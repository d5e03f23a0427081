package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/futig/saarthi/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Watcher reports files created or written in a single directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
}

// NewWatcher starts watching dir. Events that happen after it returns are
// delivered to Watch.
func NewWatcher(dir string) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(absDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", absDir, err)
	}

	return &Watcher{watcher: w, dir: absDir}, nil
}

func (w *Watcher) Dir() string {
	return w.dir
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch ingests supported files as they settle in the watched directory
// until ctx is done. A file is ingested once no event for it has been seen
// for the configured debounce interval, so a file written in several
// chunks is sent once. onResult, if set, is called after every ingestion.
func (uc *IngestUsecase) Watch(ctx context.Context, w *Watcher, onResult func(FileResult)) error {
	ctx = logger.WithAction(ctx, "ingest_watch")
	ctxzap.Info(ctx, "watching directory", zap.String("dir", w.dir))

	ready := make(chan string, 16)
	files := newDebouncer(uc.cfg.Debounce, func(path string) {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	defer files.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !uc.validator.IsIngestible(event.Name) {
				continue
			}
			files.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			ctxzap.Warn(ctx, "watcher error", zap.Error(err))

		case path := <-ready:
			res := uc.IngestFile(ctx, path)
			if res.Succeeded() {
				ctxzap.Info(ctx, "file ingested",
					zap.String("path", path),
					zap.Int("chunks", res.Result.ChunksCreated),
				)
			}
			if onResult != nil {
				onResult(res)
			}
		}
	}
}

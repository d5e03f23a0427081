package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/validator"
	"go.uber.org/zap"
)

type fakeIngester struct {
	mu       sync.Mutex
	requests []entity.IngestRequest
	fail     map[string]error
}

func (f *fakeIngester) SubmitIngest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, *req)
	if err, ok := f.fail[filepath.Base(req.FilePath)]; ok {
		return nil, err
	}
	return &entity.IngestResult{Success: true, Message: "ok", ChunksCreated: 3}, nil
}

func (f *fakeIngester) calls() []entity.IngestRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.IngestRequest(nil), f.requests...)
}

func newTestUsecase(ing Ingester, debounce time.Duration) *IngestUsecase {
	cfg := config.IngestConfig{
		Extensions: []string{".pdf", ".docx", ".txt", ".csv", ".xlsx", ".xls"},
		Debounce:   debounce,
	}
	return NewUsecase(ing, validator.NewValidator(cfg), cfg, zap.NewNop())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_schemes.csv"), "name,amount")
	writeFile(t, filepath.Join(dir, "a_policy.txt"), "policy")
	writeFile(t, filepath.Join(dir, "notes.json"), "{}")
	writeFile(t, filepath.Join(dir, "c_broken.pdf"), "%PDF")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested", "deep.txt"), "ignored")

	ing := &fakeIngester{fail: map[string]error{
		"c_broken.pdf": &entity.TransportError{Kind: entity.KindStatus, StatusCode: 500, Detail: "parse failed"},
	}}
	uc := newTestUsecase(ing, 0)

	report, err := uc.IngestDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}

	calls := ing.calls()
	if len(calls) != 3 {
		t.Fatalf("ingested %d files, want 3", len(calls))
	}

	wantOrder := []struct {
		name    string
		docType entity.DocumentType
	}{
		{"a_policy.txt", entity.DocumentTypeTXT},
		{"b_schemes.csv", entity.DocumentTypeCSV},
		{"c_broken.pdf", entity.DocumentTypePDF},
	}
	for i, want := range wantOrder {
		got := calls[i]
		if filepath.Base(got.FilePath) != want.name || got.DocumentType != want.docType {
			t.Errorf("call %d = %s (%s), want %s (%s)", i, got.FilePath, got.DocumentType, want.name, want.docType)
		}
		if got.Metadata["filename"] != want.name {
			t.Errorf("call %d filename metadata = %v", i, got.Metadata["filename"])
		}
		if !filepath.IsAbs(got.FilePath) {
			t.Errorf("call %d path not absolute: %s", i, got.FilePath)
		}
	}

	if report.Succeeded() != 2 || report.Chunks() != 6 {
		t.Errorf("succeeded = %d chunks = %d", report.Succeeded(), report.Chunks())
	}
	if len(report.Skipped) != 1 || filepath.Base(report.Skipped[0]) != "notes.json" {
		t.Errorf("skipped = %v", report.Skipped)
	}

	var te *entity.TransportError
	if !errors.As(report.Files[2].Err, &te) || te.Detail != "parse failed" {
		t.Errorf("failure not reported: %+v", report.Files[2])
	}
}

func TestIngestDir_MissingDirectory(t *testing.T) {
	uc := newTestUsecase(&fakeIngester{}, 0)
	if _, err := uc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatch_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	ing := &fakeIngester{}
	uc := newTestUsecase(ing, 100*time.Millisecond)

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan FileResult, 4)
	done := make(chan error, 1)
	go func() {
		done <- uc.Watch(ctx, w, func(r FileResult) { results <- r })
	}()

	path := filepath.Join(dir, "new_scheme.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		f.WriteString("chunk ")
		f.Sync()
		time.Sleep(10 * time.Millisecond)
	}
	f.Close()
	writeFile(t, filepath.Join(dir, "ignored.json"), "{}")

	select {
	case r := <-results:
		if r.Path != path || !r.Succeeded() {
			t.Errorf("result = %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("file was not ingested")
	}

	// give a duplicate ingestion time to show up
	select {
	case r := <-results:
		t.Errorf("unexpected extra ingestion of %s", r.Path)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
	if n := len(ing.calls()); n != 1 {
		t.Errorf("ingested %d times, want 1", n)
	}
}

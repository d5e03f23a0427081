package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/futig/saarthi/internal/builder"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
	"github.com/futig/saarthi/internal/pkg/validator"
	"github.com/futig/saarthi/internal/tui"
	"github.com/futig/saarthi/internal/usecase/ingest"
)

type cmdChat struct {
	Deterministic bool   `short:"d" help:"Start with deterministic answers enabled."`
	Lang          string `short:"l" default:"auto" help:"Answer language override (en, hi, ta, te or auto)."`
}

func (c *cmdChat) Run(rt *runtime) error {
	client, err := rt.open(true)
	if err != nil {
		return err
	}

	conv := client.NewConversation()
	conv.SetDeterministic(c.Deterministic)
	if err := conv.SetLanguage(c.Lang); err != nil {
		return err
	}

	return tui.Run(rt.ctx, conv, client.Formatters)
}

type cmdAsk struct {
	Question      []string `arg:"" help:"Question to ask."`
	Deterministic bool     `short:"d" help:"Request a reproducible answer."`
	Lang          string   `short:"l" default:"auto" help:"Answer language override (en, hi, ta, te or auto)."`
}

func (c *cmdAsk) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	conv := client.NewConversation()
	conv.SetDeterministic(c.Deterministic)
	if err := conv.SetLanguage(c.Lang); err != nil {
		return err
	}

	conv.SetInput(strings.Join(c.Question, " "))
	req, err := conv.Begin()
	if err != nil {
		return err
	}

	result, fetchErr := conv.Fetch(rt.ctx, req)
	turn, _ := conv.Complete(result, fetchErr)
	if fetchErr != nil {
		return fetchErr
	}

	printTurn(rt.stdout, turn)
	return nil
}

func printTurn(w io.Writer, turn entity.ConversationTurn) {
	fmt.Fprintln(w, turn.Text)
	if len(turn.Citations) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", formatter.SourcesHeader(turn.DetectedLanguage))
	for _, c := range turn.Citations {
		fmt.Fprintf(w, "  %s\n", formatter.CitationLine(c))
	}
}

type cmdLanguages struct{}

func (c *cmdLanguages) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	langs, err := client.Connector.FetchSupportedLanguages(rt.ctx)
	if err != nil {
		return err
	}

	for _, l := range langs {
		fmt.Fprintf(rt.stdout, "%-4s %-10s %s\n", l.Code, l.Name, l.CitationFormat)
	}
	return nil
}

type cmdHealth struct{}

func (c *cmdHealth) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	health, err := client.Health.Check(rt.ctx)
	if err != nil {
		return err
	}

	printHealth(rt.stdout, health)
	return nil
}

func printHealth(w io.Writer, health entity.Health) {
	keys := make([]string, 0, len(health))
	for k := range health {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %v\n", k, health[k])
	}
}

type cmdWait struct {
	Attempts uint          `short:"n" help:"Probes before giving up (default from SAARTHI_HEALTH_RETRY_ATTEMPTS)."`
	Delay    time.Duration `short:"i" help:"Pause between probes (default from SAARTHI_HEALTH_RETRY_DELAY)."`
}

func (c *cmdWait) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	rc := client.Config.APIClientCfg.HealthRetry
	if c.Attempts > 0 {
		rc.Attempts = c.Attempts
	}
	if c.Delay > 0 {
		rc.Delay = c.Delay
	}

	fmt.Fprintf(rt.stdout, "Waiting for %s ...\n", client.Connector.BaseURL())
	health, err := client.Health.WaitReady(rt.ctx, &rc, func(n uint, err error) {
		fmt.Fprintf(rt.stdout, "  attempt %d/%d: %s\n", n, rc.Attempts, entity.RenderError(err))
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(rt.stdout, "Backend is ready.")
	printHealth(rt.stdout, health)
	return nil
}

type cmdIngest struct {
	Path string            `arg:"" help:"File path on the backend host, or a URL with --type web."`
	Type string            `short:"t" help:"Document type (pdf, docx, txt, csv, excel, web); derived from the extension when omitted."`
	Meta map[string]string `short:"m" help:"Metadata entries key=value."`
}

func (c *cmdIngest) Run(rt *runtime) error {
	client, err := rt.openAdmin()
	if err != nil {
		return err
	}

	docType := entity.DocumentType(strings.ToLower(c.Type))
	if docType == "" {
		if docType, err = validator.DocumentTypeFor(c.Path); err != nil {
			return err
		}
	}

	req := &entity.IngestRequest{
		FilePath:     c.Path,
		DocumentType: docType,
	}
	if len(c.Meta) > 0 {
		req.Metadata = make(map[string]any, len(c.Meta))
		for k, v := range c.Meta {
			req.Metadata[k] = v
		}
	}

	result, err := client.Connector.SubmitIngest(rt.ctx, req)
	if err != nil {
		return err
	}

	printIngest(rt.stdout, c.Path, result)
	if !result.Success {
		return fmt.Errorf("ingestion of %s failed", c.Path)
	}
	return nil
}

func printIngest(w io.Writer, path string, result *entity.IngestResult) {
	status := "ok"
	if !result.Success {
		status = "failed"
	}
	fmt.Fprintf(w, "%s: %s, %d chunks", path, status, result.ChunksCreated)
	if result.Message != "" {
		fmt.Fprintf(w, " (%s)", result.Message)
	}
	fmt.Fprintln(w)
}

type cmdIngestDir struct {
	Dir   string `arg:"" type:"existingdir" help:"Directory whose supported files are ingested."`
	Watch bool   `short:"w" help:"Keep running and ingest files as they are created or changed."`
}

func (c *cmdIngestDir) Run(rt *runtime) error {
	client, err := rt.openAdmin()
	if err != nil {
		return err
	}

	report, err := client.Ingest.IngestDir(rt.ctx, c.Dir)
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		printFileResult(rt.stdout, f)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(rt.stdout, "%s: skipped\n", s)
	}
	fmt.Fprintf(rt.stdout, "%d/%d files ingested, %d chunks created\n", report.Succeeded(), len(report.Files), report.Chunks())

	if !c.Watch {
		if report.Succeeded() < len(report.Files) {
			return fmt.Errorf("%d files failed", len(report.Files)-report.Succeeded())
		}
		return nil
	}

	w, err := ingest.NewWatcher(c.Dir)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintf(rt.stdout, "Watching %s for new files (Ctrl+C to stop)\n", w.Dir())
	return client.Ingest.Watch(rt.ctx, w, func(f ingest.FileResult) {
		printFileResult(rt.stdout, f)
	})
}

func printFileResult(w io.Writer, f ingest.FileResult) {
	if f.Err != nil {
		fmt.Fprintf(w, "%s: %s\n", f.Path, describe(f.Err))
		return
	}
	printIngest(w, f.Path, f.Result)
}

type cmdReindex struct {
	FAISS bool `name:"faiss" default:"true" negatable:"" help:"Rebuild the vector index."`
	BM25  bool `name:"bm25" default:"true" negatable:"" help:"Rebuild the keyword index."`
}

func (c *cmdReindex) Run(rt *runtime) error {
	if !c.FAISS && !c.BM25 {
		return fmt.Errorf("%w: nothing to rebuild", entity.ErrInvalidParameter)
	}

	client, err := rt.openAdmin()
	if err != nil {
		return err
	}

	result, err := client.Connector.TriggerReindex(rt.ctx, c.FAISS, c.BM25)
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.stdout, "%s\nvector index: %d documents\nkeyword index: %d documents\n",
		result.Message, result.FAISSDocuments, result.BM25Documents)
	if !result.Success {
		return fmt.Errorf("reindex failed")
	}
	return nil
}

type cmdStats struct{}

func (c *cmdStats) Run(rt *runtime) error {
	client, err := rt.openAdmin()
	if err != nil {
		return err
	}

	stats, err := client.Connector.FetchStats(rt.ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.stdout, "documents:        %d\n", stats.TotalDocuments)
	fmt.Fprintf(rt.stdout, "chunks:           %d\n", stats.TotalChunks)
	fmt.Fprintf(rt.stdout, "vector index:     %.2f MB\n", stats.FAISSIndexSizeMB)
	fmt.Fprintf(rt.stdout, "keyword index:    %.2f MB\n", stats.BM25IndexSizeMB)
	fmt.Fprintf(rt.stdout, "embedding model:  %s\n", stats.EmbeddingModel)
	fmt.Fprintf(rt.stdout, "languages:        %s\n", strings.Join(stats.SupportedLanguages, ", "))
	return nil
}

type cmdLogin struct {
	Key string `arg:"" help:"Admin key sent as X-Admin-Key."`
}

func (c *cmdLogin) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	if err := client.Credentials.SetCredential(rt.ctx, strings.TrimSpace(c.Key)); err != nil {
		return err
	}
	fmt.Fprintln(rt.stdout, "Admin key stored.")
	return nil
}

type cmdLogout struct{}

func (c *cmdLogout) Run(rt *runtime) error {
	client, err := rt.open(false)
	if err != nil {
		return err
	}

	if err := client.Credentials.ClearCredential(rt.ctx); err != nil {
		return err
	}
	fmt.Fprintln(rt.stdout, "Admin key forgotten.")
	return nil
}

// openAdmin opens the client and requires a stored admin key.
func (r *runtime) openAdmin() (*builder.Client, error) {
	client, err := r.open(false)
	if err != nil {
		return nil, err
	}

	key, err := client.Credentials.Credential(r.ctx)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, entity.ErrNoCredential
	}
	return client, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/futig/saarthi/internal/builder"
	"github.com/futig/saarthi/internal/entity"
)

type CLI struct {
	Env string `short:"e" default:"local" help:"Environment whose .env file is loaded (local, prod, ...)."`

	Chat      cmdChat      `cmd:"" help:"Open the interactive chat view."`
	Ask       cmdAsk       `cmd:"" help:"Ask a single question and print the answer with its sources."`
	Languages cmdLanguages `cmd:"" help:"List the languages the backend answers in."`
	Health    cmdHealth    `cmd:"" help:"Probe the backend once."`
	Wait      cmdWait      `cmd:"" help:"Poll the backend until it is ready."`
	Ingest    cmdIngest    `cmd:"" help:"Ingest a document or web page (admin)."`
	IngestDir cmdIngestDir `cmd:"" name:"ingest-dir" help:"Ingest every supported file of a directory (admin)."`
	Reindex   cmdReindex   `cmd:"" help:"Rebuild the backend search indexes (admin)."`
	Stats     cmdStats     `cmd:"" help:"Show knowledge base statistics (admin)."`
	Login     cmdLogin     `cmd:"" help:"Store the admin key used for admin commands."`
	Logout    cmdLogout    `cmd:"" help:"Forget the stored admin key."`
}

// runtime is bound to every command's Run method.
type runtime struct {
	ctx    context.Context
	env    string
	stdout io.Writer
	stderr io.Writer
	client *builder.Client
}

// open builds the client on first use. Full screen commands log to a file.
func (r *runtime) open(logToFile bool) (*builder.Client, error) {
	if r.client != nil {
		return r.client, nil
	}
	c, err := builder.BuildClient(r.env, logToFile)
	if err != nil {
		return nil, err
	}
	r.client = c
	return c, nil
}

func (r *runtime) close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("saarthi"),
		kong.Description("Client for the StartupSaarthi startup funding assistant."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help and friends
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "saarthi: error: %v\n", err)
		return 2
	}

	rt := &runtime{ctx: ctx, env: cli.Env, stdout: stdout, stderr: stderr}
	defer rt.close()

	if err := kctx.Run(rt); err != nil {
		fmt.Fprintf(stderr, "saarthi: %s\n", describe(err))
		return 1
	}
	return 0
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	var transportErr *entity.TransportError
	switch {
	case errors.As(err, &transportErr) && transportErr.IsUnauthorized():
		return "admin key rejected and forgotten; run `saarthi login <key>` again"
	case errors.Is(err, entity.ErrNoCredential):
		return "no admin key stored; run `saarthi login <key>` first"
	case errors.As(err, &transportErr):
		return entity.RenderError(err)
	default:
		return err.Error()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/sieflow/sieflow/telemetry"
	"github.com/sieflow/sieflow/web"
)

type WebCmd struct {
	File  string `help:"SIE file to serve. Omit for an upload-only server." arg:"" optional:""`
	Port  int    `help:"Port to listen on." default:"8080" env:"SIEFLOW_PORT"`
	Watch bool   `help:"Reload the served file when it changes on disk." short:"w"`
	Quiet bool   `help:"Disable request logging." short:"q"`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	file := cmd.File
	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("failed to access file: %w", err)
		}
		file = abs
	}

	logger := zap.NewNop()
	if !cmd.Quiet {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	server := web.New(cmd.Port, file, logger)
	server.WatchEnabled = cmd.Watch

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	if file != "" {
		printInfof(ctx.Stdout, "Serving file: %s", pathStyle.Render(file))
		if cmd.Watch {
			printInfof(ctx.Stdout, "Watching for changes")
		}
	} else {
		printInfof(ctx.Stdout, "Upload-only mode: POST /api/analyze")
	}

	return server.Start(runCtx)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"SIE input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
		defer reportTelemetry()
	}

	doc, err := document.Build(runCtx, cmd.File.Contents)
	if err != nil {
		renderer := NewErrorRenderer(cmd.File.Contents)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))

		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")

		reportTelemetry()
		os.Exit(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Parsed %s: %d accounts, %d verifications, %d fiscal year(s)",
		doc.CompanyName, len(doc.Accounts), len(doc.Verifications), len(doc.FiscalYears)))

	if len(doc.Warnings) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr)
		renderer := NewErrorRenderer(cmd.File.Contents)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(doc.Warnings))
		printWarning(ctx.Stderr, fmt.Sprintf("%d warning(s) recorded", len(doc.Warnings)))
	}

	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/sieflow/sieflow"
	"github.com/sieflow/sieflow/analysis"
)

type FlowCmd struct {
	File      FileOrStdin `help:"SIE input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Year      *int        `help:"Fiscal year index (0 = current, -1 = previous)." default:"0"`
	Groups    string      `help:"YAML file with custom account grouping rules." type:"existingfile"`
	Threshold string      `help:"Materiality threshold below which edges are dropped." default:"0.01"`
}

func (cmd *FlowCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	threshold, err := decimal.NewFromString(cmd.Threshold)
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", cmd.Threshold, err)
	}

	flowOpts := []analysis.FlowOption{analysis.WithThreshold(threshold)}
	if cmd.Groups != "" {
		grouping, err := analysis.LoadGrouping(cmd.Groups)
		if err != nil {
			return err
		}
		flowOpts = append(flowOpts, analysis.WithGrouping(grouping))
	}

	runCtx := context.Background()
	runCtx, report := withTelemetry(runCtx, ctx, globals, "flow", cmd.File.Filename)
	defer report()

	opts := []sieflow.Option{sieflow.WithFlowOptions(flowOpts...)}
	if cmd.Year != nil {
		opts = append(opts, sieflow.WithFiscalYear(*cmd.Year))
	}

	result, err := sieflow.Analyze(runCtx, cmd.File.Contents, opts...)
	if err != nil {
		renderer := NewErrorRenderer(cmd.File.Contents)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		report()
		os.Exit(1)
	}

	enc := json.NewEncoder(ctx.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Flow)
}

package cli

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/sie"
)

// DoctorCmd provides doctor utilities for debugging SIE files.
type DoctorCmd struct {
	Records  RecordsCmd  `cmd:"" help:"Show tokenized records from an SIE file."`
	Document DocumentCmd `cmd:"" help:"Dump the assembled document."`
}

// RecordsCmd shows the tokenized record stream.
type RecordsCmd struct {
	File FileOrStdin `help:"SIE input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *RecordsCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	r, err := sie.NewReader(cmd.File.Contents)
	if err != nil {
		return err
	}

	printer := repr.New(ctx.Stdout)
	records, errs := r.ReadAll()
	for _, rec := range records {
		printer.Println(rec)
	}
	for _, err := range errs {
		printWarning(ctx.Stderr, err.Error())
	}

	return nil
}

// DocumentCmd dumps the assembled document structure.
type DocumentCmd struct {
	File FileOrStdin `help:"SIE input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *DocumentCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	doc, err := document.Build(context.Background(), cmd.File.Contents)
	if err != nil {
		renderer := NewErrorRenderer(cmd.File.Contents)
		printError(ctx.Stderr, renderer.Render(err))
		return err
	}

	repr.New(ctx.Stdout).Println(doc)
	return nil
}

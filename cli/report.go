package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/sieflow/sieflow"
	"github.com/sieflow/sieflow/analysis"
	"github.com/sieflow/sieflow/document"
)

type ReportCmd struct {
	File FileOrStdin `help:"SIE input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Year *int        `help:"Fiscal year index (0 = current, -1 = previous). Prompts when several years exist."`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()
	runCtx, report := withTelemetry(runCtx, ctx, globals, "report", cmd.File.Filename)
	defer report()

	doc, err := sieflow.Parse(runCtx, cmd.File.Contents)
	if err != nil {
		renderer := NewErrorRenderer(cmd.File.Contents)
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		report()
		os.Exit(1)
	}

	fy, err := cmd.selectYear(doc)
	if err != nil {
		return err
	}

	ratios := analysis.CalculateRatios(runCtx, doc, fy)
	monthly := analysis.MonthlyActivity(runCtx, doc, fy)

	printCompanyHeader(ctx.Stdout, doc, fy)
	printRatios(ctx.Stdout, ratios)
	printMonthly(ctx.Stdout, monthly)

	if len(doc.Warnings) > 0 {
		printWarning(ctx.Stderr, fmt.Sprintf("%d warning(s) recorded; run 'check' for details", len(doc.Warnings)))
	}

	return nil
}

// selectYear resolves the fiscal year from the flag, a prompt when the
// file declares several years on an interactive terminal, or the current
// year.
func (cmd *ReportCmd) selectYear(doc *document.Document) (document.FiscalYear, error) {
	if cmd.Year != nil {
		fy, ok := doc.FiscalYear(*cmd.Year)
		if !ok {
			return document.FiscalYear{}, fmt.Errorf("fiscal year %d is not declared in the file", *cmd.Year)
		}
		return fy, nil
	}

	if len(doc.FiscalYears) > 1 && isTerminal() {
		options := make([]huh.Option[int], 0, len(doc.FiscalYears))
		for _, fy := range doc.FiscalYears {
			label := fmt.Sprintf("%s – %s", fy.Start.Format("2006-01-02"), fy.End.Format("2006-01-02"))
			options = append(options, huh.NewOption(label, fy.Index))
		}

		index := 0
		form := huh.NewSelect[int]().
			Title("Fiscal year").
			Options(options...).
			Value(&index)
		if err := form.Run(); err != nil {
			return document.FiscalYear{}, fmt.Errorf("failed to read selection: %w", err)
		}

		fy, _ := doc.FiscalYear(index)
		return fy, nil
	}

	return doc.CurrentFiscalYear(), nil
}

func printCompanyHeader(w io.Writer, doc *document.Document, fy document.FiscalYear) {
	name := doc.CompanyName
	if doc.OrgNumber != "" {
		name = fmt.Sprintf("%s (%s)", name, doc.OrgNumber)
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Company"), name)
	_, _ = fmt.Fprintf(w, "%s %s – %s\n\n", labelStyle.Render("Period "),
		fy.Start.Format("2006-01-02"), fy.End.Format("2006-01-02"))
}

func printRatios(w io.Writer, r analysis.Ratios) {
	_, _ = fmt.Fprintln(w, labelStyle.Render("Ratios"))

	rows := []struct {
		label string
		value string
	}{
		{"Liquidity ratio", formatRatio(r.Liquidity)},
		{"Solvency ratio", formatRatio(r.Solvency)},
		{"Current assets", r.CurrentAssets.StringFixed(2)},
		{"Current liabilities", r.CurrentLiabilities.StringFixed(2)},
		{"Total assets", r.TotalAssets.StringFixed(2)},
		{"Total liabilities", r.TotalLiabilities.StringFixed(2)},
		{"Equity", r.Equity.StringFixed(2)},
	}

	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.label); w > width {
			width = w
		}
	}
	for _, row := range rows {
		padding := strings.Repeat(" ", width-runewidth.StringWidth(row.label))
		_, _ = fmt.Fprintf(w, "  %s%s  %s\n", row.label, padding, row.value)
	}
	_, _ = fmt.Fprintln(w)
}

func formatRatio(r *decimal.Decimal) string {
	if r == nil {
		return dimStyle.Render("undefined")
	}
	return r.StringFixed(2)
}

func printMonthly(w io.Writer, monthly []analysis.MonthlyBucket) {
	_, _ = fmt.Fprintln(w, labelStyle.Render("Monthly activity"))

	maxAmount := decimal.Zero
	amountWidth := 0
	for _, b := range monthly {
		if b.Amount.GreaterThan(maxAmount) {
			maxAmount = b.Amount
		}
		if aw := len(b.Amount.StringFixed(2)); aw > amountWidth {
			amountWidth = aw
		}
	}

	barWidth := terminalBarWidth(amountWidth)
	for _, b := range monthly {
		bar := ""
		if maxAmount.IsPositive() && barWidth > 0 {
			filled := int(b.Amount.Div(maxAmount).Mul(decimal.NewFromInt(int64(barWidth))).IntPart())
			bar = infoStyle.Render(strings.Repeat("█", filled))
		}
		_, _ = fmt.Fprintf(w, "  %s  %4d  %*s  %s\n", b.Month, b.Count, amountWidth, b.Amount.StringFixed(2), bar)
	}
	_, _ = fmt.Fprintln(w)
}

// terminalBarWidth leaves room for the fixed columns and caps the bar at
// something readable on wide terminals.
func terminalBarWidth(amountWidth int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 80
	}
	bar := width - amountWidth - 20
	if bar < 0 {
		return 0
	}
	if bar > 40 {
		return 40
	}
	return bar
}

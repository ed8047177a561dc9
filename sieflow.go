// Package sieflow turns raw SIE accounting exports into analytical
// products: financial ratios, a Sankey-ready flow graph, and a monthly
// activity series.
//
// The package is a thin convenience layer over the underlying packages:
// sie (record reading), document (document assembly), and analysis (the
// calculators). One call covers the common case:
//
//	result, err := sieflow.Analyze(ctx, raw)
//	if err != nil {
//	    // typed parse failure: *sie.DecodeError,
//	    // *document.UnknownAccountError, *document.MalformedDocumentError
//	}
//	fmt.Println(result.Ratios.Liquidity)
package sieflow

import (
	"context"

	"github.com/sieflow/sieflow/analysis"
	"github.com/sieflow/sieflow/document"
)

// Parse builds a Document from raw SIE file content.
func Parse(ctx context.Context, raw []byte) (*document.Document, error) {
	return document.Build(ctx, raw)
}

// Analysis bundles every analytical product for one fiscal year.
type Analysis struct {
	Document   *document.Document
	FiscalYear document.FiscalYear
	Ratios     analysis.Ratios
	Flow       *analysis.FlowGraph
	Monthly    []analysis.MonthlyBucket
}

// Option configures Analyze.
type Option func(*config)

type config struct {
	yearIndex  *int
	flowOption []analysis.FlowOption
}

// WithFiscalYear selects the fiscal year by its #RAR index (0 is the
// current year, -1 the previous). Default: the current year.
func WithFiscalYear(index int) Option {
	return func(c *config) { c.yearIndex = &index }
}

// WithFlowOptions forwards options to the flow graph builder.
func WithFlowOptions(opts ...analysis.FlowOption) Option {
	return func(c *config) { c.flowOption = opts }
}

// Analyze parses raw SIE content and runs every calculator for the chosen
// fiscal year.
func Analyze(ctx context.Context, raw []byte, opts ...Option) (*Analysis, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := document.Build(ctx, raw)
	if err != nil {
		return nil, err
	}

	fy := doc.CurrentFiscalYear()
	if cfg.yearIndex != nil {
		selected, ok := doc.FiscalYear(*cfg.yearIndex)
		if !ok {
			return nil, &document.MalformedDocumentError{
				Missing: "#RAR",
				Reason:  "requested fiscal year is not declared",
			}
		}
		fy = selected
	}

	return &Analysis{
		Document:   doc,
		FiscalYear: fy,
		Ratios:     analysis.CalculateRatios(ctx, doc, fy),
		Flow:       analysis.BuildFlowGraph(ctx, doc, fy, cfg.flowOption...),
		Monthly:    analysis.MonthlyActivity(ctx, doc, fy),
	}, nil
}

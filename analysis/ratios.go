// Package analysis derives analytical products from a finished SIE
// document: financial ratios, a Sankey-ready flow graph, and a monthly
// activity series. Everything here is a pure function of the document and
// a fiscal year; the same inputs always produce the same outputs, and the
// calculators are safe to run concurrently over a shared document.
package analysis

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/telemetry"
)

// Ratios is the fixed-shape ratio report for one fiscal year. The two
// ratio fields are nil when their denominator is zero, which marshals to
// JSON null rather than failing the whole report.
type Ratios struct {
	Liquidity          *decimal.Decimal `json:"liquidity_ratio"`
	Solvency           *decimal.Decimal `json:"solvency_ratio"`
	CurrentAssets      decimal.Decimal  `json:"current_assets"`
	CurrentLiabilities decimal.Decimal  `json:"current_liabilities"`
	TotalAssets        decimal.Decimal  `json:"total_assets"`
	TotalLiabilities   decimal.Decimal  `json:"total_liabilities"`
	Equity             decimal.Decimal  `json:"equity"`
}

// CalculateRatios computes liquidity and solvency figures from the closing
// balances of one fiscal year.
//
// Balances follow the SIE sign convention: debit positive. Liability and
// equity balances therefore arrive negative, and the aggregates report
// their absolute values so a healthy company shows positive figures.
func CalculateRatios(ctx context.Context, doc *document.Document, fy document.FiscalYear) Ratios {
	timer := telemetry.StartTimer(ctx, "analysis.ratios")
	defer timer.End()

	var currentAssets, totalAssets, currentLiabilities, totalLiabilities, equity decimal.Decimal

	for code, acc := range doc.Accounts {
		closing, ok := doc.ClosingBalance(code, fy.Index)
		if !ok {
			continue
		}

		switch acc.Class {
		case document.ClassCurrentAsset:
			currentAssets = currentAssets.Add(closing)
			totalAssets = totalAssets.Add(closing)
		case document.ClassFixedAsset:
			totalAssets = totalAssets.Add(closing)
		case document.ClassCurrentLiability:
			currentLiabilities = currentLiabilities.Add(closing)
			totalLiabilities = totalLiabilities.Add(closing)
		case document.ClassNonCurrentLiability:
			totalLiabilities = totalLiabilities.Add(closing)
		case document.ClassEquity:
			equity = equity.Add(closing)
		}
	}

	r := Ratios{
		CurrentAssets:      currentAssets,
		CurrentLiabilities: currentLiabilities.Abs(),
		TotalAssets:        totalAssets,
		TotalLiabilities:   totalLiabilities.Abs(),
		Equity:             equity.Abs(),
	}

	if !r.CurrentLiabilities.IsZero() {
		liquidity := r.CurrentAssets.Div(r.CurrentLiabilities)
		r.Liquidity = &liquidity
	}
	if !r.TotalAssets.IsZero() {
		solvency := r.Equity.Div(r.TotalAssets)
		r.Solvency = &solvency
	}

	return r
}

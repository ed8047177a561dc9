package analysis

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/telemetry"
)

// MonthlyBucket is one month of ledger activity: how many verifications
// were booked and the debit-side turnover they moved. The signed sum of a
// balanced verification is zero by construction, so turnover is the useful
// magnitude for a time series.
type MonthlyBucket struct {
	Month  string          `json:"month"` // YYYY-MM
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyActivity groups a fiscal year's verifications by calendar month.
// The series spans every month of the year, including months with zero
// activity, so time axes stay contiguous.
func MonthlyActivity(ctx context.Context, doc *document.Document, fy document.FiscalYear) []MonthlyBucket {
	timer := telemetry.StartTimer(ctx, "analysis.monthly")
	defer timer.End()

	type bucket struct {
		count  int
		amount decimal.Decimal
	}
	byMonth := make(map[string]*bucket)

	// Walk first-of-month cursors so AddDate cannot skip a short month.
	var months []string
	start := time.Date(fy.Start.Year(), fy.Start.Month(), 1, 0, 0, 0, 0, fy.Start.Location())
	for cursor := start; !cursor.After(fy.End); cursor = cursor.AddDate(0, 1, 0) {
		key := cursor.Format("2006-01")
		months = append(months, key)
		byMonth[key] = &bucket{amount: decimal.Zero}
	}

	for _, v := range doc.VerificationsIn(fy) {
		key := v.Date.Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			continue
		}
		b.count++
		for _, line := range v.Lines {
			if line.Kind != document.LineNormal {
				continue
			}
			if line.Amount.IsPositive() {
				b.amount = b.amount.Add(line.Amount)
			}
		}
	}

	series := make([]MonthlyBucket, 0, len(months))
	for _, key := range months {
		b := byMonth[key]
		series = append(series, MonthlyBucket{Month: key, Count: b.count, Amount: b.amount})
	}
	return series
}

// Package document assembles SIE records into a coherent, immutable
// accounting document: company metadata, fiscal years, the chart of
// accounts, opening/closing balances, and the verification ledger.
//
// A Document is owned by the builder during construction and must be
// treated as read-only afterwards. All downstream calculators are pure
// functions of the finished Document, so they may run concurrently over a
// shared instance without synchronization.
package document

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalYear is one #RAR declaration. Index 0 is the current year, -1 the
// previous one, and so on backwards.
type FiscalYear struct {
	Index int
	Start time.Time
	End   time.Time
}

// Contains reports whether the date falls within the fiscal year.
func (fy FiscalYear) Contains(date time.Time) bool {
	return !date.Before(fy.Start) && !date.After(fy.End)
}

// BalanceKey addresses one balance figure: an account within a fiscal year.
type BalanceKey struct {
	Account string
	Year    int // FiscalYear.Index
}

// LineKind distinguishes regular transaction lines from correction lines.
type LineKind int

const (
	LineNormal  LineKind = iota // #TRANS
	LineAdded                   // #RTRANS
	LineRemoved                 // #BTRANS
)

// TransactionLine is one row of a verification: a signed amount posted to
// an account. Debit is positive, credit negative.
type TransactionLine struct {
	Account    string
	Amount     decimal.Decimal
	Date       time.Time // Defaults to the verification date
	Text       string    // Optional line-level text override
	Dimensions string    // Raw object list from the record, if any
	Kind       LineKind
}

// Verification is a journal entry: a dated, described set of transaction
// lines that should sum to zero.
type Verification struct {
	Series      string
	ID          string
	Date        time.Time
	Description string
	RegDate     time.Time // Registration date, when the file carries one
	Lines       []TransactionLine

	// Warnings collects non-fatal findings for this verification, such as
	// a non-zero line sum.
	Warnings []error
}

// Sum returns the signed sum of the verification's regular lines.
// Correction lines (#RTRANS/#BTRANS) are audit trail and excluded.
func (v *Verification) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range v.Lines {
		if line.Kind != LineNormal {
			continue
		}
		sum = sum.Add(line.Amount)
	}
	return sum
}

// Balanced reports whether the verification's lines sum to zero within the
// builder's rounding tolerance.
func (v *Verification) Balanced() bool {
	return v.Sum().Abs().LessThanOrEqual(balanceTolerance)
}

// Document is the aggregate root produced by Build.
type Document struct {
	// Company and file metadata
	CompanyName    string
	OrgNumber      string
	Address        string
	Program        string
	ProgramVersion string
	GeneratedAt    time.Time
	GeneratedBy    string
	SIEType        string
	ChartType      string
	Currency       string

	// FiscalYears in file order. At least one is required.
	FiscalYears []FiscalYear

	// Accounts maps account code to its declaration.
	Accounts map[string]*Account

	// Opening (#IB), closing (#UB), and result (#RES) balances.
	Openings map[BalanceKey]decimal.Decimal
	Closings map[BalanceKey]decimal.Decimal
	Results  map[BalanceKey]decimal.Decimal

	// Verifications in file order.
	Verifications []*Verification

	// Warnings collects the non-fatal findings of the whole build:
	// unknown records, skipped lines, unbalanced verifications.
	Warnings []error
}

// FiscalYear returns the fiscal year with the given index.
func (d *Document) FiscalYear(index int) (FiscalYear, bool) {
	for _, fy := range d.FiscalYears {
		if fy.Index == index {
			return fy, true
		}
	}
	return FiscalYear{}, false
}

// CurrentFiscalYear returns the year with index 0 when present, otherwise
// the first declared year.
func (d *Document) CurrentFiscalYear() FiscalYear {
	if fy, ok := d.FiscalYear(0); ok {
		return fy
	}
	return d.FiscalYears[0]
}

// ClosingBalance returns the #UB figure for an account in a fiscal year.
func (d *Document) ClosingBalance(account string, year int) (decimal.Decimal, bool) {
	amt, ok := d.Closings[BalanceKey{Account: account, Year: year}]
	return amt, ok
}

// OpeningBalance returns the #IB figure for an account in a fiscal year.
func (d *Document) OpeningBalance(account string, year int) (decimal.Decimal, bool) {
	amt, ok := d.Openings[BalanceKey{Account: account, Year: year}]
	return amt, ok
}

// VerificationsIn returns the verifications dated within the fiscal year,
// preserving file order.
func (d *Document) VerificationsIn(fy FiscalYear) []*Verification {
	var out []*Verification
	for _, v := range d.Verifications {
		if fy.Contains(v.Date) {
			out = append(out, v)
		}
	}
	return out
}

// NetResult returns the period's net result for a fiscal year, computed
// from income-statement activity in the verification ledger: revenue
// credits minus expense debits.
func (d *Document) NetResult(fy FiscalYear) decimal.Decimal {
	net := decimal.Zero
	for _, v := range d.VerificationsIn(fy) {
		for _, line := range v.Lines {
			if line.Kind != LineNormal {
				continue
			}
			acc, ok := d.Accounts[line.Account]
			if !ok || acc.Class.IsBalanceSheet() || acc.Class == ClassUnknown {
				continue
			}
			// P&L lines: credit (negative) grows the result.
			net = net.Sub(line.Amount)
		}
	}
	return net
}

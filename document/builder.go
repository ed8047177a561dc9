package document

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sieflow/sieflow/sie"
	"github.com/sieflow/sieflow/telemetry"
)

// balanceTolerance is the rounding slack allowed when checking that a
// verification's lines sum to zero. One öre.
var balanceTolerance = decimal.NewFromFloat(0.01)

// balanceSet identifies which balance map a queued record targets.
type balanceSet int

const (
	setOpening balanceSet = iota
	setClosing
	setResult
)

// pendingBalance is a balance record whose account or fiscal year has not
// been declared yet. SIE files do not strictly order their sections, so
// these are queued and resolved once the dependency appears.
type pendingBalance struct {
	set     balanceSet
	year    int
	account string
	amount  decimal.Decimal
	line    int
}

// pendingType is a #KTYP or #SRU seen before its #KONTO.
type pendingType struct {
	account string
	letter  string // #KTYP letter, empty for #SRU
	sru     string
	line    int
}

// Builder assembles a record stream into a Document in a single forward
// pass. A Builder is single-use.
type Builder struct {
	doc *Document

	pendingBalances []pendingBalance
	pendingTypes    []pendingType

	// current is the verification opened by the last #VER, receiving
	// transaction lines until its block closes.
	current *Verification
	inBlock bool
}

// NewBuilder returns a builder with an empty document.
func NewBuilder() *Builder {
	return &Builder{
		doc: &Document{
			Accounts: make(map[string]*Account),
			Openings: make(map[BalanceKey]decimal.Decimal),
			Closings: make(map[BalanceKey]decimal.Decimal),
			Results:  make(map[BalanceKey]decimal.Decimal),
		},
	}
}

// Build reads raw SIE content and assembles the finished document.
// It fails with *sie.DecodeError, *UnknownAccountError, or
// *MalformedDocumentError; everything recoverable lands in
// Document.Warnings instead.
func Build(ctx context.Context, raw []byte) (*Document, error) {
	r, err := sie.NewReader(raw)
	if err != nil {
		return nil, err
	}
	return NewBuilder().Run(ctx, r)
}

// Run consumes the reader and returns the finished document.
func (b *Builder) Run(ctx context.Context, r *sie.Reader) (*Document, error) {
	timer := telemetry.StartTimer(ctx, "document.build")
	defer timer.End()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line, scoped to that line only.
			b.warn(err)
			continue
		}
		if err := b.process(rec); err != nil {
			return nil, err
		}
	}

	if err := b.finish(timer.Child("document.validate")); err != nil {
		return nil, err
	}
	return b.doc, nil
}

func (b *Builder) warn(err error) {
	b.doc.Warnings = append(b.doc.Warnings, err)
}

// process dispatches one record.
func (b *Builder) process(rec *sie.Record) error {
	switch rec.Kind {
	case sie.CompanyName:
		b.doc.CompanyName = rec.Field(0)
	case sie.OrgNumber:
		b.doc.OrgNumber = rec.Field(0)
	case sie.Address:
		b.doc.Address = rec.Field(0)
	case sie.Program:
		b.doc.Program = rec.Field(0)
		b.doc.ProgramVersion = rec.Field(1)
	case sie.Generated:
		if date, err := sie.ParseDate(rec.Field(0)); err == nil {
			b.doc.GeneratedAt = date
		}
		b.doc.GeneratedBy = rec.Field(1)
	case sie.SIEType:
		b.doc.SIEType = rec.Field(0)
	case sie.ChartType:
		b.doc.ChartType = rec.Field(0)
	case sie.Currency:
		b.doc.Currency = rec.Field(0)

	case sie.FiscalYear:
		b.processFiscalYear(rec)
	case sie.Account:
		b.processAccount(rec)
	case sie.AccountType:
		b.processAccountType(rec)
	case sie.SRU:
		b.processSRU(rec)

	case sie.OpeningBalance:
		b.processBalance(rec, setOpening)
	case sie.ClosingBalance:
		b.processBalance(rec, setClosing)
	case sie.ResultBalance:
		b.processBalance(rec, setResult)

	case sie.Verification:
		b.processVerification(rec)
	case sie.BlockStart:
		b.inBlock = b.current != nil
	case sie.BlockEnd:
		b.closeVerification()
	case sie.Transaction:
		b.processTransaction(rec, LineNormal)
	case sie.AddedTransaction:
		b.processTransaction(rec, LineAdded)
	case sie.RemovedTransaction:
		b.processTransaction(rec, LineRemoved)

	case sie.Flag, sie.Format:
		// Carry no analytical content.

	default:
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
	}
	return nil
}

func (b *Builder) processFiscalYear(rec *sie.Record) {
	index, err := strconv.Atoi(rec.Field(0))
	if err != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}
	start, err1 := sie.ParseDate(rec.Field(1))
	end, err2 := sie.ParseDate(rec.Field(2))
	if err1 != nil || err2 != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}

	b.doc.FiscalYears = append(b.doc.FiscalYears, FiscalYear{Index: index, Start: start, End: end})
	b.resolvePending()
}

func (b *Builder) processAccount(rec *sie.Record) {
	code := rec.Field(0)
	b.doc.Accounts[code] = &Account{
		Code:  code,
		Name:  rec.Field(1),
		Class: ClassifyCode(code),
	}
	b.resolvePending()
}

func (b *Builder) processAccountType(rec *sie.Record) {
	code, letter := rec.Field(0), rec.Field(1)
	if acc, ok := b.doc.Accounts[code]; ok {
		b.applyTypeLetter(acc, letter)
		return
	}
	b.pendingTypes = append(b.pendingTypes, pendingType{account: code, letter: letter, line: rec.Line})
}

func (b *Builder) processSRU(rec *sie.Record) {
	code, sru := rec.Field(0), rec.Field(1)
	if acc, ok := b.doc.Accounts[code]; ok {
		acc.SRU = sru
		return
	}
	b.pendingTypes = append(b.pendingTypes, pendingType{account: code, sru: sru, line: rec.Line})
}

func (b *Builder) applyTypeLetter(acc *Account, letter string) {
	if class, ok := classFromTypeLetter(letter, acc.Code); ok {
		acc.Class = class
	}
}

func (b *Builder) processBalance(rec *sie.Record, set balanceSet) {
	year, err := strconv.Atoi(rec.Field(0))
	if err != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}
	account := rec.Field(1)
	amount, err := sie.ParseAmount(rec.Field(2))
	if err != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}

	pb := pendingBalance{set: set, year: year, account: account, amount: amount, line: rec.Line}
	if !b.applyBalance(pb) {
		b.pendingBalances = append(b.pendingBalances, pb)
	}
}

// applyBalance stores a balance when its account and fiscal year are both
// declared. It reports whether the balance was applied.
func (b *Builder) applyBalance(pb pendingBalance) bool {
	if _, ok := b.doc.Accounts[pb.account]; !ok {
		return false
	}
	if _, ok := b.doc.FiscalYear(pb.year); !ok {
		return false
	}

	key := BalanceKey{Account: pb.account, Year: pb.year}
	switch pb.set {
	case setOpening:
		b.doc.Openings[key] = pb.amount
	case setClosing:
		b.doc.Closings[key] = pb.amount
	case setResult:
		b.doc.Results[key] = pb.amount
	}
	return true
}

// resolvePending retries queued balances and type records after a new
// account or fiscal year declaration.
func (b *Builder) resolvePending() {
	remaining := b.pendingBalances[:0]
	for _, pb := range b.pendingBalances {
		if !b.applyBalance(pb) {
			remaining = append(remaining, pb)
		}
	}
	b.pendingBalances = remaining

	remainingTypes := b.pendingTypes[:0]
	for _, pt := range b.pendingTypes {
		acc, ok := b.doc.Accounts[pt.account]
		if !ok {
			remainingTypes = append(remainingTypes, pt)
			continue
		}
		if pt.letter != "" {
			b.applyTypeLetter(acc, pt.letter)
		}
		if pt.sru != "" {
			acc.SRU = pt.sru
		}
	}
	b.pendingTypes = remainingTypes
}

func (b *Builder) processVerification(rec *sie.Record) {
	// An unterminated previous block implicitly ends here.
	b.closeVerification()

	date, err := sie.ParseDate(rec.Field(2))
	if err != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}

	v := &Verification{
		Series:      rec.Field(0),
		ID:          rec.Field(1),
		Date:        date,
		Description: rec.Field(3),
	}
	if regDate, err := sie.ParseDate(rec.Field(4)); err == nil {
		v.RegDate = regDate
	}

	b.doc.Verifications = append(b.doc.Verifications, v)
	b.current = v
}

func (b *Builder) closeVerification() {
	b.current = nil
	b.inBlock = false
}

func (b *Builder) processTransaction(rec *sie.Record, kind LineKind) {
	// Transaction lines are only valid inside a verification's { } block.
	if b.current == nil || !b.inBlock {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}

	// The second field is the dimension object list when present; writers
	// that omit it put the amount there instead.
	account := rec.Field(0)
	dims := ""
	amountIdx := 1
	if _, err := sie.ParseAmount(rec.Field(1)); err != nil {
		dims = rec.Field(1)
		amountIdx = 2
	}

	amount, err := sie.ParseAmount(rec.Field(amountIdx))
	if err != nil {
		b.warn(&UnknownRecordWarning{Line: rec.Line, Tag: rec.Tag})
		return
	}

	line := TransactionLine{
		Account:    account,
		Amount:     amount,
		Date:       b.current.Date,
		Dimensions: dims,
		Kind:       kind,
	}
	if date, err := sie.ParseDate(rec.Field(amountIdx + 1)); err == nil {
		line.Date = date
	}
	line.Text = rec.Field(amountIdx + 2)

	b.current.Lines = append(b.current.Lines, line)
}

// finish runs the end-of-pass validation: required sections, unresolved
// references, and verification balance checks.
func (b *Builder) finish(timer telemetry.Timer) error {
	defer timer.End()

	doc := b.doc

	if doc.CompanyName == "" {
		return &MalformedDocumentError{Missing: "#FNAMN"}
	}
	if len(doc.FiscalYears) == 0 {
		return &MalformedDocumentError{Missing: "#RAR"}
	}

	// Unresolved queued records mean the file is not self-consistent.
	if len(b.pendingBalances) > 0 {
		pb := b.pendingBalances[0]
		if _, ok := doc.Accounts[pb.account]; !ok {
			return &UnknownAccountError{Code: pb.account, Line: pb.line}
		}
		return &MalformedDocumentError{
			Missing: "#RAR",
			Reason:  fmt.Sprintf("line %d: balance references undefined fiscal year %d", pb.line, pb.year),
		}
	}
	if len(b.pendingTypes) > 0 {
		pt := b.pendingTypes[0]
		return &UnknownAccountError{Code: pt.account, Line: pt.line}
	}

	// Every transaction line must reference a declared account.
	for _, v := range doc.Verifications {
		for _, line := range v.Lines {
			if _, ok := doc.Accounts[line.Account]; !ok {
				return &UnknownAccountError{Code: line.Account}
			}
		}
	}

	// Balance checks degrade to warnings; source data may round.
	for _, v := range doc.Verifications {
		if sum := v.Sum(); sum.Abs().GreaterThan(balanceTolerance) {
			warning := &UnbalancedVerificationWarning{
				Series:   v.Series,
				ID:       v.ID,
				Date:     v.Date,
				Residual: sum,
			}
			v.Warnings = append(v.Warnings, warning)
			doc.Warnings = append(doc.Warnings, warning)
		}
	}

	return nil
}

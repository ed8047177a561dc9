package document

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fatal errors make the document untrustworthy and abort construction.
// Warnings are recorded on the document (and where applicable on the
// verification) so partial analysis stays possible and visible.

// UnknownAccountError is returned when a transaction line or balance record
// references an account that is never declared. The file is not
// self-consistent, so construction fails.
type UnknownAccountError struct {
	Code string
	Line int // Line of the referencing record, when known
}

func (e *UnknownAccountError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: reference to undeclared account %q", e.Line, e.Code)
	}
	return fmt.Sprintf("reference to undeclared account %q", e.Code)
}

// MalformedDocumentError is returned when a required top-level section is
// missing or inconsistent.
type MalformedDocumentError struct {
	Missing string // The absent or broken section, e.g. "#FNAMN"
	Reason  string
}

func (e *MalformedDocumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed document: %s: %s", e.Missing, e.Reason)
	}
	return fmt.Sprintf("malformed document: required section %s is missing", e.Missing)
}

// UnknownRecordWarning records a line whose tag is outside the known
// grammar. The record is skipped, not fatal.
type UnknownRecordWarning struct {
	Line int
	Tag  string
}

func (e *UnknownRecordWarning) Error() string {
	return fmt.Sprintf("line %d: unknown record %s skipped", e.Line, e.Tag)
}

// UnbalancedVerificationWarning records a verification whose transaction
// lines do not sum to zero within tolerance. The verification is kept;
// source data may legitimately round.
type UnbalancedVerificationWarning struct {
	Series   string
	ID       string
	Date     time.Time
	Residual decimal.Decimal
}

func (e *UnbalancedVerificationWarning) Error() string {
	return fmt.Sprintf("verification %s %s (%s) does not balance: residual %s",
		e.Series, e.ID, e.Date.Format("2006-01-02"), e.Residual)
}

package folio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrSkipRow is returned by layouts for rows that are structural (headers,
// totals, action buttons) rather than positions; the parsing engine drops
// them without a warning.
var ErrSkipRow = errors.New("not a position row")

// ParseError reports scraped text that could not be converted into a
// required field value. Rows failing with a ParseError are logged and
// dropped; the rest of the table is still parsed.
type ParseError struct {
	Field string // field or cell being parsed, may be empty
	Text  string // offending text, may be empty
	Err   error  // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	msg := "cannot parse"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" from %q", e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReconciliationError reports parsed holdings whose totals diverge from the
// totals reported on the same page beyond tolerance. It is always fatal for
// that broker's scrape: the data cannot be trusted.
type ReconciliationError struct {
	Metric   string
	Computed decimal.Decimal
	Reported decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s mismatch: holdings total %s vs page-reported %s",
		e.Metric, e.Computed.StringFixed(2), e.Reported.StringFixed(2))
}

// StructuralError reports an expected table, row or section missing from a
// page, usually meaning the broker changed its markup. Fatal for that
// broker's scrape.
type StructuralError struct {
	What string
	Err  error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return e.What + ": " + e.Err.Error()
	}
	return e.What + " not found"
}

func (e *StructuralError) Unwrap() error { return e.Err }

// FieldError stamps the field name onto a ParseError bubbling up from the
// normalizer, so row-level warnings name the cell that failed.
func FieldError(field string, err error) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Field = field
	}
	return err
}

package folio

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one holdings row handed over by the browser collaborator as named
// cell texts, extracted from a live DOM by script evaluation. It is the
// second input shape next to rendered HTML, for pages whose grid only exists
// in the running application.
type Row map[string]string

// DecodeRows decodes the JSON array produced by the collaborator's
// extraction script.
func DecodeRows(data []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &StructuralError{What: "row records", Err: err}
	}
	return rows, nil
}

// Text returns the trimmed text of the named field, "" when absent.
func (r Row) Text(key string) string { return strings.TrimSpace(r[key]) }

// Amount parses the named field as a required decimal amount.
func (r Row) Amount(key string) (decimal.Decimal, error) {
	v := r.Text(key)
	if v == "" {
		return decimal.Zero, &ParseError{Field: key, Err: errors.New("missing value")}
	}
	d, err := ParseAmount(v)
	if err != nil {
		return decimal.Zero, FieldError(key, err)
	}
	return d, nil
}

// Percent parses the named field as a required percentage fraction.
func (r Row) Percent(key string) (decimal.Decimal, error) {
	v := r.Text(key)
	if v == "" {
		return decimal.Zero, &ParseError{Field: key, Err: errors.New("missing value")}
	}
	d, err := ParsePercent(v)
	if err != nil {
		return decimal.Zero, FieldError(key, err)
	}
	return d, nil
}

// OptionalAmount parses the named field, treating a blank cell as zero
// (a legitimately empty cell, e.g. no day change on a non-trading day).
// Malformed text also yields zero, with a logged warning.
func (r Row) OptionalAmount(broker, key string) decimal.Decimal {
	v := r.Text(key)
	if v == "" {
		return decimal.Zero
	}
	d, err := ParseAmount(v)
	if err != nil {
		log.Printf("[%s] defaulting %s to 0: %v", broker, key, err)
		return decimal.Zero
	}
	return d
}

// OptionalPercent is OptionalAmount for percentage fields.
func (r Row) OptionalPercent(broker, key string) decimal.Decimal {
	v := r.Text(key)
	if v == "" {
		return decimal.Zero
	}
	d, err := ParsePercent(v)
	if err != nil {
		log.Printf("[%s] defaulting %s to 0: %v", broker, key, err)
		return decimal.Zero
	}
	return d
}

// RowLayout is the field-map counterpart of TableLayout, for brokers whose
// rows are read from the live DOM rather than from an HTML document.
type RowLayout interface {
	Broker() string
	IsCashRow(r Row) bool
	ParseCashRow(r Row) (Holding, error)
	ParseRow(r Row) (Holding, error)
	ReportedTotals(rows []Row) (Totals, error)
}

// ParseHoldingsRows parses one broker's DOM-extracted row records with the
// same engine semantics as ParseHoldingsPage: cash precedence, per-row error
// isolation, consolidation, then the totals check.
func ParseHoldingsRows(rows []Row, layout RowLayout) ([]Holding, error) {
	var parsed []Holding
	for _, row := range rows {
		var h Holding
		var err error
		if layout.IsCashRow(row) {
			h, err = layout.ParseCashRow(row)
		} else {
			h, err = layout.ParseRow(row)
		}
		if errors.Is(err, ErrSkipRow) {
			continue
		}
		if err != nil {
			log.Printf("[%s] skipping row: %v", layout.Broker(), err)
			continue
		}
		parsed = append(parsed, h)
	}

	holdings := Consolidate(parsed)

	reported, err := layout.ReportedTotals(rows)
	if err != nil {
		return nil, err
	}
	if err := CheckTotals(holdings, reported); err != nil {
		return nil, err
	}
	return holdings, nil
}

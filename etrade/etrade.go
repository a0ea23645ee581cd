// Package etrade parses the E*TRADE positions grid.
//
// The grid is rendered by a client-side application, so there is no HTML
// document worth fetching. The browser collaborator evaluates an extraction
// script against the live DOM and hands over one JSON field map per row;
// this package turns that dump into holdings.
package etrade

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
)

// Name is the broker name recorded on every holding and session.
const Name = "etrade"

// nonHoldingLabels are the action shortcuts the grid renders as rows among
// the positions.
var nonHoldingLabels = map[string]bool{
	"transfer money": true,
	"add cash":       true,
	"withdraw":       true,
}

// Load parses a row dump file written by the extraction script.
func Load(path string) ([]folio.Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &folio.StructuralError{What: "etrade row dump", Err: err}
	}
	return ParseJSON(data)
}

// ParseJSON extracts the consolidated holdings from a JSON array of row
// field maps.
func ParseJSON(data []byte) ([]folio.Holding, error) {
	rows, err := folio.DecodeRows(data)
	if err != nil {
		return nil, err
	}
	return folio.ParseHoldingsRows(rows, Layout{})
}

// Layout maps the grid's field names for the shared row-parsing engine.
// symbol, quantity, last_price and value are required; the remaining fields
// default to zero when the account hides their columns.
type Layout struct{}

func (Layout) Broker() string { return Name }

func (Layout) IsCashRow(r folio.Row) bool {
	return strings.EqualFold(r.Text("symbol"), "Cash")
}

func (Layout) ParseCashRow(r folio.Row) (folio.Holding, error) {
	amount, err := r.Amount("value")
	if err != nil {
		return folio.Holding{}, err
	}
	return folio.Cash(Name, amount), nil
}

func (Layout) ParseRow(r folio.Row) (folio.Holding, error) {
	symbol := r.Text("symbol")
	if symbol == "" || strings.EqualFold(symbol, "Total") {
		return folio.Holding{}, folio.ErrSkipRow
	}
	if nonHoldingLabels[strings.ToLower(symbol)] {
		return folio.Holding{}, folio.ErrSkipRow
	}

	quantity, err := r.Amount("quantity")
	if err != nil {
		return folio.Holding{}, err
	}
	price, err := r.Amount("last_price")
	if err != nil {
		return folio.Holding{}, err
	}
	value, err := r.Amount("value")
	if err != nil {
		return folio.Holding{}, err
	}

	description := r.Text("description")
	if description == "" {
		description = symbol
	}

	return folio.Holding{
		Symbol:                    symbol,
		Description:               description,
		Quantity:                  quantity,
		Price:                     price,
		UnitCost:                  r.OptionalAmount(Name, "cost_per_share"),
		CostBasis:                 r.OptionalAmount(Name, "total_cost"),
		CurrentValue:              value,
		DayChangeDollars:          r.OptionalAmount(Name, "day_gain_dollars"),
		DayChangePercent:          r.OptionalPercent(Name, "day_change_percent"),
		UnrealizedGainLoss:        r.OptionalAmount(Name, "total_gain"),
		UnrealizedGainLossPercent: r.OptionalPercent(Name, "total_gain_percent"),
		Brokers:                   map[string]decimal.Decimal{Name: value},
	}, nil
}

func (Layout) ReportedTotals(rows []folio.Row) (folio.Totals, error) {
	for _, r := range rows {
		if !strings.EqualFold(r.Text("symbol"), "Total") {
			continue
		}
		value, err := r.Amount("value")
		if err != nil {
			return folio.Totals{}, err
		}
		return folio.Totals{
			CurrentValue:       value,
			UnrealizedGainLoss: r.OptionalAmount(Name, "total_gain"),
		}, nil
	}
	return folio.Totals{}, &folio.StructuralError{What: "etrade totals row"}
}

package folio

import (
	"errors"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

// CashSymbol is the reserved symbol for uninvested cash positions.
const CashSymbol = "USD_CASH"

// Holding is one security or cash position at a point in time.
//
// Holdings are immutable value objects: consolidation and percentage
// assignment build new instances rather than mutating in place. Percent
// fields hold fractions (0.015 is 1.5%).
type Holding struct {
	Symbol      string
	Description string

	Quantity     decimal.Decimal
	Price        decimal.Decimal
	UnitCost     decimal.Decimal
	CostBasis    decimal.Decimal
	CurrentValue decimal.Decimal

	DayChangeDollars          decimal.Decimal
	DayChangePercent          decimal.Decimal
	UnrealizedGainLoss        decimal.Decimal
	UnrealizedGainLossPercent decimal.Decimal

	// PortfolioPercentage is the fraction of the whole portfolio value held
	// in this position; it is only assigned by the cross-broker aggregation.
	PortfolioPercentage *decimal.Decimal

	// Brokers maps a broker name to the value that broker contributes to
	// this symbol, so the same symbol held at several brokers keeps its
	// provenance through consolidation.
	Brokers map[string]decimal.Decimal
}

// Cash returns the holding for an uninvested cash or sweep balance.
// Cash is priced at exactly 1.00 per unit, its quantity and cost basis equal
// the dollar amount, and it carries no daily change and no gain or loss.
func Cash(broker string, amount decimal.Decimal) Holding {
	one := decimal.New(100, -2)
	return Holding{
		Symbol:       CashSymbol,
		Description:  "Cash & sweep funds",
		Quantity:     amount,
		Price:        one,
		UnitCost:     one,
		CostBasis:    amount,
		CurrentValue: amount,
		Brokers:      map[string]decimal.Decimal{broker: amount},
	}
}

// IsCash reports whether the holding is an uninvested cash position.
func (h Holding) IsCash() bool { return h.Symbol == CashSymbol }

// WithPercentage returns a copy of h carrying the given portfolio fraction.
func (h Holding) WithPercentage(p decimal.Decimal) Holding {
	h.PortfolioPercentage = &p
	h.Brokers = maps.Clone(h.Brokers)
	return h
}

// LeadingToken returns the first whitespace-separated token of a scraped
// display string. Symbol links often append annotations (option legs,
// footnote markers) after the ticker itself.
func LeadingToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// UnitCost derives the per-share cost from a row's cost basis and quantity.
// The absolute value handles short positions with negative quantities.
func UnitCost(costBasis, quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsZero() {
		return decimal.Zero, &ParseError{Field: "unit cost", Err: errors.New("quantity is zero")}
	}
	return costBasis.Div(quantity).Abs(), nil
}

// DayChangePercent derives the day-change fraction from the day change and
// the current value. The denominator is the prior-day value
// (current value minus the change) so the figure is a true percentage change.
func DayChangePercent(dayChange, currentValue decimal.Decimal) (decimal.Decimal, error) {
	prior := currentValue.Sub(dayChange)
	if prior.IsZero() {
		return decimal.Zero, &ParseError{Field: "day change percent", Err: errors.New("prior-day value is zero")}
	}
	return dayChange.Div(prior), nil
}

package folio

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Consolidate merges holdings that share a symbol (tax lots, several
// accounts, several brokers) into one holding per symbol, sorted by symbol.
//
// Quantities, cost basis, values, day changes and gains are summed; price and
// unit cost become value-weighted averages; the percent figures are
// re-derived from the summed figures. Broker contribution maps are merged by
// summation. The portfolio percentage is summed only when every member
// carries one, otherwise it is left unassigned.
func Consolidate(holdings []Holding) []Holding {
	groups := make(map[string][]Holding)
	for _, h := range holdings {
		groups[h.Symbol] = append(groups[h.Symbol], h)
	}

	symbols := make([]string, 0, len(groups))
	for symbol := range groups {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)

	out := make([]Holding, 0, len(groups))
	for _, symbol := range symbols {
		out = append(out, combine(symbol, groups[symbol]))
	}
	return out
}

func combine(symbol string, group []Holding) Holding {
	base := group[0]

	var quantity, costBasis, value, dayChange, gain, pct decimal.Decimal
	brokers := make(map[string]decimal.Decimal)
	allPct := true
	for _, h := range group {
		quantity = quantity.Add(h.Quantity)
		costBasis = costBasis.Add(h.CostBasis)
		value = value.Add(h.CurrentValue)
		dayChange = dayChange.Add(h.DayChangeDollars)
		gain = gain.Add(h.UnrealizedGainLoss)
		for broker, v := range h.Brokers {
			brokers[broker] = brokers[broker].Add(v)
		}
		if h.PortfolioPercentage == nil {
			allPct = false
		} else {
			pct = pct.Add(*h.PortfolioPercentage)
		}
	}

	var price, unitCost decimal.Decimal
	if !quantity.IsZero() {
		price = value.Div(quantity)
		unitCost = costBasis.Div(quantity)
	}

	c := Holding{
		Symbol:                    symbol,
		Description:               base.Description,
		Quantity:                  quantity,
		Price:                     price,
		UnitCost:                  unitCost,
		CostBasis:                 costBasis,
		CurrentValue:              value,
		DayChangeDollars:          dayChange,
		DayChangePercent:          ratio(dayChange, value.Sub(dayChange)),
		UnrealizedGainLoss:        gain,
		UnrealizedGainLossPercent: ratio(gain, costBasis),
		Brokers:                   brokers,
	}
	if allPct {
		c.PortfolioPercentage = &pct
	}
	return c
}

// ratio returns num/den, or zero when the denominator is zero.
func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

package folio

import "github.com/shopspring/decimal"

// Totals is the totals row a broker page reports for its own holdings table.
type Totals struct {
	CurrentValue       decimal.Decimal
	UnrealizedGainLoss decimal.Decimal
}

// totalsTolerance is the maximum relative divergence between a computed and a
// page-reported total before the scrape is considered untrustworthy.
var totalsTolerance = decimal.New(1, -2)

// CheckTotals re-derives the value and unrealized-gain totals from the parsed
// holdings and compares each against the totals the page itself reports.
// A relative error above 1% on either metric returns a ReconciliationError:
// either the page structure changed or the parsing logic is wrong, and the
// scrape must not be persisted. This runs on every scrape, not only in tests.
func CheckTotals(holdings []Holding, reported Totals) error {
	var value, gain decimal.Decimal
	for _, h := range holdings {
		value = value.Add(h.CurrentValue)
		gain = gain.Add(h.UnrealizedGainLoss)
	}
	if err := checkMetric("current value", value, reported.CurrentValue); err != nil {
		return err
	}
	return checkMetric("unrealized gain/loss", gain, reported.UnrealizedGainLoss)
}

func checkMetric(metric string, computed, reported decimal.Decimal) error {
	diff := computed.Sub(reported).Abs()
	if reported.IsZero() {
		if diff.IsZero() {
			return nil
		}
		return &ReconciliationError{Metric: metric, Computed: computed, Reported: reported}
	}
	if diff.Div(reported.Abs()).GreaterThan(totalsTolerance) {
		return &ReconciliationError{Metric: metric, Computed: computed, Reported: reported}
	}
	return nil
}

package folio

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CrawlerResult is the terminal outcome of one broker's scrape attempt.
type CrawlerResult struct {
	Broker       string
	Success      bool
	Holdings     []Holding // empty on failure
	ErrorMessage string
	Requires2FA  bool
}

// Portfolio is the consolidated snapshot across all brokers on a given day.
type Portfolio struct {
	Date     Date
	Holdings []Holding

	TotalValue                     decimal.Decimal
	TotalCostBasis                 decimal.Decimal
	TotalUnrealizedGainLoss        decimal.Decimal
	TotalUnrealizedGainLossPercent decimal.Decimal
	DayChangeDollars               decimal.Decimal
	DayChangePercent               decimal.Decimal

	// BrokersUpdated lists the brokers whose scrape succeeded and therefore
	// contribute to this snapshot.
	BrokersUpdated []string
}

// BuildPortfolio merges the successful results into one portfolio snapshot
// dated on. Holdings are grouped by symbol across brokers, consolidated with
// the same summation and weighted-average rules as within a broker, and each
// consolidated holding is assigned its fraction of the total value.
//
// A broker that failed contributes nothing and is left out of
// BrokersUpdated; failures never abort the aggregation.
func BuildPortfolio(results []CrawlerResult, on Date) Portfolio {
	var flat []Holding
	var brokers []string
	for _, r := range results {
		if !r.Success {
			continue
		}
		brokers = append(brokers, r.Broker)
		flat = append(flat, r.Holdings...)
	}
	slices.Sort(brokers)

	merged := Consolidate(flat)

	var total decimal.Decimal
	for _, h := range merged {
		total = total.Add(h.CurrentValue)
	}

	holdings := make([]Holding, 0, len(merged))
	for _, h := range merged {
		if total.IsZero() {
			holdings = append(holdings, h)
			continue
		}
		holdings = append(holdings, h.WithPercentage(h.CurrentValue.Div(total)))
	}

	var costBasis, gain, dayChange decimal.Decimal
	for _, h := range holdings {
		costBasis = costBasis.Add(h.CostBasis)
		gain = gain.Add(h.UnrealizedGainLoss)
		dayChange = dayChange.Add(h.DayChangeDollars)
	}

	return Portfolio{
		Date:                           on,
		Holdings:                       holdings,
		TotalValue:                     total,
		TotalCostBasis:                 costBasis,
		TotalUnrealizedGainLoss:        gain,
		TotalUnrealizedGainLossPercent: ratio(gain, costBasis),
		DayChangeDollars:               dayChange,
		DayChangePercent:               ratio(dayChange, total.Sub(dayChange)),
		BrokersUpdated:                 brokers,
	}
}

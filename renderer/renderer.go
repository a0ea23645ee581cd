// Package renderer turns stored snapshots into markdown reports.
package renderer

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
	"github.com/foliocrawl/folio/store"
)

// USD formats a decimal dollar amount for display ("$1,234.56").
func USD(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}

// Percent formats a fraction as a display percentage ("1.50%").
func Percent(d decimal.Decimal) string {
	return d.Shift(2).StringFixed(2) + "%"
}

// SignedUSD is USD with an explicit sign, "-" for zero.
func SignedUSD(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	if d.IsPositive() {
		return "+" + USD(d)
	}
	return USD(d)
}

// HoldingsMarkdown renders one snapshot's holdings as a markdown report.
func HoldingsMarkdown(p folio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holdings on %s", p.Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Symbol", "Quantity", "Price", "Value", "Day", "Gain/Loss", "Weight", "Brokers"},
		Rows:   [][]string{},
	}
	for _, h := range p.Holdings {
		weight := "-"
		if h.PortfolioPercentage != nil {
			weight = Percent(*h.PortfolioPercentage)
		}
		table.Rows = append(table.Rows, []string{
			h.Symbol,
			h.Quantity.String(),
			USD(h.Price),
			USD(h.CurrentValue),
			SignedUSD(h.DayChangeDollars),
			SignedUSD(h.UnrealizedGainLoss),
			weight,
			brokerList(h.Brokers),
		})
	}
	doc.Table(table)

	doc.H2("Summary")
	doc.BulletList(
		fmt.Sprintf("Total value: %s", USD(p.TotalValue)),
		fmt.Sprintf("Cost basis: %s", USD(p.TotalCostBasis)),
		fmt.Sprintf("Unrealized gain/loss: %s (%s)",
			SignedUSD(p.TotalUnrealizedGainLoss), Percent(p.TotalUnrealizedGainLossPercent)),
		fmt.Sprintf("Day change: %s (%s)",
			SignedUSD(p.DayChangeDollars), Percent(p.DayChangePercent)),
		fmt.Sprintf("Brokers: %s", strings.Join(p.BrokersUpdated, ", ")),
	)

	return doc.String()
}

// HistoryMarkdown renders the snapshot history as a markdown table.
func HistoryMarkdown(history []store.HistoryEntry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio history")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Value", "Cost basis", "Gain/Loss"},
		Rows:   [][]string{},
	}
	for _, e := range history {
		table.Rows = append(table.Rows, []string{
			e.Date.String(),
			USD(e.TotalValue),
			USD(e.TotalCostBasis),
			SignedUSD(e.TotalValue.Sub(e.TotalCostBasis)),
		})
	}
	doc.Table(table)

	return doc.String()
}

// ResultsMarkdown renders the outcome of one fetch run, broker by broker.
func ResultsMarkdown(results []folio.CrawlerResult, p folio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Fetch run on %s", p.Date))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Broker", "Status", "Holdings", "Detail"},
		Rows:      [][]string{},
	}
	for _, r := range results {
		status, detail := "ok", ""
		switch {
		case r.Requires2FA:
			status, detail = "login required", "no valid session, run 'folio session' after logging in"
		case !r.Success:
			status, detail = "failed", r.ErrorMessage
		}
		table.Rows = append(table.Rows, []string{
			r.Broker, status, fmt.Sprintf("%d", len(r.Holdings)), detail,
		})
	}
	doc.Table(table)

	doc.PlainText(fmt.Sprintf("Total value %s across %d holdings.",
		USD(p.TotalValue), len(p.Holdings)))

	return doc.String()
}

func brokerList(brokers map[string]decimal.Decimal) string {
	names := make([]string, 0, len(brokers))
	for name := range brokers {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

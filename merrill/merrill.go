// Package merrill scrapes the Merrill Edge holdings-by-account page.
package merrill

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
)

// Name is the broker name recorded on every holding and session.
const Name = "merrill"

var positionsURL = "https://olui2.fs.ml.com/TFPHoldings/HoldingsByAccount.aspx"

// cashTolerance is the maximum quantity-to-value divergence accepted on a
// cash row. Cash is priced at 1.00 so the two must agree to the cent; a
// larger gap means the row is a position whose name merely starts with
// "Cash".
var cashTolerance = decimal.New(1, -2)

// Fetch GETs the holdings page with the captured session headers and parses
// it.
func Fetch(client *http.Client, headers http.Header) ([]folio.Holding, error) {
	html, err := folio.GetPage(client, positionsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch merrill holdings: %w", err)
	}
	return Parse(html)
}

// Parse extracts the consolidated holdings from a rendered holdings page.
func Parse(html string) ([]folio.Holding, error) {
	return folio.ParseHoldingsPage(html, Layout{})
}

// Layout maps the Merrill holdings table for the shared parsing engine.
//
// The first five cells are symbol, description, quantity, price and market
// value. Cost basis, day change and gain/loss columns follow when the page
// is configured to show them; a page without them yields holdings with those
// fields zeroed and the cost basis falling back to the market value.
type Layout struct{}

func (Layout) Broker() string { return Name }

func (Layout) FindTable(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find("table.holdings-table")
	if table.Length() == 0 {
		table = doc.Find("table#holdings")
	}
	if table.Length() == 0 {
		return nil, &folio.StructuralError{What: "merrill holdings table"}
	}
	tbody := table.First().Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, &folio.StructuralError{What: "merrill holdings table body"}
	}
	return tbody, nil
}

func (Layout) Rows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr")
}

func (Layout) IsCashRow(row *goquery.Selection) bool {
	label := folio.CellText(row.Find("td"), 0)
	return strings.EqualFold(label, "Cash") || strings.EqualFold(label, "Money accounts")
}

func (Layout) ParseCashRow(row *goquery.Selection) (folio.Holding, error) {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return folio.Holding{}, &folio.ParseError{Field: "cash row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}
	amount, err := cellAmount(cells, 4, "cash value")
	if err != nil {
		return folio.Holding{}, err
	}
	quantity, err := cellAmount(cells, 2, "cash quantity")
	if err != nil {
		return folio.Holding{}, err
	}
	if quantity.Sub(amount).Abs().GreaterThan(cashTolerance) {
		return folio.Holding{}, &folio.ParseError{
			Field: "cash row",
			Err:   fmt.Errorf("quantity %s does not match value %s", quantity, amount),
		}
	}
	return folio.Cash(Name, amount), nil
}

func (Layout) ParseRow(row *goquery.Selection) (folio.Holding, error) {
	cells := row.Find("td")
	if cells.Length() == 0 || isTotalRow(row) {
		return folio.Holding{}, folio.ErrSkipRow
	}
	if cells.Length() < 5 {
		return folio.Holding{}, &folio.ParseError{Field: "position row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}

	symbol := folio.LeadingToken(folio.CellText(cells, 0))
	if symbol == "" {
		symbol = "UNKNOWN"
	}
	description := folio.CellText(cells, 1)

	quantity, err := cellAmount(cells, 2, "quantity")
	if err != nil {
		return folio.Holding{}, err
	}
	price, err := cellAmount(cells, 3, "price")
	if err != nil {
		return folio.Holding{}, err
	}
	value, err := cellAmount(cells, 4, "market value")
	if err != nil {
		return folio.Holding{}, err
	}

	// Cost basis falls back to the market value when its column is not
	// shown, so the unit cost stays meaningful and the gain reads zero.
	costBasis := optionalAmount(cells, 5, "cost basis")
	if costBasis.IsZero() {
		costBasis = value
	}
	dayChange := optionalAmount(cells, 6, "day change")
	gain := optionalAmount(cells, 7, "unrealized gain/loss")

	unitCost, err := folio.UnitCost(costBasis, quantity)
	if err != nil {
		return folio.Holding{}, err
	}
	var dayPercent decimal.Decimal
	if !dayChange.IsZero() {
		dayPercent, err = folio.DayChangePercent(dayChange, value)
		if err != nil {
			return folio.Holding{}, err
		}
	}
	var gainPercent decimal.Decimal
	if !gain.IsZero() && !costBasis.IsZero() {
		gainPercent = gain.Div(costBasis)
	}

	return folio.Holding{
		Symbol:                    symbol,
		Description:               description,
		Quantity:                  quantity,
		Price:                     price,
		UnitCost:                  unitCost,
		CostBasis:                 costBasis,
		CurrentValue:              value,
		DayChangeDollars:          dayChange,
		DayChangePercent:          dayPercent,
		UnrealizedGainLoss:        gain,
		UnrealizedGainLossPercent: gainPercent,
		Brokers:                   map[string]decimal.Decimal{Name: value},
	}, nil
}

func (Layout) ReportedTotals(doc *goquery.Document) (folio.Totals, error) {
	row := doc.Find("tr.total-row").First()
	if row.Length() == 0 {
		doc.Find("tr").EachWithBreak(func(_ int, r *goquery.Selection) bool {
			if isTotalRow(r) {
				row = r
				return false
			}
			return true
		})
	}
	if row.Length() == 0 {
		return folio.Totals{}, &folio.StructuralError{What: "merrill totals row"}
	}
	cells := row.Find("td")
	if cells.Length() < 5 {
		return folio.Totals{}, &folio.StructuralError{What: "merrill totals row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}
	value, err := cellAmount(cells, 4, "total market value")
	if err != nil {
		return folio.Totals{}, err
	}
	// The gain column is only reported when the page shows it; a page
	// without it reconciles against zero, matching the zeroed holdings.
	gain := optionalAmount(cells, 7, "total unrealized gain/loss")
	return folio.Totals{CurrentValue: value, UnrealizedGainLoss: gain}, nil
}

func isTotalRow(row *goquery.Selection) bool {
	if row.HasClass("total-row") {
		return true
	}
	return strings.EqualFold(folio.CellText(row.Find("td"), 0), "Total")
}

func cellAmount(cells *goquery.Selection, i int, field string) (decimal.Decimal, error) {
	d, err := folio.ParseAmount(folio.CellText(cells, i))
	if err != nil {
		return decimal.Zero, folio.FieldError(field, err)
	}
	return d, nil
}

// optionalAmount reads a cell that is absent or blank on some account
// configurations, defaulting to zero. Malformed text also defaults, with a
// logged warning.
func optionalAmount(cells *goquery.Selection, i int, field string) decimal.Decimal {
	if i >= cells.Length() {
		return decimal.Zero
	}
	text := folio.CellText(cells, i)
	if text == "" {
		return decimal.Zero
	}
	d, err := folio.ParseAmount(text)
	if err != nil {
		log.Printf("[%s] defaulting %s to 0: %v", Name, field, err)
		return decimal.Zero
	}
	return d
}

// Package chase scrapes the positions table of the Chase investment
// dashboard.
package chase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
)

// Name is the broker name recorded on every holding and session.
const Name = "chase"

var positionsURL = "https://secure.chase.com/web/auth/dashboard#/dashboard/oi-portfolio/positions/render;ai=group-cwm-investment-;orderStatus=ALL"

// Fetch GETs the positions page with the captured session headers and parses
// it. Login and 2FA happen outside; the headers must come from a live
// session imported with 'folio session'.
func Fetch(client *http.Client, headers http.Header) ([]folio.Holding, error) {
	html, err := folio.GetPage(client, positionsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch chase positions: %w", err)
	}
	return Parse(html)
}

// Parse extracts the consolidated holdings from a rendered positions page.
func Parse(html string) ([]folio.Holding, error) {
	return folio.ParseHoldingsPage(html, Layout{})
}

// Layout maps the Chase positions table for the shared parsing engine.
//
// Position rows carry a data-testid with the "position-" prefix and ten
// cells: symbol link, description, price, market value, day gain/loss $,
// total gain/loss $, total gain/loss %, quantity, cost basis, actions. The
// price cell nests several values; only its price sub-element is read.
type Layout struct{}

func (Layout) Broker() string { return Name }

func (Layout) FindTable(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find(`table#ssv-table[data-testid="ssv-table"]`)
	if table.Length() == 0 {
		return nil, &folio.StructuralError{What: "chase portfolio table"}
	}
	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, &folio.StructuralError{What: "chase portfolio table body"}
	}
	return tbody, nil
}

func (Layout) Rows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr")
}

func (Layout) IsCashRow(row *goquery.Selection) bool {
	return row.Find(`a[data-testid="cash-and-sweep-link"]`).Length() > 0
}

func (Layout) ParseCashRow(row *goquery.Selection) (folio.Holding, error) {
	cells := row.Find("td")
	if cells.Length() < 9 {
		return folio.Holding{}, &folio.ParseError{Field: "cash row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}
	amount, err := cellAmount(cells, 3, "cash amount")
	if err != nil {
		return folio.Holding{}, err
	}
	return folio.Cash(Name, amount), nil
}

func (Layout) ParseRow(row *goquery.Selection) (folio.Holding, error) {
	id, _ := row.Attr("data-testid")
	if !strings.HasPrefix(id, "position-") || id == "position-totals-row" {
		return folio.Holding{}, folio.ErrSkipRow
	}
	cells := row.Find("td")
	if cells.Length() < 10 {
		return folio.Holding{}, &folio.ParseError{Field: "position row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}

	// The link text of an option position appends the full option
	// description after the ticker.
	symbol := folio.LeadingToken(cells.Eq(0).Find(`a[data-testid^="symbol-position-"]`).First().Text())
	if symbol == "" {
		symbol = "UNKNOWN"
	}
	description := folio.CellText(cells, 1)

	priceDiv := cells.Eq(2).Find(`div[data-testid^="price-position-"]`)
	if priceDiv.Length() == 0 {
		return folio.Holding{}, &folio.ParseError{Field: "price", Err: errors.New("price sub-element missing")}
	}
	price, err := folio.ParseAmount(strings.TrimSpace(priceDiv.First().Text()))
	if err != nil {
		return folio.Holding{}, folio.FieldError("price", err)
	}

	value, err := cellAmount(cells, 3, "market value")
	if err != nil {
		return folio.Holding{}, err
	}
	dayChange, err := cellAmount(cells, 4, "day gain/loss")
	if err != nil {
		return folio.Holding{}, err
	}
	gain, err := cellAmount(cells, 5, "total gain/loss")
	if err != nil {
		return folio.Holding{}, err
	}
	gainPercent, err := folio.ParsePercent(folio.CellText(cells, 6))
	if err != nil {
		return folio.Holding{}, folio.FieldError("total gain/loss percent", err)
	}
	quantity, err := cellAmount(cells, 7, "quantity")
	if err != nil {
		return folio.Holding{}, err
	}
	costBasis, err := cellAmount(cells, 8, "cost basis")
	if err != nil {
		return folio.Holding{}, err
	}

	unitCost, err := folio.UnitCost(costBasis, quantity)
	if err != nil {
		return folio.Holding{}, err
	}
	dayPercent, err := folio.DayChangePercent(dayChange, value)
	if err != nil {
		return folio.Holding{}, err
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
	row := doc.Find(`tr[data-testid="position-totals-row"]`).First()
	if row.Length() == 0 {
		return folio.Totals{}, &folio.StructuralError{What: "chase totals row"}
	}
	cells := row.Find("td")
	if cells.Length() < 7 {
		return folio.Totals{}, &folio.StructuralError{What: "chase totals row", Err: fmt.Errorf("insufficient cells: %d", cells.Length())}
	}
	value, err := cellAmount(cells, 3, "total market value")
	if err != nil {
		return folio.Totals{}, err
	}
	gain, err := cellAmount(cells, 5, "total unrealized gain/loss")
	if err != nil {
		return folio.Totals{}, err
	}
	return folio.Totals{CurrentValue: value, UnrealizedGainLoss: gain}, nil
}

func cellAmount(cells *goquery.Selection, i int, field string) (decimal.Decimal, error) {
	d, err := folio.ParseAmount(folio.CellText(cells, i))
	if err != nil {
		return decimal.Zero, folio.FieldError(field, err)
	}
	return d, nil
}

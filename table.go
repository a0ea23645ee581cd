package folio

import (
	"errors"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableLayout describes how one broker lays out its rendered holdings page.
// A layout only locates elements and maps cell texts to fields; the shared
// engine in ParseHoldingsPage owns row iteration, cash precedence,
// consolidation and the totals check, so broker variants never duplicate
// them.
type TableLayout interface {
	// Broker returns the broker name recorded on every parsed holding.
	Broker() string
	// FindTable locates the holdings table body in the document.
	FindTable(doc *goquery.Document) (*goquery.Selection, error)
	// Rows returns the candidate rows of the table, positions and
	// non-positions alike; ParseRow returns ErrSkipRow for the latter.
	Rows(table *goquery.Selection) *goquery.Selection
	// IsCashRow reports whether the row is a cash/sweep balance row.
	IsCashRow(row *goquery.Selection) bool
	// ParseCashRow extracts the row's cash amount into a cash holding.
	ParseCashRow(row *goquery.Selection) (Holding, error)
	// ParseRow maps one position row's cells into a holding.
	ParseRow(row *goquery.Selection) (Holding, error)
	// ReportedTotals extracts the totals row the page itself reports.
	ReportedTotals(doc *goquery.Document) (Totals, error)
}

// ParseHoldingsPage parses one broker's rendered holdings page.
//
// Cash detection takes precedence over position parsing for each row. Rows
// failing with a ParseError are logged and dropped; a missing table or
// totals row, or totals diverging from the parsed holdings, abort the page.
// The returned holdings are already consolidated by symbol.
func ParseHoldingsPage(html string, layout TableLayout) ([]Holding, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &StructuralError{What: "holdings page", Err: err}
	}
	table, err := layout.FindTable(doc)
	if err != nil {
		return nil, err
	}

	var parsed []Holding
	layout.Rows(table).Each(func(_ int, row *goquery.Selection) {
		var h Holding
		var err error
		if layout.IsCashRow(row) {
			h, err = layout.ParseCashRow(row)
		} else {
			h, err = layout.ParseRow(row)
		}
		if errors.Is(err, ErrSkipRow) {
			return
		}
		if err != nil {
			log.Printf("[%s] skipping row: %v", layout.Broker(), err)
			return
		}
		parsed = append(parsed, h)
	})

	holdings := Consolidate(parsed)

	reported, err := layout.ReportedTotals(doc)
	if err != nil {
		return nil, err
	}
	if err := CheckTotals(holdings, reported); err != nil {
		return nil, err
	}
	return holdings, nil
}

// CellText returns the trimmed text of the i-th cell of a row selection.
func CellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

package etrade

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
)

const rowDump = `[
  {"symbol": "AAPL", "description": "APPLE INC", "last_price": "$175.00",
   "quantity": "10", "value": "$1,750.00", "cost_per_share": "$150.00",
   "total_cost": "$1,500.00", "day_gain_dollars": "$10.00",
   "day_change_percent": "+0.57%", "total_gain": "$250.00",
   "total_gain_percent": "16.67%"},
  {"symbol": "GOOGL", "last_price": "$145.00", "quantity": "5", "value": "$725.00"},
  {"symbol": "Transfer Money"},
  {"symbol": "Add Cash"},
  {"symbol": "BROKEN", "last_price": "$10.00", "quantity": "", "value": "$100.00"},
  {"symbol": "Cash", "value": "$450.00"},
  {"symbol": "Total", "value": "$2,925.00", "total_gain": "$250.00"}
]`

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseJSON(t *testing.T) {
	holdings, err := ParseJSON([]byte(rowDump))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(holdings) != 3 {
		t.Fatalf("ParseJSON() returned %d holdings, want 3", len(holdings))
	}

	aapl := holdings[0]
	if aapl.Symbol != "AAPL" {
		t.Fatalf("holdings[0].Symbol = %q, want AAPL", aapl.Symbol)
	}
	if !aapl.Quantity.Equal(dec("10")) || !aapl.Price.Equal(dec("175.00")) || !aapl.CurrentValue.Equal(dec("1750.00")) {
		t.Errorf("quantity/price/value = %v/%v/%v", aapl.Quantity, aapl.Price, aapl.CurrentValue)
	}
	if !aapl.UnitCost.Equal(dec("150.00")) || !aapl.CostBasis.Equal(dec("1500.00")) {
		t.Errorf("unit cost/cost basis = %v/%v, want 150.00/1500.00", aapl.UnitCost, aapl.CostBasis)
	}
	if !aapl.DayChangePercent.Equal(dec("0.0057")) {
		t.Errorf("day change percent = %v, want 0.0057", aapl.DayChangePercent)
	}
	if !aapl.UnrealizedGainLossPercent.Equal(dec("0.1667")) {
		t.Errorf("gain percent = %v, want 0.1667", aapl.UnrealizedGainLossPercent)
	}
	if got := aapl.Brokers[Name]; !got.Equal(dec("1750.00")) {
		t.Errorf("Brokers[etrade] = %v, want 1750.00", got)
	}

	googl := holdings[1]
	if googl.Symbol != "GOOGL" {
		t.Fatalf("holdings[1].Symbol = %q, want GOOGL", googl.Symbol)
	}
	if googl.Description != "GOOGL" {
		t.Errorf("description = %q, want the symbol as fallback", googl.Description)
	}
	if !googl.CostBasis.IsZero() || !googl.UnrealizedGainLoss.IsZero() {
		t.Error("absent optional fields must read zero")
	}

	cash := holdings[2]
	if !cash.IsCash() || !cash.CurrentValue.Equal(dec("450.00")) {
		t.Errorf("cash holding = %v %v, want USD_CASH at 450.00", cash.Symbol, cash.CurrentValue)
	}
}

func TestParseJSONSkipsActionRowsAndBrokenRows(t *testing.T) {
	holdings, err := ParseJSON([]byte(rowDump))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	for _, h := range holdings {
		switch h.Symbol {
		case "Transfer Money", "Add Cash", "Total":
			t.Errorf("action row %q parsed as a holding", h.Symbol)
		case "BROKEN":
			t.Error("row with a missing required field parsed as a holding")
		}
	}
}

func TestParseJSONMissingTotals(t *testing.T) {
	_, err := ParseJSON([]byte(`[{"symbol": "AAPL", "last_price": "1", "quantity": "1", "value": "1"}]`))
	var serr *folio.StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("ParseJSON() error = %T, want *StructuralError", err)
	}
}

func TestParseJSONTotalsMismatch(t *testing.T) {
	dump := `[
	  {"symbol": "AAPL", "last_price": "$175.00", "quantity": "10", "value": "$1,750.00"},
	  {"symbol": "Total", "value": "$9,999.00"}
	]`
	_, err := ParseJSON([]byte(dump))
	var rerr *folio.ReconciliationError
	if !errors.As(err, &rerr) {
		t.Fatalf("ParseJSON() error = %T, want *ReconciliationError", err)
	}
}

func TestParseJSONBadPayload(t *testing.T) {
	_, err := ParseJSON([]byte(`{"unexpected": "object"}`))
	var serr *folio.StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("ParseJSON() error = %T, want *StructuralError", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	if err := os.WriteFile(path, []byte(rowDump), 0o644); err != nil {
		t.Fatal(err)
	}
	holdings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(holdings) != 3 {
		t.Errorf("Load() returned %d holdings, want 3", len(holdings))
	}

	_, err = Load(filepath.Join(t.TempDir(), "absent.json"))
	var serr *folio.StructuralError
	if !errors.As(err, &serr) {
		t.Errorf("Load() on a missing file error = %T, want *StructuralError", err)
	}
}

package folio

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckTotalsWithinTolerance(t *testing.T) {
	holdings := []Holding{
		lot("chase", "AAPL", "10", "60", "500", "600", "0", "60"),
		lot("chase", "MSFT", "4", "100", "350", "400", "0", "40"),
	}
	// 1000.50 reported vs 1000 computed is a 0.05% divergence
	reported := Totals{CurrentValue: dec("1000.50"), UnrealizedGainLoss: dec("100")}
	if err := CheckTotals(holdings, reported); err != nil {
		t.Errorf("CheckTotals() = %v, want nil", err)
	}
}

func TestCheckTotalsBeyondTolerance(t *testing.T) {
	holdings := []Holding{
		lot("chase", "AAPL", "10", "60", "500", "600", "0", "60"),
		lot("chase", "MSFT", "4", "100", "350", "400", "0", "40"),
	}
	reported := Totals{CurrentValue: dec("1050.00"), UnrealizedGainLoss: dec("100")}

	err := CheckTotals(holdings, reported)
	var rerr *ReconciliationError
	if !errors.As(err, &rerr) {
		t.Fatalf("CheckTotals() = %v, want *ReconciliationError", err)
	}
	if rerr.Metric != "current value" {
		t.Errorf("Metric = %q, want %q", rerr.Metric, "current value")
	}
	if !rerr.Computed.Equal(dec("1000")) || !rerr.Reported.Equal(dec("1050.00")) {
		t.Errorf("Computed/Reported = %v/%v, want 1000/1050.00", rerr.Computed, rerr.Reported)
	}
	if msg := rerr.Error(); !strings.Contains(msg, "1000.00") || !strings.Contains(msg, "1050.00") {
		t.Errorf("Error() = %q, want both figures named", msg)
	}
}

func TestCheckTotalsGainMismatch(t *testing.T) {
	holdings := []Holding{
		lot("chase", "AAPL", "10", "100", "900", "1000", "0", "100"),
	}
	reported := Totals{CurrentValue: dec("1000"), UnrealizedGainLoss: dec("150")}

	err := CheckTotals(holdings, reported)
	var rerr *ReconciliationError
	if !errors.As(err, &rerr) {
		t.Fatalf("CheckTotals() = %v, want *ReconciliationError", err)
	}
	if rerr.Metric != "unrealized gain/loss" {
		t.Errorf("Metric = %q, want %q", rerr.Metric, "unrealized gain/loss")
	}
}

func TestCheckTotalsNegativeReported(t *testing.T) {
	// a portfolio under water reconciles on |reported|
	holdings := []Holding{
		lot("chase", "AAPL", "10", "90", "1000", "900", "0", "-100"),
	}
	reported := Totals{CurrentValue: dec("900"), UnrealizedGainLoss: dec("-100.50")}
	if err := CheckTotals(holdings, reported); err != nil {
		t.Errorf("CheckTotals() = %v, want nil", err)
	}
}

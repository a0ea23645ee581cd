package store

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliocrawl/folio"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "folio.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPortfolio(on folio.Date) folio.Portfolio {
	pct := dec("0.795")
	return folio.Portfolio{
		Date: on,
		Holdings: []folio.Holding{
			{
				Symbol:                    "AAPL",
				Description:               "APPLE INC",
				Quantity:                  dec("10"),
				Price:                     dec("175.00"),
				UnitCost:                  dec("150"),
				CostBasis:                 dec("1500.00"),
				CurrentValue:              dec("1750.00"),
				DayChangeDollars:          dec("10.00"),
				DayChangePercent:          dec("0.0057"),
				UnrealizedGainLoss:        dec("250.00"),
				UnrealizedGainLossPercent: dec("0.1667"),
				PortfolioPercentage:       &pct,
				Brokers: map[string]decimal.Decimal{
					"chase": dec("875.00"), "merrill": dec("875.00"),
				},
			},
			folio.Cash("chase", dec("450.00")),
		},
		TotalValue:                     dec("2200.00"),
		TotalCostBasis:                 dec("1950.00"),
		TotalUnrealizedGainLoss:        dec("250.00"),
		TotalUnrealizedGainLossPercent: dec("0.1282"),
		DayChangeDollars:               dec("10.00"),
		DayChangePercent:               dec("0.0046"),
		BrokersUpdated:                 []string{"chase", "merrill"},
	}
}

func TestSaveAndReadPortfolio(t *testing.T) {
	s := openTestStore(t)
	on := folio.NewDate(2026, 9, 1)

	if err := s.SavePortfolio(testPortfolio(on)); err != nil {
		t.Fatalf("SavePortfolio() error = %v", err)
	}

	got, err := s.Portfolio(on)
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if !got.TotalValue.Equal(dec("2200.00")) {
		t.Errorf("TotalValue = %v, want 2200.00", got.TotalValue)
	}
	if len(got.BrokersUpdated) != 2 || got.BrokersUpdated[0] != "chase" {
		t.Errorf("BrokersUpdated = %v, want [chase merrill]", got.BrokersUpdated)
	}
	if len(got.Holdings) != 2 {
		t.Fatalf("len(Holdings) = %d, want 2", len(got.Holdings))
	}

	// holdings come back most valuable first
	aapl := got.Holdings[0]
	if aapl.Symbol != "AAPL" {
		t.Fatalf("Holdings[0].Symbol = %q, want AAPL", aapl.Symbol)
	}
	if !aapl.CurrentValue.Equal(dec("1750.00")) || !aapl.CostBasis.Equal(dec("1500.00")) {
		t.Errorf("value/cost = %v/%v, want exact figures back", aapl.CurrentValue, aapl.CostBasis)
	}
	if aapl.PortfolioPercentage == nil || !aapl.PortfolioPercentage.Equal(dec("0.795")) {
		t.Errorf("PortfolioPercentage = %v, want 0.795", aapl.PortfolioPercentage)
	}
	if got := aapl.Brokers["chase"]; !got.Equal(dec("875.00")) {
		t.Errorf("Brokers[chase] = %v, want 875.00", got)
	}

	cash := got.Holdings[1]
	if !cash.IsCash() || cash.PortfolioPercentage != nil {
		t.Errorf("Holdings[1] = %v, want USD_CASH without a percentage", cash.Symbol)
	}
}

func TestSavePortfolioReplacesSameDate(t *testing.T) {
	s := openTestStore(t)
	on := folio.NewDate(2026, 9, 1)

	if err := s.SavePortfolio(testPortfolio(on)); err != nil {
		t.Fatal(err)
	}
	// a same-day re-run replaces the snapshot wholesale
	p := testPortfolio(on)
	p.Holdings = p.Holdings[:1]
	p.TotalValue = dec("1750.00")
	if err := s.SavePortfolio(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.Portfolio(on)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Holdings) != 1 || !got.TotalValue.Equal(dec("1750.00")) {
		t.Errorf("Holdings/TotalValue = %d/%v, want 1/1750.00", len(got.Holdings), got.TotalValue)
	}
}

func TestPortfolioNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Portfolio(folio.NewDate(2026, 9, 1))
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Portfolio() error = %v, want ErrNoSnapshot", err)
	}
	_, err = s.LatestDate()
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LatestDate() error = %v, want ErrNoSnapshot", err)
	}
}

func TestLatestDateAndHistory(t *testing.T) {
	s := openTestStore(t)
	first := folio.NewDate(2026, 8, 31)
	second := folio.NewDate(2026, 9, 1)

	if err := s.SavePortfolio(testPortfolio(first)); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePortfolio(testPortfolio(second)); err != nil {
		t.Fatal(err)
	}

	latest, err := s.LatestDate()
	if err != nil {
		t.Fatalf("LatestDate() error = %v", err)
	}
	if latest != second {
		t.Errorf("LatestDate() = %v, want %v", latest, second)
	}

	history, err := s.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("History() returned %d entries, want 2", len(history))
	}
	if history[0].Date != first || history[1].Date != second {
		t.Errorf("History() order = %v, %v, want oldest first", history[0].Date, history[1].Date)
	}
	if !history[0].TotalValue.Equal(dec("2200.00")) {
		t.Errorf("TotalValue = %v, want 2200.00", history[0].TotalValue)
	}
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)

	headers := make(http.Header)
	headers.Set("Cookie", "SESSION=abc123")
	headers.Set("User-Agent", "Mozilla/5.0")

	if err := s.SaveSession("chase", headers, time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := s.Session("chase")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if got.Get("Cookie") != "SESSION=abc123" {
		t.Errorf("Cookie = %q, want SESSION=abc123", got.Get("Cookie"))
	}
	if got.Get("User-Agent") != "Mozilla/5.0" {
		t.Errorf("User-Agent = %q, want Mozilla/5.0", got.Get("User-Agent"))
	}

	if _, err := s.Session("merrill"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session(merrill) error = %v, want ErrNoSession", err)
	}

	if err := s.ClearSession("chase"); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, err := s.Session("chase"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session() after clear error = %v, want ErrNoSession", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	s := openTestStore(t)

	headers := make(http.Header)
	headers.Set("Cookie", "SESSION=stale")
	if err := s.SaveSession("chase", headers, time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Session("chase"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session() on expired session error = %v, want ErrNoSession", err)
	}
}

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders("Cookie: SESSION=abc\nUser-Agent: test\n\nnot a header line\nX-Extra: a:b:c\n")
	if headers.Get("Cookie") != "SESSION=abc" {
		t.Errorf("Cookie = %q, want SESSION=abc", headers.Get("Cookie"))
	}
	if headers.Get("X-Extra") != "a:b:c" {
		t.Errorf("X-Extra = %q, want the value split only on the first colon", headers.Get("X-Extra"))
	}
	if len(headers) != 3 {
		t.Errorf("len(headers) = %d, want 3", len(headers))
	}
}

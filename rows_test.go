package folio

import (
	"errors"
	"testing"
)

func TestDecodeRows(t *testing.T) {
	rows, err := DecodeRows([]byte(`[{"symbol":"AAPL","value":"$1,750.00"},{"symbol":"Cash"}]`))
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("DecodeRows() returned %d rows, want 2", len(rows))
	}
	if got := rows[0].Text("symbol"); got != "AAPL" {
		t.Errorf("Text(symbol) = %q, want AAPL", got)
	}

	_, err = DecodeRows([]byte(`{"not":"an array"}`))
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Errorf("DecodeRows() on bad input error = %T, want *StructuralError", err)
	}
}

func TestRowAmount(t *testing.T) {
	r := Row{"value": " $1,750.00 ", "quantity": "", "price": "n/a"}

	got, err := r.Amount("value")
	if err != nil {
		t.Fatalf("Amount(value) error = %v", err)
	}
	if !got.Equal(dec("1750.00")) {
		t.Errorf("Amount(value) = %v, want 1750.00", got)
	}

	for _, key := range []string{"quantity", "price", "missing"} {
		_, err := r.Amount(key)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Amount(%s) error = %T, want *ParseError", key, err)
		}
		if perr.Field != key {
			t.Errorf("Amount(%s) Field = %q, want %q", key, perr.Field, key)
		}
	}
}

func TestRowOptional(t *testing.T) {
	r := Row{"total_gain": "(42.10)", "day_gain_dollars": "", "total_gain_percent": "garbage"}

	if got := r.OptionalAmount("etrade", "total_gain"); !got.Equal(dec("-42.10")) {
		t.Errorf("OptionalAmount(total_gain) = %v, want -42.10", got)
	}
	// blank and malformed cells both default to zero
	if got := r.OptionalAmount("etrade", "day_gain_dollars"); !got.IsZero() {
		t.Errorf("OptionalAmount(day_gain_dollars) = %v, want 0", got)
	}
	if got := r.OptionalPercent("etrade", "total_gain_percent"); !got.IsZero() {
		t.Errorf("OptionalPercent(total_gain_percent) = %v, want 0", got)
	}
}

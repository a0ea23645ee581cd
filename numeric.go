package folio

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// firstNumber matches the first optionally-signed decimal number in a cell.
// Broker cells routinely concatenate several values into one text node
// ("121.61Loss of -0.51-0.51Loss of -0.42%-0.42%"); only the leading number
// is the one the cell is about.
var firstNumber = regexp.MustCompile(`-?\d+\.?\d*`)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a broker-formatted cell text into a signed decimal.
// It strips currency symbols and thousands separators, treats a
// parenthesized value as negative, and keeps only the first number found.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, &ParseError{Err: errors.New("empty text")}
	}

	negative := false
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		negative = true
		s = strings.NewReplacer("(", "", ")", "").Replace(s)
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)

	m := firstNumber.FindString(s)
	if m == "" {
		return decimal.Zero, &ParseError{Text: text, Err: errors.New("no number found")}
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, &ParseError{Text: text, Err: err}
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParsePercent converts percentage text into a signed fraction
// ("1.5%" -> 0.015). A parenthesized value is negated; the literal prefix
// "Loss of" forces a negative result and "Gain of" a positive one,
// whatever sign the number itself carries.
func ParsePercent(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, &ParseError{Err: errors.New("empty text")}
	}

	sign := 0 // -1 forced negative, +1 forced positive
	switch {
	case strings.Contains(s, "(") && strings.Contains(s, ")"):
		sign = -1
		s = strings.NewReplacer("(", "", ")", "").Replace(s)
	case strings.Contains(s, "Loss of"):
		sign = -1
		s = strings.ReplaceAll(s, "Loss of", "")
	case strings.Contains(s, "Gain of"):
		sign = +1
		s = strings.ReplaceAll(s, "Gain of", "")
	}
	s = strings.NewReplacer("%", "", "+", "").Replace(s)

	m := firstNumber.FindString(s)
	if m == "" {
		return decimal.Zero, &ParseError{Text: text, Err: errors.New("no number found")}
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, &ParseError{Text: text, Err: err}
	}
	d = d.Div(hundred)
	switch sign {
	case -1:
		d = d.Abs().Neg()
	case +1:
		d = d.Abs()
	}
	return d, nil
}

package qif

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a QIF amount into an exact decimal. Newer versions of
// Quicken write thousands separators ("1,000.00"), which are dropped.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty value", ErrMalformedAmount)
	}
	if !isAmountLiteral(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return d, nil
}

// isAmountLiteral allows an optional sign, digits and decimal points. It
// keeps out the exponent forms decimal.NewFromString would accept.
func isAmountLiteral(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != '.' {
			return false
		}
	}
	return true
}

func parseNullAmount(raw string) (decimal.NullDecimal, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

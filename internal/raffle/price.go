package raffle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the decimal exponent of prices. Arithmetic on a
// decimal rescales to the larger exponent, so 1e2000000000 would cost
// gigabytes per comparison.
const maxExponent = 30

var errExponentRange = errors.New("exponent out of range")

// parseDecimal parses s and rejects values whose exponent is outside
// ±maxExponent or that carry more than 2*maxExponent digits
func parseDecimal(s string) (decimal.Decimal, error) {
	if len(s) > 4*maxExponent {
		return decimal.Zero, fmt.Errorf("%w: %d characters", errExponentRange, len(s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	exp := d.Exponent()
	if exp > maxExponent || exp < -maxExponent || d.NumDigits() > 2*maxExponent {
		return decimal.Zero, fmt.Errorf("%w: %s", errExponentRange, s)
	}
	return d, nil
}

// ParseFloorPrice parses a floor price string. ok is false for empty,
// malformed, negative or out of range values.
func ParseFloorPrice(s string) (price decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := parseDecimal(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

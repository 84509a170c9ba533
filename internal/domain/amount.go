package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string in major units (e.g. "12.34") into
// integer minor units using the given exponent (2 for cents).
func ParseAmount(s string, exponent int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	minor := d.Shift(exponent)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, s, exponent)
	}

	if minor.LessThanOrEqual(decimal.Zero) {
		return 0, ErrInvalidAmount
	}

	if minor.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, s)
	}

	return minor.IntPart(), nil
}

// FormatAmount renders minor units as a major-unit decimal string.
func FormatAmount(minor int64, exponent int32) string {
	return decimal.New(minor, -exponent).StringFixed(exponent)
}

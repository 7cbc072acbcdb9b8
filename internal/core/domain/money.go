package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amounts are int64 minor units (cents). RPM is the reward in cents per
// 1,000 verified views.

const viewsPerMille = 1000

var (
	mille      = decimal.NewFromInt(viewsPerMille)
	minorUnits = int32(2)
	maxCents   = decimal.NewFromInt(math.MaxInt64)
)

// Reward computes (auditedViews / 1000) * rpm rounded half-up to the minor
// unit. Inputs are validated by the caller and never negative. A reward
// that does not fit in int64 cents exceeds every possible budget and is
// reported as ErrBudgetExceeded.
func Reward(auditedViews, rpm int64) (int64, error) {
	r := decimal.NewFromInt(auditedViews).
		Mul(decimal.NewFromInt(rpm)).
		Div(mille).
		Round(0)
	if r.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: reward for %d views at %s is out of range",
			ErrBudgetExceeded, auditedViews, FormatAmount(rpm))
	}
	return r.IntPart(), nil
}

// FormatAmount renders cents as a fixed two-decimal string, e.g. 20000 -> "200.00".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -minorUnits).StringFixed(minorUnits)
}

// ParseAmount converts a decimal currency string into cents. More than two
// fractional digits is rejected rather than silently rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidArgument, s)
	}
	cents := d.Shift(minorUnits)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %q has more than %d decimals", ErrInvalidArgument, s, minorUnits)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: amount %q is negative", ErrInvalidArgument, s)
	}
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: amount %q is too large", ErrInvalidArgument, s)
	}
	return cents.IntPart(), nil
}

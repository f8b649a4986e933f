package extractor

import (
	"fmt"
	"math"

	"github.com/a3tai/mcp-order-reader/internal/locale"
)

// priceTolerance is the largest accepted gap between total and quantity × unit price
const priceTolerance = 0.01

// reconcile repairs quantity, unit price and total so that total ≈ qty × unit.
// One missing value is derived from the other two; with two or more missing
// the missing quantity becomes 1 and missing prices 0. The returned note is
// empty when nothing had to change.
func reconcile(qty, unit, total float64) (float64, float64, float64, string) {
	qOK, uOK, tOK := locale.IsPositive(qty), locale.IsPositive(unit), locale.IsPositive(total)

	invalid := 0
	for _, ok := range []bool{qOK, uOK, tOK} {
		if !ok {
			invalid++
		}
	}

	switch invalid {
	case 0:
		if expected := locale.Round(qty*unit, 2); math.Abs(total-qty*unit) >= priceTolerance {
			return qty, unit, expected, fmt.Sprintf(
				"total price %s does not match quantity × unit price; adjusted to %s",
				locale.FormatNumber(total, 2), locale.FormatNumber(expected, 2))
		}
		return qty, unit, total, ""

	case 1:
		switch {
		case !tOK:
			return qty, unit, locale.Round(qty*unit, 2), "total price derived from quantity × unit price"
		case !uOK:
			return qty, roundNonZero(total/qty, 4), total, "unit price derived from total price ÷ quantity"
		default:
			return roundNonZero(total/unit, 2), unit, total, "quantity derived from total price ÷ unit price"
		}
	}

	if !qOK {
		qty = 1
	}
	if !uOK {
		unit = 0
	}
	if !tOK {
		total = 0
	}
	return qty, unit, total, "quantity and prices could not be read; defaulted missing quantity to 1 and prices to 0"
}

// roundNonZero rounds a derived value but keeps the exact quotient when
// rounding would turn a positive value into zero
func roundNonZero(v float64, places int) float64 {
	if r := locale.Round(v, places); r != 0 {
		return r
	}
	return v
}

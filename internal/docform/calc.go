package docform

import (
	"math"
	"strconv"
	"strings"

	"github.com/meridian-erp/meridian/internal/catalog"
)

// Round2 rounds half-up to two decimal places. It is the single rounding
// policy for every derived amount; rounding is applied once per derived value,
// never on intermediates.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return math.Floor(v*100+0.5) / 100
}

// ParseAmount coerces user-entered text into a numeric amount. Thousands
// separators are tolerated. NaN and infinities are rejected like any other
// garbage input.
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// clampNonNegative maps negative and non-finite values to zero for
// calculation. The entered value stays on the line so the validator can flag
// it; only the arithmetic sees the clamped value.
func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// RecomputeLine derives TaxRatePercent, TaxAmount and LineTotal from the
// line's current quantity, unit price and tax code. All other fields pass
// through untouched. The function is pure and idempotent and never fails: an
// unresolvable tax code calculates at a zero rate.
func RecomputeLine(line LineItem, snap *catalog.Snapshot) LineItem {
	base := clampNonNegative(line.Quantity) * clampNonNegative(line.UnitPrice)

	rate := 0.0
	if res, ok := snap.ResolveTax(line.TaxCode); ok {
		rate = res.RatePercent
	}

	line.TaxRatePercent = rate
	line.TaxAmount = Round2(base * rate / 100)
	line.LineTotal = Round2(base) + line.TaxAmount
	return line
}

// Aggregate sums the current line set into document totals. It always walks
// the entire set so the result is a function of current state, not of edit
// history.
//
// GrandTotal is the sum of already-rounded line totals, and each line total
// is round2(base) + taxAmount, so GrandTotal equals ProductSubtotal plus
// TaxTotal by construction rather than by tolerance.
func Aggregate(lines []LineItem) Totals {
	var subtotal, tax, grand float64
	for _, line := range lines {
		base := clampNonNegative(line.Quantity) * clampNonNegative(line.UnitPrice)
		subtotal += Round2(base)
		tax += line.TaxAmount
		grand += line.LineTotal
	}
	return Totals{
		ProductSubtotal: Round2(subtotal),
		TaxTotal:        Round2(tax),
		GrandTotal:      Round2(grand),
	}
}

package docform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/catalog"
)

func testSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot(map[catalog.Kind][]catalog.Entry{
		catalog.KindTaxes: {
			{Code: "GST18", Name: "GST 18%", RatePercent: 18, Active: true},
			{Code: "VAT5", Name: "VAT 5%", RatePercent: 5, Active: true},
			{Code: "OLD10", Name: "Retired 10%", RatePercent: 10, Active: false},
		},
		catalog.KindProducts: {
			{Code: "P-100", Name: "Widget", Active: true},
			{Code: "P-200", Name: "Gadget", Active: true},
		},
		catalog.KindWarehouses: {
			{Code: "WH1", Name: "Main Warehouse", Active: true},
		},
		catalog.KindUOMs: {
			{Code: "PCS", Name: "Pieces", Active: true},
		},
		catalog.KindVendors: {
			{Code: "V001", Name: "Acme Supplies", Active: true},
		},
		catalog.KindCustomers: {
			{Code: "C001", Name: "Globex", Active: true},
		},
	})
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -0.01, Round2(-0.005))
	assert.Equal(t, 100.0, Round2(100.0))
}

func TestParseAmount(t *testing.T) {
	v, ok := ParseAmount(" 1,234.50 ")
	require.True(t, ok)
	assert.Equal(t, 1234.50, v)

	v, ok = ParseAmount("-3")
	require.True(t, ok)
	assert.Equal(t, -3.0, v)

	for _, bad := range []string{"", "   ", "abc", "NaN", "Inf", "1.2.3"} {
		_, ok := ParseAmount(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestRecomputeLineTaxed(t *testing.T) {
	snap := testSnapshot()

	line := RecomputeLine(LineItem{Quantity: 2, UnitPrice: 100.00, TaxCode: "GST18"}, snap)

	assert.InDelta(t, 18.0, line.TaxRatePercent, 0.0001)
	assert.InDelta(t, 36.00, line.TaxAmount, 0.0001)
	assert.InDelta(t, 236.00, line.LineTotal, 0.0001)
}

func TestRecomputeLineBlankTaxCode(t *testing.T) {
	snap := testSnapshot()

	line := RecomputeLine(LineItem{Quantity: 7, UnitPrice: 99.99, TaxCode: ""}, snap)

	assert.Zero(t, line.TaxAmount)
	assert.InDelta(t, 699.93, line.LineTotal, 0.0001)
}

func TestRecomputeLineUnresolvableTaxCodeCalculatesZero(t *testing.T) {
	snap := testSnapshot()

	for _, code := range []string{"NOPE", "OLD10", "gst18"} {
		line := RecomputeLine(LineItem{Quantity: 2, UnitPrice: 100, TaxCode: code}, snap)
		assert.Zero(t, line.TaxAmount, "code %q", code)
		assert.InDelta(t, 200.00, line.LineTotal, 0.0001, "code %q", code)
	}
}

func TestRecomputeLineClampsNegativesForCalculationOnly(t *testing.T) {
	snap := testSnapshot()

	line := RecomputeLine(LineItem{Quantity: -4, UnitPrice: 25, TaxCode: "GST18"}, snap)

	// Entered value survives for display and validation.
	assert.Equal(t, -4.0, line.Quantity)
	assert.Zero(t, line.TaxAmount)
	assert.Zero(t, line.LineTotal)
}

func TestRecomputeLineIdempotent(t *testing.T) {
	snap := testSnapshot()

	lines := []LineItem{
		{Quantity: 2, UnitPrice: 100.00, TaxCode: "GST18"},
		{Quantity: 3, UnitPrice: 33.335, TaxCode: "VAT5"},
		{Quantity: 1, UnitPrice: 0.005, TaxCode: ""},
		{Quantity: -1, UnitPrice: 10, TaxCode: "NOPE"},
	}
	for _, line := range lines {
		once := RecomputeLine(line, snap)
		twice := RecomputeLine(once, snap)
		assert.Equal(t, once, twice)
	}
}

func TestAggregateScenario(t *testing.T) {
	snap := testSnapshot()

	lines := []LineItem{
		RecomputeLine(LineItem{Quantity: 2, UnitPrice: 100.00, TaxCode: "GST18"}, snap),
		RecomputeLine(LineItem{Quantity: 2, UnitPrice: 100.00, TaxCode: "GST18"}, snap),
		RecomputeLine(LineItem{Quantity: 1, UnitPrice: 50.00, TaxCode: ""}, snap),
	}

	totals := Aggregate(lines)
	assert.InDelta(t, 450.00, totals.ProductSubtotal, 0.0001)
	assert.InDelta(t, 72.00, totals.TaxTotal, 0.0001)
	assert.InDelta(t, 522.00, totals.GrandTotal, 0.0001)
}

func TestAggregateGrandTotalEqualsSubtotalPlusTax(t *testing.T) {
	snap := testSnapshot()

	// Prices chosen to produce awkward per-line rounding.
	lines := make([]LineItem, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, RecomputeLine(LineItem{
			Quantity:  float64(i%7) + 0.5,
			UnitPrice: 9.995 + float64(i)*0.013,
			TaxCode:   []string{"GST18", "VAT5", ""}[i%3],
		}, snap))
	}

	totals := Aggregate(lines)
	assert.InDelta(t, totals.ProductSubtotal+totals.TaxTotal, totals.GrandTotal, 0.0001)

	var sumLineTotals float64
	for _, line := range lines {
		sumLineTotals += line.LineTotal
	}
	assert.InDelta(t, Round2(sumLineTotals), totals.GrandTotal, 0.0001)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Equal(t, Totals{}, Aggregate(nil))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12,345.50", FormatAmount(12345.5))
	assert.Equal(t, "0.00", FormatAmount(0))
}

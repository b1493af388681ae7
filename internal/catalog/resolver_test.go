package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture() *Snapshot {
	return NewSnapshot(map[Kind][]Entry{
		KindTaxes: {
			{Code: "GST18", Name: "GST 18%", RatePercent: 18, Active: true},
			{Code: "EXEMPT", Name: "Exempt", RatePercent: 0, Active: true},
			{Code: "OLD10", Name: "Retired", RatePercent: 10, Active: false},
		},
		KindProducts: {
			{Code: "P-100", Name: "Widget", Active: true},
		},
	})
}

func TestResolveTaxBlankCodeIsZeroRate(t *testing.T) {
	snap := snapshotFixture()

	for _, code := range []string{"", "   ", "\t"} {
		res, ok := snap.ResolveTax(code)
		require.True(t, ok, "code %q", code)
		assert.Zero(t, res.RatePercent)
	}
}

func TestResolveTaxActiveEntry(t *testing.T) {
	snap := snapshotFixture()

	res, ok := snap.ResolveTax("GST18")
	require.True(t, ok)
	assert.Equal(t, 18.0, res.RatePercent)

	// A genuinely zero-rated code still resolves.
	res, ok = snap.ResolveTax("EXEMPT")
	require.True(t, ok)
	assert.Zero(t, res.RatePercent)
}

func TestResolveTaxMisses(t *testing.T) {
	snap := snapshotFixture()

	_, ok := snap.ResolveTax("UNKNOWN")
	assert.False(t, ok)

	// Inactive entries never match.
	_, ok = snap.ResolveTax("OLD10")
	assert.False(t, ok)

	// Matching is exact and case sensitive.
	_, ok = snap.ResolveTax("gst18")
	assert.False(t, ok)
}

func TestResolveTaxNilSnapshot(t *testing.T) {
	var snap *Snapshot

	_, ok := snap.ResolveTax("")
	assert.True(t, ok)

	_, ok = snap.ResolveTax("GST18")
	assert.False(t, ok)
}

func TestSnapshotLookup(t *testing.T) {
	snap := snapshotFixture()

	e, ok := snap.Lookup(KindProducts, "P-100")
	require.True(t, ok)
	assert.Equal(t, "Widget", e.Name)

	_, ok = snap.Lookup(KindProducts, "p-100")
	assert.False(t, ok)

	_, ok = snap.Lookup(KindWarehouses, "WH1")
	assert.False(t, ok)
	assert.False(t, snap.Has(KindWarehouses))
	assert.True(t, snap.Has(KindTaxes))
}

package docform

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/catalog"
)

func sourcePO() SourceDocument {
	return SourceDocument{
		Kind: "purchase_order",
		Header: SourceHeader{
			DocNumber:        "PO-2026-000042",
			CounterpartyCode: "V001",
			CounterpartyName: "Acme Supplies",
			CounterpartyRef:  "ACME-REF-9",
			Address:          "12 Dock Road",
			Remarks:          "urgent restock",
			BasedOn:          "PR-2026-000007",
		},
		Lines: []SourceLine{
			{LineID: 1, ProductCode: "P-100", ProductName: "Widget", Quantity: 2, UOM: "PCS", UnitPrice: 100, WarehouseCode: "WH1", TaxCode: "GST18"},
			{LineID: 2, ProductCode: "P-200", ProductName: "Gadget", Quantity: 5, UOM: "PCS", UnitPrice: 40, WarehouseCode: "WH1", TaxCode: "VAT5"},
			{LineID: 3, ProductCode: "P-100", ProductName: "Widget", Quantity: 1, UOM: "PCS", UnitPrice: 50, WarehouseCode: "WH1", TaxCode: ""},
		},
	}
}

func TestDeriveHeaderMapping(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	header, lines, err := Derive(grnType(t), sourcePO(), testSnapshot(), today)
	require.NoError(t, err)

	assert.Equal(t, PendingDocumentNumber, header.DocumentNumber)
	assert.Equal(t, "PO-2026-000042", header.BasedOnDocumentNumber)
	assert.Equal(t, "V001", header.CounterpartyCode)
	assert.Equal(t, "Acme Supplies", header.CounterpartyName)
	assert.Equal(t, "ACME-REF-9", header.CounterpartyRef)
	assert.Equal(t, "12 Dock Road", header.Address)
	assert.Equal(t, "urgent restock", header.Remarks)

	// One hop only: the source's own based-on pointer is never carried over.
	assert.NotEqual(t, "PR-2026-000007", header.BasedOnDocumentNumber)

	require.NotNil(t, header.DocumentDate)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), *header.DocumentDate)
	assert.Nil(t, header.DueDate)

	require.Len(t, lines, 3)
}

func TestDeriveLineMapping(t *testing.T) {
	today := time.Now()

	_, lines, err := Derive(grnType(t), sourcePO(), testSnapshot(), today)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	seen := map[string]bool{}
	for i, line := range lines {
		require.NotEmpty(t, line.ClientID)
		assert.False(t, seen[line.ClientID], "client IDs must be unique")
		seen[line.ClientID] = true

		require.NotNil(t, line.SourceLineRef)
		assert.Equal(t, "PO-2026-000042", line.SourceLineRef.DocNumber)
		assert.Equal(t, int64(i+1), line.SourceLineRef.LineID)
	}

	// Amounts are recomputed against the target snapshot, never copied.
	assert.InDelta(t, 36.00, lines[0].TaxAmount, 0.0001)
	assert.InDelta(t, 236.00, lines[0].LineTotal, 0.0001)
	assert.InDelta(t, 10.00, lines[1].TaxAmount, 0.0001)
	assert.InDelta(t, 210.00, lines[1].LineTotal, 0.0001)
	assert.Zero(t, lines[2].TaxAmount)
	assert.InDelta(t, 50.00, lines[2].LineTotal, 0.0001)
}

func TestDeriveRecomputesWithCurrentRates(t *testing.T) {
	// Same tax code, different rate in the target session's snapshot.
	snap := catalog.NewSnapshot(map[catalog.Kind][]catalog.Entry{
		catalog.KindTaxes: {{Code: "GST18", RatePercent: 20, Active: true}},
	})

	_, lines, err := Derive(grnType(t), sourcePO(), snap, time.Now())
	require.NoError(t, err)

	assert.InDelta(t, 40.00, lines[0].TaxAmount, 0.0001)
	assert.InDelta(t, 240.00, lines[0].LineTotal, 0.0001)
}

func TestDeriveEmptySourceYieldsNoLines(t *testing.T) {
	src := sourcePO()
	src.Lines = nil

	_, lines, err := Derive(grnType(t), src, testSnapshot(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestDeriveKindMismatch(t *testing.T) {
	src := sourcePO()
	src.Kind = "sales_order"

	_, _, err := Derive(grnType(t), src, testSnapshot(), time.Now())
	assert.True(t, errors.Is(err, ErrSourceKindMismatch))

	// Purchase orders derive from nothing at all.
	po, err := DefaultRegistry().Get("purchase_order")
	require.NoError(t, err)
	_, _, err = Derive(po, sourcePO(), testSnapshot(), time.Now())
	assert.True(t, errors.Is(err, ErrSourceKindMismatch))
}

func TestSeedFromSource(t *testing.T) {
	f := NewFormState(grnType(t), testSnapshot())

	require.NoError(t, f.SeedFromSource(sourcePO(), time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, StatusSeeded, f.Status())
	assert.Equal(t, "PO-2026-000042", f.Header().BasedOnDocumentNumber)
	assert.Len(t, f.Lines(), 3)
	assert.InDelta(t, 496.00, f.Totals().GrandTotal, 0.0001)
}

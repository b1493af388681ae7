package docform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	grn, err := r.Get("goods_receipt")
	require.NoError(t, err)
	assert.Equal(t, "purchase_order", grn.DerivesFrom)
	assert.Equal(t, SideVendor, grn.Counterparty)

	arcn, err := r.Get("ar_credit_note")
	require.NoError(t, err)
	assert.Equal(t, "sales_order", arcn.DerivesFrom)
	assert.Equal(t, SideCustomer, arcn.Counterparty)

	_, err = r.Get("timesheet")
	assert.ErrorIs(t, err, ErrUnknownDocType)

	assert.Len(t, r.All(), 5)
}

func TestNewRegistryRejectsBadConfig(t *testing.T) {
	_, err := NewRegistry([]DocType{{Kind: "a", Counterparty: "supplier"}})
	assert.Error(t, err)

	_, err = NewRegistry([]DocType{
		{Kind: "a", Counterparty: SideVendor},
		{Kind: "a", Counterparty: SideVendor},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]DocType{{Kind: "a", Counterparty: SideVendor, DerivesFrom: "ghost"}})
	assert.Error(t, err)
}

func TestLoadRegistryFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctypes.yaml")
	content := `doc_types:
  - kind: purchase_order
    label: Purchase Order
    counterparty: vendor
    primary_date_label: Document Date
    secondary_date_label: Delivery Date
  - kind: goods_receipt
    label: Goods Receipt PO
    counterparty: vendor
    primary_date_label: Posting Date
    secondary_date_label: Delivery Date
    derives_from: purchase_order
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)

	grn, err := r.Get("goods_receipt")
	require.NoError(t, err)
	assert.Equal(t, "Goods Receipt PO", grn.Label)
	assert.Equal(t, "purchase_order", grn.DerivesFrom)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package docform

import (
	"fmt"
	"math"

	"github.com/meridian-erp/meridian/internal/catalog"
)

// ErrorMap collects validation problems keyed by field. Header fields use
// "header.<field>", line fields "lines.<clientID>.<field>", and collection
// level problems plain keys like "lines".
type ErrorMap map[string]string

// Validation messages. Codes stay stable so screens can key translations off
// them.
const (
	MsgRequired       = "required"
	MsgNoLines        = "at least one line is required"
	MsgDateOrder      = "must not be earlier than the document date"
	MsgQuantity       = "must be a finite number greater than zero"
	MsgUnitPrice      = "must be a finite number of at least zero"
	MsgUnknownTaxCode = "tax code has no active catalog entry"
	MsgUnknownLookup  = "has no active catalog entry"
)

// Add records a problem for a field, keeping the first message per key.
func (m ErrorMap) Add(key, msg string) {
	if _, ok := m[key]; !ok {
		m[key] = msg
	}
}

// Empty reports whether validation passed.
func (m ErrorMap) Empty() bool { return len(m) == 0 }

func lineKey(clientID, field string) string {
	return fmt.Sprintf("lines.%s.%s", clientID, field)
}

// Validate runs every structural check over header and lines in one pass so
// the caller can surface all problems at once. It never mutates its inputs:
// derived amounts are left exactly as the calculator produced them, and
// correction happens through normal edits.
func Validate(header DocumentHeader, lines []LineItem, snap *catalog.Snapshot) ErrorMap {
	errs := ErrorMap{}

	if header.CounterpartyCode == "" {
		errs.Add("header.counterparty", MsgRequired)
	}
	if header.DocumentDate == nil {
		errs.Add("header.document_date", MsgRequired)
	}
	if header.DueDate == nil {
		errs.Add("header.due_date", MsgRequired)
	}
	if header.DocumentDate != nil && header.DueDate != nil && header.DueDate.Before(*header.DocumentDate) {
		errs.Add("header.due_date", MsgDateOrder)
	}

	if len(lines) == 0 {
		errs.Add("lines", MsgNoLines)
		return errs
	}

	for _, line := range lines {
		if line.ProductCode == "" {
			errs.Add(lineKey(line.ClientID, "product_code"), MsgRequired)
		} else if snap.Has(catalog.KindProducts) {
			if _, ok := snap.Lookup(catalog.KindProducts, line.ProductCode); !ok {
				errs.Add(lineKey(line.ClientID, "product_code"), MsgUnknownLookup)
			}
		}
		if !isFinite(line.Quantity) || line.Quantity <= 0 {
			errs.Add(lineKey(line.ClientID, "quantity"), MsgQuantity)
		}
		if !isFinite(line.UnitPrice) || line.UnitPrice < 0 {
			errs.Add(lineKey(line.ClientID, "unit_price"), MsgUnitPrice)
		}
		if line.UOM == "" {
			errs.Add(lineKey(line.ClientID, "uom"), MsgRequired)
		}
		if line.WarehouseCode == "" {
			errs.Add(lineKey(line.ClientID, "warehouse_code"), MsgRequired)
		} else if snap.Has(catalog.KindWarehouses) {
			if _, ok := snap.Lookup(catalog.KindWarehouses, line.WarehouseCode); !ok {
				errs.Add(lineKey(line.ClientID, "warehouse_code"), MsgUnknownLookup)
			}
		}
		// Tax is optional; only a non-blank code that resolves to nothing is
		// a problem. The calculator already treated it as zero-rate.
		if _, ok := snap.ResolveTax(line.TaxCode); !ok {
			errs.Add(lineKey(line.ClientID, "tax_code"), MsgUnknownTaxCode)
		}
	}

	return errs
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

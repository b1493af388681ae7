package docform

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian/internal/catalog"
)

// Derive maps a source document into the seed for a new target document.
//
// Header fields that describe the counterparty relationship are copied
// verbatim; BasedOnDocumentNumber records the source's number, never the
// source's own based-on pointer, so traceability chains are exactly one hop.
// The document date defaults to today; the due date is left for the user
// because it represents a new obligation, not an inherited one.
//
// Every copied line gets a fresh client ID and a SourceLineRef. Its tax
// amount and total are recomputed against the target session's snapshot:
// rates may have changed since the source document was entered, so copied
// amounts would be lies.
func Derive(dt DocType, src SourceDocument, snap *catalog.Snapshot, today time.Time) (DocumentHeader, []LineItem, error) {
	if dt.DerivesFrom == "" {
		return DocumentHeader{}, nil, fmt.Errorf("%w: %s does not derive from another document", ErrSourceKindMismatch, dt.Kind)
	}
	if src.Kind != dt.DerivesFrom {
		return DocumentHeader{}, nil, fmt.Errorf("%w: %s derives from %s, got %s", ErrSourceKindMismatch, dt.Kind, dt.DerivesFrom, src.Kind)
	}

	docDate := today.Truncate(24 * time.Hour)
	header := DocumentHeader{
		DocumentNumber:        PendingDocumentNumber,
		CounterpartyCode:      src.Header.CounterpartyCode,
		CounterpartyName:      src.Header.CounterpartyName,
		DocumentDate:          &docDate,
		CounterpartyRef:       src.Header.CounterpartyRef,
		Address:               src.Header.Address,
		Remarks:               src.Header.Remarks,
		BasedOnDocumentNumber: src.Header.DocNumber,
	}

	lines := make([]LineItem, 0, len(src.Lines))
	for _, sl := range src.Lines {
		line := LineItem{
			ClientID: uuid.NewString(),
			SourceLineRef: &SourceLineRef{
				DocNumber: src.Header.DocNumber,
				LineID:    sl.LineID,
			},
			ProductCode:   sl.ProductCode,
			ProductName:   sl.ProductName,
			UOM:           sl.UOM,
			WarehouseCode: sl.WarehouseCode,
			Quantity:      sl.Quantity,
			UnitPrice:     sl.UnitPrice,
			TaxCode:       sl.TaxCode,
		}
		lines = append(lines, RecomputeLine(line, snap))
	}

	return header, lines, nil
}

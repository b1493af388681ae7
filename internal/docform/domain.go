// Package docform implements the document editing engine shared by every
// document-entry screen: line tax/total calculation, document aggregation,
// derivation of a new document from a source document, and the form state
// machine that keeps aggregates consistent under arbitrary edits.
package docform

import (
	"errors"
	"time"
)

// FormStatus is the lifecycle state of an editing session.
type FormStatus string

const (
	StatusEmpty            FormStatus = "EMPTY"
	StatusSeeded           FormStatus = "SEEDED"
	StatusEditing          FormStatus = "EDITING"
	StatusValidating       FormStatus = "VALIDATING"
	StatusSubmitting       FormStatus = "SUBMITTING"
	StatusSubmitted        FormStatus = "SUBMITTED"
	StatusSubmissionFailed FormStatus = "SUBMISSION_FAILED"
)

// PendingDocumentNumber stands in for the document number until the remote
// service assigns one on persist.
const PendingDocumentNumber = "*PENDING*"

// SourceLineRef points a derived line back at the source document line it was
// copied from. Never mutated after derivation.
type SourceLineRef struct {
	DocNumber string `json:"doc_number"`
	LineID    int64  `json:"line_id"`
}

// LineItem is one row of the document being edited.
//
// TaxRatePercent, TaxAmount and LineTotal are derived by RecomputeLine and are
// never settable independently.
type LineItem struct {
	ClientID       string         `json:"client_id"`
	SourceLineRef  *SourceLineRef `json:"source_line_ref,omitempty"`
	ProductCode    string         `json:"product_code"`
	ProductName    string         `json:"product_name"`
	UOM            string         `json:"uom"`
	WarehouseCode  string         `json:"warehouse_code"`
	Quantity       float64        `json:"quantity"`
	UnitPrice      float64        `json:"unit_price"`
	TaxCode        string         `json:"tax_code"`
	TaxRatePercent float64        `json:"tax_rate_percent"`
	TaxAmount      float64        `json:"tax_amount"`
	LineTotal      float64        `json:"line_total"`
}

// DocumentHeader holds the header fields shared by all document kinds. The
// due date doubles as the delivery date for logistics documents; the doc-type
// configuration carries the label.
type DocumentHeader struct {
	DocumentNumber        string     `json:"document_number"`
	CounterpartyCode      string     `json:"counterparty_code"`
	CounterpartyName      string     `json:"counterparty_name"`
	DocumentDate          *time.Time `json:"document_date,omitempty"`
	DueDate               *time.Time `json:"due_date,omitempty"`
	CounterpartyRef       string     `json:"counterparty_ref"`
	Address               string     `json:"address"`
	Remarks               string     `json:"remarks"`
	BasedOnDocumentNumber string     `json:"based_on_document_number,omitempty"`
}

// Totals are the document-level aggregates recomputed from the full line set
// after every mutation.
type Totals struct {
	ProductSubtotal float64 `json:"product_subtotal"`
	TaxTotal        float64 `json:"tax_total"`
	GrandTotal      float64 `json:"grand_total"`
}

// SourceDocument is the derivation input fetched from the remote service.
type SourceDocument struct {
	Kind   string       `json:"kind"`
	Header SourceHeader `json:"header"`
	Lines  []SourceLine `json:"lines"`
}

// SourceHeader carries the source document header fields the mapper copies.
type SourceHeader struct {
	DocNumber        string `json:"doc_number"`
	CounterpartyCode string `json:"counterparty_code"`
	CounterpartyName string `json:"counterparty_name"`
	CounterpartyRef  string `json:"counterparty_ref"`
	Address          string `json:"address"`
	Remarks          string `json:"remarks"`
	BasedOn          string `json:"based_on,omitempty"`
}

// SourceLine is one line of the source document.
type SourceLine struct {
	LineID        int64   `json:"line_id"`
	ProductCode   string  `json:"product_code"`
	ProductName   string  `json:"product_name"`
	Quantity      float64 `json:"quantity"`
	UOM           string  `json:"uom"`
	UnitPrice     float64 `json:"unit_price"`
	WarehouseCode string  `json:"warehouse_code"`
	TaxCode       string  `json:"tax_code"`
}

var (
	// ErrLineNotFound indicates no line carries the given client ID.
	ErrLineNotFound = errors.New("docform: line not found")
	// ErrInvalidTransition occurs when an operation violates the form lifecycle.
	ErrInvalidTransition = errors.New("docform: invalid state transition")
	// ErrValidationFailed indicates submission was attempted with outstanding errors.
	ErrValidationFailed = errors.New("docform: validation failed")
	// ErrSourceKindMismatch occurs when deriving from a document of the wrong kind.
	ErrSourceKindMismatch = errors.New("docform: source document kind mismatch")
	// ErrUnknownDocType indicates a document kind absent from the registry.
	ErrUnknownDocType = errors.New("docform: unknown document type")
)

package docform

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian/internal/catalog"
)

// FormState is the in-session state machine of one document being edited.
// Every mutation synchronously recomputes the affected line and re-aggregates
// the whole document before returning, so callers never observe stale totals.
//
// A FormState has exactly one writer; it performs no locking of its own.
type FormState struct {
	docType  DocType
	snapshot *catalog.Snapshot
	status   FormStatus
	header   DocumentHeader
	lines    []LineItem
	totals   Totals
}

// HeaderPatch carries header field edits; nil fields are left untouched.
type HeaderPatch struct {
	CounterpartyCode *string
	CounterpartyName *string
	DocumentDate     *time.Time
	DueDate          *time.Time
	CounterpartyRef  *string
	Address          *string
	Remarks          *string
}

// LinePatch carries line field edits; nil fields are left untouched.
type LinePatch struct {
	ProductCode   *string
	ProductName   *string
	UOM           *string
	WarehouseCode *string
	Quantity      *float64
	UnitPrice     *float64
	TaxCode       *string
}

// NewFormState opens an empty form for the given document type against an
// immutable catalog snapshot.
func NewFormState(dt DocType, snap *catalog.Snapshot) *FormState {
	return &FormState{
		docType:  dt,
		snapshot: snap,
		status:   StatusEmpty,
		header:   DocumentHeader{DocumentNumber: PendingDocumentNumber},
	}
}

// DocType returns the configured document type of this form.
func (f *FormState) DocType() DocType { return f.docType }

// Status returns the current lifecycle state.
func (f *FormState) Status() FormStatus { return f.status }

// Header returns a copy of the current header.
func (f *FormState) Header() DocumentHeader { return f.header }

// Lines returns a copy of the current line set in display order.
func (f *FormState) Lines() []LineItem {
	return append([]LineItem(nil), f.lines...)
}

// Totals returns the aggregates for the current line set.
func (f *FormState) Totals() Totals { return f.totals }

// Snapshot returns the catalog snapshot this session resolves against.
func (f *FormState) Snapshot() *catalog.Snapshot { return f.snapshot }

// Seed replaces the form contents wholesale, recomputing every line against
// this session's snapshot. Used by derivation and by draft recovery.
func (f *FormState) Seed(header DocumentHeader, lines []LineItem) error {
	if err := f.ensureEditable(); err != nil {
		return err
	}
	f.header = header
	if f.header.DocumentNumber == "" {
		f.header.DocumentNumber = PendingDocumentNumber
	}
	f.lines = make([]LineItem, 0, len(lines))
	for _, line := range lines {
		if line.ClientID == "" {
			line.ClientID = uuid.NewString()
		}
		f.lines = append(f.lines, RecomputeLine(line, f.snapshot))
	}
	f.totals = Aggregate(f.lines)
	f.status = StatusSeeded
	return nil
}

// SeedFromSource derives the form contents from a source document.
func (f *FormState) SeedFromSource(src SourceDocument, today time.Time) error {
	if err := f.ensureEditable(); err != nil {
		return err
	}
	header, lines, err := Derive(f.docType, src, f.snapshot, today)
	if err != nil {
		return err
	}
	f.header = header
	f.lines = lines
	f.totals = Aggregate(f.lines)
	f.status = StatusSeeded
	return nil
}

// ApplyHeader applies header edits and re-enters Editing.
func (f *FormState) ApplyHeader(p HeaderPatch) error {
	if err := f.ensureEditable(); err != nil {
		return err
	}
	if p.CounterpartyCode != nil {
		f.header.CounterpartyCode = *p.CounterpartyCode
		if f.header.CounterpartyName == "" || p.CounterpartyName == nil {
			f.resolveCounterpartyName()
		}
	}
	if p.CounterpartyName != nil {
		f.header.CounterpartyName = *p.CounterpartyName
	}
	if p.DocumentDate != nil {
		d := p.DocumentDate.Truncate(24 * time.Hour)
		f.header.DocumentDate = &d
	}
	if p.DueDate != nil {
		d := p.DueDate.Truncate(24 * time.Hour)
		f.header.DueDate = &d
	}
	if p.CounterpartyRef != nil {
		f.header.CounterpartyRef = *p.CounterpartyRef
	}
	if p.Address != nil {
		f.header.Address = *p.Address
	}
	if p.Remarks != nil {
		f.header.Remarks = *p.Remarks
	}
	f.status = StatusEditing
	return nil
}

// AddLine appends a blank line with quantity 1 and re-aggregates. The new
// line contributes nothing to the totals until a price is entered.
func (f *FormState) AddLine() (LineItem, error) {
	if err := f.ensureEditable(); err != nil {
		return LineItem{}, err
	}
	line := RecomputeLine(LineItem{ClientID: uuid.NewString(), Quantity: 1}, f.snapshot)
	f.lines = append(f.lines, line)
	f.totals = Aggregate(f.lines)
	f.status = StatusEditing
	return line, nil
}

// UpdateLine applies field edits to the line with the given client ID. Edits
// to quantity, unit price or tax code trigger a recompute of the line's
// derived amounts; identity edits (product, UOM, warehouse) do not. The
// document is re-aggregated either way.
func (f *FormState) UpdateLine(clientID string, p LinePatch) (LineItem, error) {
	if err := f.ensureEditable(); err != nil {
		return LineItem{}, err
	}
	idx := f.lineIndex(clientID)
	if idx < 0 {
		return LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, clientID)
	}

	line := f.lines[idx]
	recompute := false
	if p.ProductCode != nil {
		line.ProductCode = *p.ProductCode
		if p.ProductName == nil {
			if e, ok := f.snapshot.Lookup(catalog.KindProducts, line.ProductCode); ok {
				line.ProductName = e.Name
			}
		}
	}
	if p.ProductName != nil {
		line.ProductName = *p.ProductName
	}
	if p.UOM != nil {
		line.UOM = *p.UOM
	}
	if p.WarehouseCode != nil {
		line.WarehouseCode = *p.WarehouseCode
	}
	if p.Quantity != nil {
		line.Quantity = *p.Quantity
		recompute = true
	}
	if p.UnitPrice != nil {
		line.UnitPrice = *p.UnitPrice
		recompute = true
	}
	if p.TaxCode != nil {
		line.TaxCode = *p.TaxCode
		recompute = true
	}
	if recompute {
		line = RecomputeLine(line, f.snapshot)
	}

	f.lines[idx] = line
	f.totals = Aggregate(f.lines)
	f.status = StatusEditing
	return line, nil
}

// RemoveLine deletes a line by client ID and re-aggregates. Removing a
// derived line never touches the source document.
func (f *FormState) RemoveLine(clientID string) error {
	if err := f.ensureEditable(); err != nil {
		return err
	}
	idx := f.lineIndex(clientID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, clientID)
	}
	f.lines = append(f.lines[:idx], f.lines[idx+1:]...)
	f.totals = Aggregate(f.lines)
	f.status = StatusEditing
	return nil
}

// Validate runs the one-pass validator over the current contents and moves
// the form to Validating. The result is returned rather than stored: the form
// contents are the single source of truth and errors are recomputed on demand.
func (f *FormState) Validate() (ErrorMap, error) {
	if err := f.ensureEditable(); err != nil {
		return nil, err
	}
	f.status = StatusValidating
	return Validate(f.header, f.lines, f.snapshot), nil
}

// BeginSubmit moves Validating to Submitting, refusing while validation
// errors remain.
func (f *FormState) BeginSubmit() error {
	if f.status != StatusValidating {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, f.status)
	}
	if errs := Validate(f.header, f.lines, f.snapshot); len(errs) > 0 {
		f.status = StatusEditing
		return fmt.Errorf("%w: %d issue(s)", ErrValidationFailed, len(errs))
	}
	f.status = StatusSubmitting
	return nil
}

// MarkSubmitted records the number assigned by the remote service and moves
// the form to its terminal state.
func (f *FormState) MarkSubmitted(documentNumber string) error {
	if f.status != StatusSubmitting {
		return fmt.Errorf("%w: submitted from %s", ErrInvalidTransition, f.status)
	}
	f.header.DocumentNumber = documentNumber
	f.status = StatusSubmitted
	return nil
}

// MarkSubmissionFailed records a failed submission, keeping every in-progress
// edit so the user can retry.
func (f *FormState) MarkSubmissionFailed() error {
	if f.status != StatusSubmitting {
		return fmt.Errorf("%w: submission failure from %s", ErrInvalidTransition, f.status)
	}
	f.status = StatusSubmissionFailed
	return nil
}

func (f *FormState) ensureEditable() error {
	switch f.status {
	case StatusSubmitting, StatusSubmitted:
		return fmt.Errorf("%w: edit in %s", ErrInvalidTransition, f.status)
	}
	return nil
}

func (f *FormState) lineIndex(clientID string) int {
	for i := range f.lines {
		if f.lines[i].ClientID == clientID {
			return i
		}
	}
	return -1
}

func (f *FormState) resolveCounterpartyName() {
	kind := catalog.KindVendors
	if f.docType.Counterparty == SideCustomer {
		kind = catalog.KindCustomers
	}
	if e, ok := f.snapshot.Lookup(kind, f.header.CounterpartyCode); ok {
		f.header.CounterpartyName = e.Name
	}
}

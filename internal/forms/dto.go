package forms

import (
	"fmt"
	"time"

	"github.com/meridian-erp/meridian/internal/docform"
)

const dateLayout = "2006-01-02"

// OpenFormRequest opens a new form session, optionally derived from a source
// document of the type's configured derives_from kind.
type OpenFormRequest struct {
	DocType     string            `json:"doc_type" validate:"required"`
	DerivedFrom *DeriveRefRequest `json:"derived_from,omitempty"`
}

// DeriveRefRequest names the source document to derive from.
type DeriveRefRequest struct {
	DocumentNumber string `json:"document_number" validate:"required"`
}

// HeaderPatchRequest carries header edits. Absent fields are untouched; dates
// use the 2006-01-02 layout.
type HeaderPatchRequest struct {
	CounterpartyCode *string `json:"counterparty_code,omitempty"`
	CounterpartyName *string `json:"counterparty_name,omitempty"`
	DocumentDate     *string `json:"document_date,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	CounterpartyRef  *string `json:"counterparty_ref,omitempty"`
	Address          *string `json:"address,omitempty"`
	Remarks          *string `json:"remarks,omitempty"`
}

// toPatch converts the wire representation into an engine patch. Unparseable
// dates are rejected here at the boundary; the engine never sees them.
func (r HeaderPatchRequest) toPatch() (docform.HeaderPatch, error) {
	p := docform.HeaderPatch{
		CounterpartyCode: r.CounterpartyCode,
		CounterpartyName: r.CounterpartyName,
		CounterpartyRef:  r.CounterpartyRef,
		Address:          r.Address,
		Remarks:          r.Remarks,
	}
	if r.DocumentDate != nil {
		t, err := time.Parse(dateLayout, *r.DocumentDate)
		if err != nil {
			return docform.HeaderPatch{}, fmt.Errorf("invalid document_date %q", *r.DocumentDate)
		}
		p.DocumentDate = &t
	}
	if r.DueDate != nil {
		t, err := time.Parse(dateLayout, *r.DueDate)
		if err != nil {
			return docform.HeaderPatch{}, fmt.Errorf("invalid due_date %q", *r.DueDate)
		}
		p.DueDate = &t
	}
	return p, nil
}

// LinePatchRequest carries line edits. Quantity and unit price arrive as
// strings because they come from free-text inputs; they are coerced here and
// rejected when non-numeric, so the calculator only ever sees numbers.
type LinePatchRequest struct {
	ProductCode   *string `json:"product_code,omitempty"`
	ProductName   *string `json:"product_name,omitempty"`
	UOM           *string `json:"uom,omitempty"`
	WarehouseCode *string `json:"warehouse_code,omitempty"`
	Quantity      *string `json:"quantity,omitempty"`
	UnitPrice     *string `json:"unit_price,omitempty"`
	TaxCode       *string `json:"tax_code,omitempty"`
}

func (r LinePatchRequest) toPatch() (docform.LinePatch, error) {
	p := docform.LinePatch{
		ProductCode:   r.ProductCode,
		ProductName:   r.ProductName,
		UOM:           r.UOM,
		WarehouseCode: r.WarehouseCode,
		TaxCode:       r.TaxCode,
	}
	if r.Quantity != nil {
		v, ok := docform.ParseAmount(*r.Quantity)
		if !ok {
			return docform.LinePatch{}, fmt.Errorf("invalid quantity %q", *r.Quantity)
		}
		p.Quantity = &v
	}
	if r.UnitPrice != nil {
		v, ok := docform.ParseAmount(*r.UnitPrice)
		if !ok {
			return docform.LinePatch{}, fmt.Errorf("invalid unit_price %q", *r.UnitPrice)
		}
		p.UnitPrice = &v
	}
	return p, nil
}

// SubmitFormRequest carries optional attachments forwarded on submission.
type SubmitFormRequest struct {
	Attachments []AttachmentRequest `json:"attachments,omitempty" validate:"dive"`
}

// AttachmentRequest is an uploaded file, base64 in transit.
type AttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Data        []byte `json:"data" validate:"required"`
}

// TotalsView renders aggregates with formatted display strings alongside the
// raw values.
type TotalsView struct {
	ProductSubtotal        float64 `json:"product_subtotal"`
	TaxTotal               float64 `json:"tax_total"`
	GrandTotal             float64 `json:"grand_total"`
	ProductSubtotalDisplay string  `json:"product_subtotal_display"`
	TaxTotalDisplay        string  `json:"tax_total_display"`
	GrandTotalDisplay      string  `json:"grand_total_display"`
}

// FormView is the full session state returned from every endpoint, so the
// client always renders totals that match the lines it just edited.
type FormView struct {
	FormID    string                 `json:"form_id"`
	DocType   string                 `json:"doc_type"`
	DocLabel  string                 `json:"doc_label"`
	Status    docform.FormStatus     `json:"status"`
	Header    docform.DocumentHeader `json:"header"`
	Lines     []docform.LineItem     `json:"lines"`
	Totals    TotalsView             `json:"totals"`
	Errors    docform.ErrorMap       `json:"errors,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// newFormView builds the view under the session lock held by the caller.
func newFormView(sess *Session, errs docform.ErrorMap) FormView {
	form := sess.Form
	totals := form.Totals()
	return FormView{
		FormID:   sess.ID,
		DocType:  form.DocType().Kind,
		DocLabel: form.DocType().Label,
		Status:   form.Status(),
		Header:   form.Header(),
		Lines:    form.Lines(),
		Totals: TotalsView{
			ProductSubtotal:        totals.ProductSubtotal,
			TaxTotal:               totals.TaxTotal,
			GrandTotal:             totals.GrandTotal,
			ProductSubtotalDisplay: docform.FormatAmount(totals.ProductSubtotal),
			TaxTotalDisplay:        docform.FormatAmount(totals.TaxTotal),
			GrandTotalDisplay:      docform.FormatAmount(totals.GrandTotal),
		},
		Errors:    errs,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

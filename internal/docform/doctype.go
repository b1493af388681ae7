package docform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CounterpartySide selects which catalog kind a document's counterparty is
// resolved against.
type CounterpartySide string

const (
	SideVendor   CounterpartySide = "vendor"
	SideCustomer CounterpartySide = "customer"
)

// DocType describes one document-entry screen as configuration: labels,
// counterparty side, and the single document kind it may be derived from.
// Screens share one engine; only this schema varies between them.
type DocType struct {
	Kind               string           `yaml:"kind" json:"kind"`
	Label              string           `yaml:"label" json:"label"`
	Counterparty       CounterpartySide `yaml:"counterparty" json:"counterparty"`
	PrimaryDateLabel   string           `yaml:"primary_date_label" json:"primary_date_label"`
	SecondaryDateLabel string           `yaml:"secondary_date_label" json:"secondary_date_label"`
	DerivesFrom        string           `yaml:"derives_from,omitempty" json:"derives_from,omitempty"`
}

// Registry holds the configured document types in declaration order.
type Registry struct {
	types map[string]DocType
	order []string
}

type docTypeFile struct {
	DocTypes []DocType `yaml:"doc_types"`
}

// NewRegistry validates and indexes a doc-type list.
func NewRegistry(types []DocType) (*Registry, error) {
	r := &Registry{types: make(map[string]DocType, len(types))}
	for _, dt := range types {
		if dt.Kind == "" {
			return nil, fmt.Errorf("docform: doc type with empty kind")
		}
		if _, ok := r.types[dt.Kind]; ok {
			return nil, fmt.Errorf("docform: duplicate doc type %q", dt.Kind)
		}
		if dt.Counterparty != SideVendor && dt.Counterparty != SideCustomer {
			return nil, fmt.Errorf("docform: doc type %q: counterparty must be vendor or customer", dt.Kind)
		}
		r.types[dt.Kind] = dt
		r.order = append(r.order, dt.Kind)
	}
	for _, dt := range r.types {
		if dt.DerivesFrom == "" {
			continue
		}
		if _, ok := r.types[dt.DerivesFrom]; !ok {
			return nil, fmt.Errorf("docform: doc type %q derives from unknown kind %q", dt.Kind, dt.DerivesFrom)
		}
	}
	return r, nil
}

// LoadRegistry reads a doc-type YAML file.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docform: read doc types: %w", err)
	}
	var file docTypeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("docform: parse doc types: %w", err)
	}
	return NewRegistry(file.DocTypes)
}

// DefaultRegistry returns the built-in document types used when no
// configuration file is supplied.
func DefaultRegistry() *Registry {
	r, err := NewRegistry([]DocType{
		{Kind: "purchase_order", Label: "Purchase Order", Counterparty: SideVendor, PrimaryDateLabel: "Document Date", SecondaryDateLabel: "Delivery Date"},
		{Kind: "goods_receipt", Label: "Goods Receipt PO", Counterparty: SideVendor, PrimaryDateLabel: "Posting Date", SecondaryDateLabel: "Delivery Date", DerivesFrom: "purchase_order"},
		{Kind: "ap_credit_note", Label: "AP Credit Note", Counterparty: SideVendor, PrimaryDateLabel: "Posting Date", SecondaryDateLabel: "Due Date", DerivesFrom: "goods_receipt"},
		{Kind: "sales_order", Label: "Sales Order", Counterparty: SideCustomer, PrimaryDateLabel: "Document Date", SecondaryDateLabel: "Delivery Date"},
		{Kind: "ar_credit_note", Label: "AR Credit Note", Counterparty: SideCustomer, PrimaryDateLabel: "Posting Date", SecondaryDateLabel: "Due Date", DerivesFrom: "sales_order"},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Get looks up a document type by kind.
func (r *Registry) Get(kind string) (DocType, error) {
	dt, ok := r.types[kind]
	if !ok {
		return DocType{}, fmt.Errorf("%w: %q", ErrUnknownDocType, kind)
	}
	return dt, nil
}

// All returns the document types in declaration order.
func (r *Registry) All() []DocType {
	out := make([]DocType, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.types[kind])
	}
	return out
}

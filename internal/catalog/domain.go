package catalog

import "errors"

// Kind identifies one reference lookup table served by the master-data service.
type Kind string

const (
	KindVendors    Kind = "vendors"
	KindCustomers  Kind = "customers"
	KindProducts   Kind = "products"
	KindUOMs       Kind = "uoms"
	KindWarehouses Kind = "warehouses"
	KindTaxes      Kind = "taxes"
)

// AllKinds lists every catalog kind fetched when a form session opens.
func AllKinds() []Kind {
	return []Kind{KindVendors, KindCustomers, KindProducts, KindUOMs, KindWarehouses, KindTaxes}
}

// Entry is one row of a reference lookup table.
type Entry struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	RatePercent float64 `json:"rate_percent,omitempty"`
	Active      bool    `json:"active"`
}

var (
	// ErrUnavailable indicates the master-data service could not be reached.
	ErrUnavailable = errors.New("catalog: upstream unavailable")
	// ErrUnknownKind indicates a lookup against a kind this service does not serve.
	ErrUnknownKind = errors.New("catalog: unknown kind")
)

// Snapshot is an immutable view of the reference catalog taken when a form
// session opens. All lookups during that session go through the same snapshot.
type Snapshot struct {
	entries map[Kind][]Entry
	index   map[Kind]map[string]Entry
}

// NewSnapshot builds a snapshot from per-kind entry lists. Only active entries
// are indexed for lookup; the full lists stay available for display.
func NewSnapshot(entries map[Kind][]Entry) *Snapshot {
	s := &Snapshot{
		entries: make(map[Kind][]Entry, len(entries)),
		index:   make(map[Kind]map[string]Entry, len(entries)),
	}
	for kind, list := range entries {
		s.entries[kind] = append([]Entry(nil), list...)
		idx := make(map[string]Entry, len(list))
		for _, e := range list {
			if e.Active {
				idx[e.Code] = e
			}
		}
		s.index[kind] = idx
	}
	return s
}

// Entries returns the full entry list for a kind, inactive rows included.
func (s *Snapshot) Entries(kind Kind) []Entry {
	if s == nil {
		return nil
	}
	return s.entries[kind]
}

// Has reports whether the snapshot holds data for the given kind.
func (s *Snapshot) Has(kind Kind) bool {
	if s == nil {
		return false
	}
	_, ok := s.entries[kind]
	return ok
}

// Lookup resolves a code against the active entries of a kind. Matching is
// exact and case sensitive; inactive entries never match.
func (s *Snapshot) Lookup(kind Kind, code string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	idx, ok := s.index[kind]
	if !ok {
		return Entry{}, false
	}
	e, ok := idx[code]
	return e, ok
}

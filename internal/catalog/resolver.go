package catalog

import "strings"

// RateResolution carries the tax percentage resolved for a line.
type RateResolution struct {
	RatePercent float64
}

// ResolveTax maps a tax code to its percentage rate using the snapshot.
//
// A blank code resolves to a zero rate and is not a miss: untaxed lines are
// legitimate. A non-blank code that has no active catalog entry reports a
// miss; callers calculate with a zero rate and leave flagging the line to the
// validator, so the calculation path never fails.
func (s *Snapshot) ResolveTax(code string) (RateResolution, bool) {
	if strings.TrimSpace(code) == "" {
		return RateResolution{}, true
	}
	e, ok := s.Lookup(KindTaxes, code)
	if !ok {
		return RateResolution{}, false
	}
	return RateResolution{RatePercent: e.RatePercent}, true
}

package algo

import "github.com/mjansche/wfst-go/fst"

// Intersect returns the on-the-fly intersection of acceptors a and b, per
// spec.md §4.10: "composition restricted to acceptors... a thin wrapper
// over a composition delayed FST." Both inputs must be acceptors
// (ilabel == olabel on every arc). Label sort order is neither required
// nor used: the underlying matcher scans every arc pair (see Compose's own
// note).
func Intersect(a, b fst.ExpandedFst, byteBudget int64) (fst.Fst, bool) {
	if !a.Properties(fst.Acceptor, true).Has(fst.Acceptor) {
		return nil, false
	}
	if !b.Properties(fst.Acceptor, true).Has(fst.Acceptor) {
		return nil, false
	}
	return Compose(a, b, byteBudget), true
}

package algo

import "github.com/mjansche/wfst-go/fst"

// Equal reports whether f and g have identical state numbering, arcs (in
// iteration order) and final weights — a strict structural comparison, as
// opposed to Equivalent's language-level comparison.
func Equal(f, g fst.ExpandedFst, delta float64) bool {
	if f.NumStates() != g.NumStates() || f.Start() != g.Start() {
		return false
	}
	for s := fst.StateId(0); int(s) < f.NumStates(); s++ {
		if !f.Final(s).ApproxEqual(g.Final(s), delta) {
			return false
		}
		if f.NumArcs(s) != g.NumArcs(s) {
			return false
		}
		fi, gi := f.Arcs(s), g.Arcs(s)
		for !fi.Done() {
			fa, ga := fi.Value(), gi.Value()
			if fa.ILabel != ga.ILabel || fa.OLabel != ga.OLabel || fa.NextState != ga.NextState {
				return false
			}
			if !fa.Weight.ApproxEqual(ga.Weight, delta) {
				return false
			}
			fi.Next()
			gi.Next()
		}
	}
	return true
}

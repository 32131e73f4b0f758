package algo

import "github.com/mjansche/wfst-go/fst"

// appendStates copies every state, arc and final weight of g onto the end
// of a, returning the StateId each g state landed at (g's state i is now
// a's state offset+i).
func appendStates(a fst.MutableFst, g fst.ExpandedFst) (offset int) {
	offset = a.NumStates()
	for i := 0; i < g.NumStates(); i++ {
		a.AddState()
	}
	for s := fst.StateId(0); int(s) < g.NumStates(); s++ {
		a.SetFinal(fst.StateId(int(s)+offset), g.Final(s))
		for it := g.Arcs(s); !it.Done(); it.Next() {
			arc := it.Value()
			a.AddArc(fst.StateId(int(s)+offset), fst.Arc{
				ILabel:    arc.ILabel,
				OLabel:    arc.OLabel,
				Weight:    arc.Weight,
				NextState: fst.StateId(int(arc.NextState) + offset),
			})
		}
	}
	return offset
}

// hasEnteringArcs reports whether any arc of a targets s — used to decide
// whether Union can avoid adding a fresh start state, per spec.md §4.9
// ("if A's initial state has no entering arcs... add an ε-arc from A's
// start").
func hasEnteringArcs(a fst.ExpandedFst, s fst.StateId) bool {
	for t := fst.StateId(0); int(t) < a.NumStates(); t++ {
		for it := a.Arcs(t); !it.Done(); it.Next() {
			if it.Value().NextState == s {
				return true
			}
		}
	}
	return false
}

// Union rewrites a in place to accept the union of a's and b's languages,
// per spec.md §4.9.
func Union(a fst.MutableFst, b fst.ExpandedFst) {
	sr := a.Semiring()
	oldStart := a.Start()
	bStart := appendStates(a, b)
	bStartId := fst.StateId(bStart) + b.Start()

	if oldStart == fst.NoStateId {
		a.SetStart(bStartId)
		return
	}
	if !hasEnteringArcs(a, oldStart) {
		a.AddArc(oldStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: bStartId})
		return
	}
	newStart := a.AddState()
	a.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: oldStart})
	a.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: bStartId})
	a.SetStart(newStart)
}

// ClosureStar rewrites f in place to its Kleene-star closure: accepts ε
// (weight one) plus one-or-more repetitions of f's language.
func ClosureStar(f fst.MutableFst) {
	closure(f, true)
}

// ClosurePlus rewrites f in place to its Kleene-plus closure: one-or-more
// repetitions, but not ε, per spec.md example 12.
func ClosurePlus(f fst.MutableFst) {
	closure(f, false)
}

func closure(f fst.MutableFst, star bool) {
	sr := f.Semiring()
	oldStart := f.Start()
	if oldStart == fst.NoStateId {
		return
	}
	n := f.NumStates()
	for s := fst.StateId(0); int(s) < n; s++ {
		if fw := f.Final(s); !fw.IsZero() {
			f.AddArc(s, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: fw, NextState: oldStart})
		}
	}
	if star {
		newStart := f.AddState()
		f.SetFinal(newStart, sr.One())
		f.AddArc(newStart, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: sr.One(), NextState: oldStart})
		f.SetStart(newStart)
	}
}

// Concat rewrites a in place to accept the concatenation of a's and b's
// languages: every final state of a gets an ε-arc to the (offset) start
// of b, weighted with a's own final weight, and a's final weights become
// b's. Grounded on the same append-and-splice shape as Union.
func Concat(a fst.MutableFst, b fst.ExpandedFst) {
	sr := a.Semiring()
	n := a.NumStates()
	finals := make([]fst.StateId, 0)
	for s := fst.StateId(0); int(s) < n; s++ {
		if fw := a.Final(s); !fw.IsZero() {
			finals = append(finals, s)
		}
	}
	offset := appendStates(a, b)
	bStart := fst.StateId(offset) + b.Start()
	for _, s := range finals {
		w := a.Final(s)
		a.AddArc(s, fst.Arc{ILabel: fst.Epsilon, OLabel: fst.Epsilon, Weight: w, NextState: bStart})
		a.SetFinal(s, sr.Zero())
	}
}

package algo

import (
	"fmt"

	"github.com/mjansche/wfst-go/cache"
	"github.com/mjansche/wfst-go/fst"
)

// LabelMap is a from-label to to-label substitution; a missing entry
// means "leave unchanged" (identity), per spec.md §4.4's relabel
// semantics ("missing → identity").
type LabelMap map[fst.Label]fst.Label

// Relabel walks every arc of f in place and remaps its input and/or output
// label through iMap/oMap (either may be nil to skip that side), per
// spec.md §4.4 "In-place: walk every arc, remap input/output label via two
// hash maps... report error when a map entry targets kNoLabel." On such an
// error Relabel returns false and the error at once: arcs visited before
// the offending one keep their new labels, and no Error property bit is
// set on f.
func Relabel(f fst.MutableFst, iMap, oMap LabelMap) (ok bool, err error) {
	for s := fst.StateId(0); int(s) < f.NumStates(); s++ {
		it := f.MutableArcs(s)
		for ; !it.Done(); it.Next() {
			a := it.Value()
			changed := false
			if iMap != nil {
				if to, present := iMap[a.ILabel]; present {
					if to == fst.NoLabel {
						return false, fmt.Errorf("algo: relabel maps ilabel %d to NoLabel", a.ILabel)
					}
					a.ILabel = to
					changed = true
				}
			}
			if oMap != nil {
				if to, present := oMap[a.OLabel]; present {
					if to == fst.NoLabel {
						return false, fmt.Errorf("algo: relabel maps olabel %d to NoLabel", a.OLabel)
					}
					a.OLabel = to
					changed = true
				}
			}
			if changed {
				it.SetValue(a)
			}
		}
	}
	return true, nil
}

// DelayedRelabel returns a cache-backed delayed FST that applies the same
// remapping lazily per spec.md §4.4's "Delayed: cache-backed per-state
// expansion that applies the same remapping lazily."
func DelayedRelabel(f fst.Fst, iMap, oMap LabelMap, byteBudget int64) fst.Fst {
	remap := func(lm LabelMap, l fst.Label) fst.Label {
		if lm == nil {
			return l
		}
		if to, present := lm[l]; present {
			return to
		}
		return l
	}
	expand := func(s fst.StateId, store *cache.Store) {
		var arcs []fst.Arc
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			arcs = append(arcs, fst.Arc{
				ILabel:    remap(iMap, a.ILabel),
				OLabel:    remap(oMap, a.OLabel),
				Weight:    a.Weight,
				NextState: a.NextState,
			})
		}
		store.SetArcs(s, arcs)
		store.SetFinal(s, f.Final(s))
	}
	d := cache.NewDelayed("relabel", f.Semiring(), byteBudget, expand)
	d.Store().SetStart(f.Start())
	d.SetInputSymbols(f.InputSymbols())
	d.SetOutputSymbols(f.OutputSymbols())
	return d
}

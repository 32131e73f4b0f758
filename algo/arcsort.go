// Package algo implements the core WFST algorithms of spec.md §4.4-§4.8:
// sorting, connection, shortest distance/path, minimization, equivalence,
// pruning, relabeling, the rational operations (union/closure), and
// composition/intersection.
//
// These operate over the generic fst.Fst/fst.MutableFst traits so they
// work uniformly across VectorFst, ConstFst, CompactFst and EditFst, the
// same "write once against the trait, not the concrete storage" discipline
// spec.md §9 asks for.
package algo

import (
	"sort"

	"github.com/mjansche/wfst-go/fst"
)

// ArcCompare orders two arcs of the same state; ByILabel and ByOLabel are
// the two orderings spec.md's ILabelSorted/OLabelSorted properties refer
// to.
type ArcCompare func(a, b fst.Arc) bool

func ByILabel(a, b fst.Arc) bool { return a.ILabel < b.ILabel }
func ByOLabel(a, b fst.Arc) bool { return a.OLabel < b.OLabel }

// ArcSort stably reorders every state's outgoing arcs of f in place
// according to less. It does not set the ILabelSorted or OLabelSorted
// property bits.
func ArcSort(f fst.MutableFst, less ArcCompare) {
	for s := fst.StateId(0); int(s) < f.NumStates(); s++ {
		n := f.NumArcs(s)
		if n < 2 {
			continue
		}
		arcs := make([]fst.Arc, 0, n)
		for it := f.Arcs(s); !it.Done(); it.Next() {
			arcs = append(arcs, it.Value())
		}
		sort.SliceStable(arcs, func(i, j int) bool { return less(arcs[i], arcs[j]) })
		it := f.MutableArcs(s)
		for i := 0; !it.Done(); it.Next() {
			it.SetValue(arcs[i])
			i++
		}
	}
}

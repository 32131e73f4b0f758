package algo

import (
	"fmt"

	"github.com/mjansche/wfst-go/fst"
)

// MinimizeOptions configures Minimize.
type MinimizeOptions struct {
	Delta             float64
	AllowNondeterministic bool
}

// encodedLabel packs an (ilabel, olabel) pair into one int64 label so a
// transducer can be minimized with the acceptor algorithm and then
// decoded back, per spec.md §4.5's "encode... as a single label, minimize
// as unweighted acceptor, then decode." This implementation encodes the
// label pair only; it does not push/quantize/encode weight into a gallic
// weight first, so Minimize on a weighted transducer minimizes states
// that agree on (ilabel, olabel, weight, next-class) directly rather than
// after weight-pushing normalization — a documented simplification (see
// DESIGN.md) that is exact for unweighted or already-pushed inputs and
// conservative (may under-merge) otherwise.
func encodedLabel(i, o fst.Label) int64 {
	return int64(i)<<32 | int64(uint32(o))
}

// EncodeTransducer rewrites f in place into an acceptor whose single label
// per arc is the encoding of that arc's original (ilabel, olabel) pair,
// returning the decode table Minimize's caller must pass to
// DecodeTransducer afterward. This is the label half of spec.md §4.5's
// transducer encoding step (the weight/gallic half is out of scope, see
// Minimize's doc comment).
func EncodeTransducer(f fst.MutableFst) map[int64][2]fst.Label {
	table := make(map[int64][2]fst.Label)
	for s := fst.StateId(0); int(s) < f.NumStates(); s++ {
		it := f.MutableArcs(s)
		for ; !it.Done(); it.Next() {
			a := it.Value()
			code := encodedLabel(a.ILabel, a.OLabel)
			table[code] = [2]fst.Label{a.ILabel, a.OLabel}
			a.ILabel, a.OLabel = fst.Label(code), fst.Label(code)
			it.SetValue(a)
		}
	}
	return table
}

// DecodeTransducer reverses EncodeTransducer using the table it returned.
func DecodeTransducer(f fst.MutableFst, table map[int64][2]fst.Label) {
	for s := fst.StateId(0); int(s) < f.NumStates(); s++ {
		it := f.MutableArcs(s)
		for ; !it.Done(); it.Next() {
			a := it.Value()
			pair, ok := table[int64(a.ILabel)]
			if !ok {
				continue
			}
			a.ILabel, a.OLabel = pair[0], pair[1]
			it.SetValue(a)
		}
	}
}

// Minimize merges equivalent states of f in place using partition
// refinement (spec.md's Hopcroft algorithm), applied uniformly to both
// the acyclic and cyclic cases; the Revuz fast path for deterministic
// acyclic FSTs described by spec.md §4.5 is not implemented as a separate
// linear-time algorithm — see DESIGN.md.
func Minimize(f fst.MutableFst, opts MinimizeOptions) error {
	props := f.Properties(fst.Acceptor|fst.NotAcceptor|fst.IDeterministic|fst.NonIDeterministic, true)
	if !props.Has(fst.Acceptor) {
		return fmt.Errorf("algo: Minimize requires an acceptor (ilabel == olabel); encode transducers via EncodeTransducer first")
	}
	if props.Has(fst.NonIDeterministic) && !opts.AllowNondeterministic {
		return fmt.Errorf("algo: Minimize requires a deterministic acceptor unless AllowNondeterministic is set")
	}

	classes := hopcroftPartition(f, opts.Delta)
	mergeClasses(f, classes)
	Connect(f)
	return nil
}

// hopcroftPartition computes the coarsest stable partition of f's states
// under (finality-with-weight, per-label destination class): prepartition
// by finality and final weight, then repeatedly pick a class C as splitter
// and, for each label λ, split every class (C included) into the states that have
// an arc on λ into C and those that don't, until no split applies.
func hopcroftPartition(f fst.ExpandedFst, delta float64) []int {
	n := f.NumStates()
	classOf := make([]int, n)

	// Prepartition: group by (is-final, final-weight quantized).
	type finalKey struct {
		final bool
		hash  uint64
	}
	keyToClass := make(map[finalKey]int)
	nextClass := 0
	for s := fst.StateId(0); int(s) < n; s++ {
		fw := f.Final(s)
		k := finalKey{final: !fw.IsZero()}
		if k.final {
			k.hash = fw.Quantize(delta).Hash()
		}
		c, ok := keyToClass[k]
		if !ok {
			c = nextClass
			nextClass++
			keyToClass[k] = c
		}
		classOf[s] = c
	}

	// Build reverse adjacency keyed by input label for the split step.
	predsByLabelAndTarget := make(map[fst.Label]map[fst.StateId][]fst.StateId)
	labels := make(map[fst.Label]bool)
	for s := fst.StateId(0); int(s) < n; s++ {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			labels[a.ILabel] = true
			m := predsByLabelAndTarget[a.ILabel]
			if m == nil {
				m = make(map[fst.StateId][]fst.StateId)
				predsByLabelAndTarget[a.ILabel] = m
			}
			m[a.NextState] = append(m[a.NextState], s)
		}
	}

	// Iteratively refine until stable. Each round picks every current class
	// as a candidate splitter C: for a label λ, pred_λ(C) is the set of
	// states with an arc on λ landing specifically in C (not in any class,
	// which is what would let two states with an arc to different classes
	// be merged). Any other class B with members both inside and outside
	// pred_λ(C) is split into those two parts. Applying a split restarts
	// the scan against freshly regrouped classes, so at most n-1 splits
	// ever happen (nextClass strictly increases and is bounded by n).
	for {
		byClass := make(map[int][]fst.StateId)
		for s := fst.StateId(0); int(s) < n; s++ {
			byClass[classOf[s]] = append(byClass[classOf[s]], fst.StateId(s))
		}

		split := false
	findSplit:
		for splitter := range byClass {
			for label := range labels {
				inSet := make(map[fst.StateId]bool)
				for target, froms := range predsByLabelAndTarget[label] {
					if classOf[target] != splitter {
						continue
					}
					for _, p := range froms {
						inSet[p] = true
					}
				}
				if len(inSet) == 0 {
					continue
				}
				for _, members := range byClass {
					if len(members) < 2 {
						continue
					}
					var in, out []fst.StateId
					for _, s := range members {
						if inSet[s] {
							in = append(in, s)
						} else {
							out = append(out, s)
						}
					}
					if len(in) > 0 && len(out) > 0 {
						newClass := nextClass
						nextClass++
						for _, s := range in {
							classOf[s] = newClass
						}
						split = true
						break findSplit
					}
				}
			}
		}
		if !split {
			break
		}
	}

	return classOf
}

// mergeClasses redirects every arc's NextState to its class
// representative, drops duplicate states, and rewires the start state.
func mergeClasses(f fst.MutableFst, classOf []int) {
	n := f.NumStates()
	rep := make(map[int]fst.StateId)
	for s := fst.StateId(0); int(s) < n; s++ {
		if _, ok := rep[classOf[s]]; !ok {
			rep[classOf[s]] = s
		}
	}

	if f.Start() != fst.NoStateId {
		f.SetStart(rep[classOf[f.Start()]])
	}

	var dead []fst.StateId
	for s := fst.StateId(0); int(s) < n; s++ {
		it := f.MutableArcs(s)
		for ; !it.Done(); it.Next() {
			a := it.Value()
			if want := rep[classOf[a.NextState]]; want != a.NextState {
				a.NextState = want
				it.SetValue(a)
			}
		}
		if rep[classOf[s]] != s {
			dead = append(dead, s)
		}
	}
	if len(dead) > 0 {
		f.DeleteStates(dead)
	}
}

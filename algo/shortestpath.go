package algo

import (
	"sort"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

// ShortestPathOptions configures ShortestPath.
type ShortestPathOptions struct {
	N        int // number of paths to extract; <= 1 means exactly one
	Unique   bool
	Delta    float64
	StateCap int
}

// ShortestPath extracts the N best paths of f (spec.md §4.4) into a fresh
// linear-or-tree-shaped VectorFst over the same semiring, requiring a Path
// semiring (plus selects the better of two weights).
//
// N == 1 computes every state's shortest distance (ShortestDistance with
// its default queue) and walks witness arcs back from the best final
// state. N > 1
// runs a lazy k-shortest-paths search over partial-path states ordered by
// candidate weight, which is functionally equivalent to spec.md's
// Eppstein-style product-FST formulation (explore state × rank) without
// materializing the product FST explicitly; see DESIGN.md.
func ShortestPath(f fst.ExpandedFst, opts ShortestPathOptions) fst.MutableFst {
	if opts.N <= 1 {
		return shortestPathOne(f, opts)
	}
	return shortestPathN(f, opts)
}

func shortestPathOne(f fst.ExpandedFst, opts ShortestPathOptions) fst.MutableFst {
	sr := f.Semiring()
	d := ShortestDistance(f, ShortestDistanceOptions{Delta: opts.Delta, StateCap: opts.StateCap})

	// best[s] = (predecessor state, arc taken to reach s on the best path)
	type pred struct {
		from fst.StateId
		arc  fst.Arc
		has  bool
	}
	n := f.NumStates()
	best := make([]pred, n)

	bestFinal := fst.NoStateId
	bestFinalWeight := sr.Zero()
	for s := fst.StateId(0); int(s) < n; s++ {
		total := d[s].Times(f.Final(s))
		if !f.Final(s).IsZero() && (bestFinal == fst.NoStateId || weight.NaturalLess(total, bestFinalWeight)) {
			bestFinal = s
			bestFinalWeight = total
		}
	}

	for s := fst.StateId(0); int(s) < n; s++ {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			cand := d[s].Times(a.Weight)
			// Keep only the first witness arc whose weight matches the
			// state's shortest distance; ties go to the lowest-numbered
			// source state, then to arc order.
			if !best[a.NextState].has && cand.Equal(d[a.NextState]) {
				best[a.NextState] = pred{from: s, arc: a, has: true}
			}
		}
	}

	out := fst.NewVectorFst(sr)
	if bestFinal == fst.NoStateId {
		return out
	}

	// Walk predecessors from bestFinal back to the start, then reverse.
	type step struct{ arc fst.Arc }
	var chain []step
	cur := bestFinal
	for cur != f.Start() {
		p := best[cur]
		if !p.has {
			break
		}
		chain = append(chain, step{arc: p.arc})
		cur = p.from
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	s := out.AddState()
	out.SetStart(s)
	for _, st := range chain {
		next := out.AddState()
		out.AddArc(s, fst.Arc{ILabel: st.arc.ILabel, OLabel: st.arc.OLabel, Weight: st.arc.Weight, NextState: next})
		s = next
	}
	out.SetFinal(s, f.Final(bestFinal))
	return out
}

// pathCandidate is one partial path explored by the lazy k-shortest-paths
// search: the state reached, the accumulated weight, and the arc sequence
// taken to get there (kept explicit, not via parent pointers, since paths
// here are short strings rather than a shared DAG).
type pathCandidate struct {
	state  fst.StateId
	weight weight.Weight
	arcs   []fst.Arc
}

func shortestPathN(f fst.ExpandedFst, opts ShortestPathOptions) fst.MutableFst {
	sr := f.Semiring()
	out := fst.NewVectorFst(sr)
	if f.Start() == fst.NoStateId {
		return out
	}

	frontier := []pathCandidate{{state: f.Start(), weight: sr.One()}}
	var completed []pathCandidate
	seenLabelSeqs := make(map[string]bool)

	cap := opts.StateCap
	if cap <= 0 {
		cap = 10000
	}

	for iterations := 0; len(frontier) > 0 && len(completed) < opts.N && iterations < cap; iterations++ {
		sort.Slice(frontier, func(i, j int) bool {
			return weight.NaturalLess(frontier[i].weight, frontier[j].weight)
		})
		c := frontier[0]
		frontier = frontier[1:]

		if fw := f.Final(c.state); !fw.IsZero() {
			total := c.weight.Times(fw)
			cand := pathCandidate{state: c.state, weight: total, arcs: c.arcs}
			if !opts.Unique || !seenLabelSeqs[labelKey(cand.arcs)] {
				seenLabelSeqs[labelKey(cand.arcs)] = true
				completed = append(completed, cand)
				if len(completed) >= opts.N {
					break
				}
			}
		}

		for it := f.Arcs(c.state); !it.Done(); it.Next() {
			a := it.Value()
			arcs := make([]fst.Arc, len(c.arcs)+1)
			copy(arcs, c.arcs)
			arcs[len(c.arcs)] = a
			frontier = append(frontier, pathCandidate{
				state:  a.NextState,
				weight: c.weight.Times(a.Weight),
				arcs:   arcs,
			})
		}
	}

	sort.Slice(completed, func(i, j int) bool {
		return weight.NaturalLess(completed[i].weight, completed[j].weight)
	})

	// All N paths share one start state, branching into N separate chains,
	// so the whole result is reachable from Start() rather than leaving
	// only the last path connected.
	start := out.AddState()
	out.SetStart(start)
	for _, c := range completed {
		s := start
		for _, a := range c.arcs {
			next := out.AddState()
			out.AddArc(s, fst.Arc{ILabel: a.ILabel, OLabel: a.OLabel, Weight: a.Weight, NextState: next})
			s = next
		}
		// The copied arcs carry only f's arc weights, so f's own final
		// weight goes on the path's last state.
		out.SetFinal(s, f.Final(c.state))
	}
	return out
}

func labelKey(arcs []fst.Arc) string {
	buf := make([]byte, 0, len(arcs)*9)
	for _, a := range arcs {
		buf = append(buf, byte(a.ILabel), byte(a.ILabel>>8), byte(a.ILabel>>16), byte(a.ILabel>>24), '|')
	}
	return string(buf)
}

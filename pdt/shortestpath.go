package pdt

import (
	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

// subgraphKey memoizes one paren scope's internal shortest distance.
// parenId == noScope marks the top-level scope, which has no enclosing
// paren to return control to.
type subgraphKey struct {
	parenId int
	start   fst.StateId
}

const noScope = -1

// ShortestDistance computes the shortest accepting weight of p directly
// on the unexpanded PDT, following spec.md §4.12: an open paren recurses
// into a memoized sub-graph search rooted at its destination; that
// sub-graph's distance to each of its own matching close parens is
// combined with the opening and closing arc weights and folded back into
// the distance at the close's destination, in the scope that opened it.
// Only states reachable with a balanced (possibly still-open, for nested
// recursive calls) paren sequence are ever visited, so the state space
// explored is bounded by reachable (state, scope) pairs rather than the
// full stack-configuration product Expand would materialize.
//
// This does not reconstruct the best path, only its weight: recovering
// the path by unwinding a stack of (paren-id, outer, inner) keys, as
// spec.md describes, is not implemented here — see DESIGN.md.
func ShortestDistance(p *PdtFst) weight.Weight {
	sr := p.F.Semiring()
	if p.F.Start() == fst.NoStateId {
		return sr.Zero()
	}
	memo := make(map[subgraphKey]map[fst.StateId]weight.Weight)
	d := subgraphDistance(p, memo, noScope, p.F.Start())

	best := sr.Zero()
	for s, ds := range d {
		if fw := p.F.Final(s); !fw.IsZero() {
			best = best.Plus(ds.Times(fw))
		}
	}
	return best
}

// subgraphDistance returns the shortest distance from start to every
// state reachable from it without leaving the scope opened by parenId
// (noScope for the top level): traversal stops at (but records the
// distance to) any arc closing parenId, and recurses through
// subgraphDistance itself for nested opens.
func subgraphDistance(p *PdtFst, memo map[subgraphKey]map[fst.StateId]weight.Weight, parenId int, start fst.StateId) map[fst.StateId]weight.Weight {
	key := subgraphKey{parenId, start}
	if d, ok := memo[key]; ok {
		return d
	}
	sr := p.F.Semiring()
	d := map[fst.StateId]weight.Weight{start: sr.One()}
	memo[key] = d

	queue := []fst.StateId{start}
	relax := func(s fst.StateId, w weight.Weight) {
		if cur, ok := d[s]; !ok || weight.NaturalLess(w, cur) {
			d[s] = w
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		ds := d[s]

		for it := p.F.Arcs(s); !it.Done(); it.Next() {
			arc := it.Value()
			role, isParen := p.roleOf(arc.ILabel)

			switch {
			case !isParen:
				relax(arc.NextState, ds.Times(arc.Weight))

			case !role.isOpen:
				// Close paren: if it matches the scope we are inside, its
				// distance is already recorded at s (the source state);
				// nothing more to relax within this scope. A close that
				// does not match this scope is dangling here and dropped.
				continue

			default:
				inner := subgraphDistance(p, memo, role.id, arc.NextState)
				for innerState, innerDist := range inner {
					for exitIt := p.F.Arcs(innerState); !exitIt.Done(); exitIt.Next() {
						exitArc := exitIt.Value()
						exitRole, exitIsParen := p.roleOf(exitArc.ILabel)
						if !exitIsParen || exitRole.isOpen || exitRole.id != role.id {
							continue
						}
						total := ds.Times(arc.Weight).Times(innerDist).Times(exitArc.Weight)
						relax(exitArc.NextState, total)
					}
				}
			}
		}
	}

	return d
}

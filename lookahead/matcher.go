// Package lookahead implements label matching and look-ahead path queries
// used by composition, per spec.md §4.11. There is no direct analogue in
// the teacher; the matcher's state-scoped find/iterate shape follows the
// same "set_state then query" discipline the teacher's xqwMap.Find uses for
// hashed lookups, generalized to FST arcs.
package lookahead

import (
	"sort"

	"github.com/mjansche/wfst-go/fst"
)

// Matcher answers, for a state s of an FST previously bound via SetState,
// which arcs leaving s carry a given label.
type Matcher interface {
	SetState(s fst.StateId)
	Find(label fst.Label) ArcRange
}

// ArcRange iterates the (contiguous, after sorting) run of arcs matching
// one label.
type ArcRange interface {
	Done() bool
	Value() fst.Arc
	Next()
}

// sortedMatcher matches against an FST's input (or output) labels. The FST
// need not be pre-sorted: every SetState call copies the state's arcs and
// sorts the copy by label, so the caller need not have called
// algo.ArcSort first.
type sortedMatcher struct {
	f        fst.Fst
	byOutput bool
	s        fst.StateId
	arcs     []fst.Arc
}

// NewMatcher returns a Matcher over f. If byOutput is true it matches on
// olabel (the side composition uses when matching "a's output" against
// "b's input"); otherwise it matches on ilabel.
func NewMatcher(f fst.Fst, byOutput bool) Matcher {
	return &sortedMatcher{f: f, byOutput: byOutput}
}

func (m *sortedMatcher) SetState(s fst.StateId) {
	m.s = s
	m.arcs = m.arcs[:0]
	for it := m.f.Arcs(s); !it.Done(); it.Next() {
		m.arcs = append(m.arcs, it.Value())
	}
	key := func(a fst.Arc) fst.Label {
		if m.byOutput {
			return a.OLabel
		}
		return a.ILabel
	}
	sort.Slice(m.arcs, func(i, j int) bool { return key(m.arcs[i]) < key(m.arcs[j]) })
}

func (m *sortedMatcher) Find(label fst.Label) ArcRange {
	key := func(a fst.Arc) fst.Label {
		if m.byOutput {
			return a.OLabel
		}
		return a.ILabel
	}
	lo := sort.Search(len(m.arcs), func(i int) bool { return key(m.arcs[i]) >= label })
	hi := lo
	for hi < len(m.arcs) && key(m.arcs[hi]) == label {
		hi++
	}
	return &sliceArcRange{arcs: m.arcs, pos: lo, end: hi}
}

type sliceArcRange struct {
	arcs     []fst.Arc
	pos, end int
}

func (r *sliceArcRange) Done() bool     { return r.pos >= r.end }
func (r *sliceArcRange) Value() fst.Arc { return r.arcs[r.pos] }
func (r *sliceArcRange) Next()          { r.pos++ }

// LookAheadMatcher pairs a Matcher with a look-ahead FST summarized by a
// live(q) predicate, per spec.md §4.11, and drops a whole match when the
// look-ahead FST cannot reach a final state from q. It does not check
// whether the matched arcs' own destinations can continue a path.
type LookAheadMatcher struct {
	Matcher
	live func(q fst.StateId) bool
}

// NewLookAheadMatcher wraps base with a look-ahead FST whose reachability
// is summarized by live: live(q) reports whether any final state is
// reachable from q in the look-ahead FST. Callers typically compute live
// once via a coaccessibility sweep (algo.Connect's backward reachability)
// and close over the resulting bitset.
func NewLookAheadMatcher(base Matcher, live func(q fst.StateId) bool) *LookAheadMatcher {
	return &LookAheadMatcher{Matcher: base, live: live}
}

// LookAheadFind returns Find(label)'s arcs unchanged when live is nil or
// live(q) reports true, and no arcs otherwise; the destinations of the
// individual arcs are not examined.
func (m *LookAheadMatcher) LookAheadFind(label fst.Label, q fst.StateId) ArcRange {
	r := m.Find(label)
	if m.live == nil || m.live(q) {
		return r
	}
	return &sliceArcRange{}
}

package algo

import (
	"encoding/binary"
	"sort"

	"github.com/mjansche/wfst-go/fst"
)

// unionFind is the teacher's hand-rolled disjoint-set structure
// (fslm_test.go). Equivalent joins every newly discovered state-set pair
// into the start pair's class; whether a pair was already explored is
// decided by a separate visited map, not by Find.
type unionFind []int

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = i
	}
	return uf
}

func (uf unionFind) Find(a int) int {
	r := uf[a]
	for r != uf[r] {
		r = uf[r]
	}
	for uf[a] != r {
		uf[a], a = r, uf[a]
	}
	return r
}

func (uf unionFind) Union(a, b int) int {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra != rb {
		uf[rb] = ra
	}
	return ra
}

// stateSet is a sorted, deduplicated set of states: the unit of the
// synchronized traversal below. A deterministic FST's states always appear
// here as singletons; a nondeterministic one contributes the full set of
// states reachable by a given label, so a single state on one side can be
// checked against several states on the other.
type stateSet []fst.StateId

func normalizeStateSet(ids []fst.StateId) stateSet {
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return stateSet(out)
}

// sep is a byte pattern that can never occur as the binary.BigEndian
// encoding of a valid state id (ids are non-negative, so an all-0xFF 8
// bytes can only encode -1) used to separate the two sides of a pair key.
var sep = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func appendStateSet(buf []byte, set stateSet) []byte {
	var b [8]byte
	for _, s := range set {
		binary.BigEndian.PutUint64(b[:], uint64(s))
		buf = append(buf, b[:]...)
	}
	return buf
}

func pairKey(a, b stateSet) string {
	buf := make([]byte, 0, 8*(len(a)+len(b))+8)
	buf = appendStateSet(buf, a)
	buf = append(buf, sep[:]...)
	buf = appendStateSet(buf, b)
	return string(buf)
}

func destinations(f fst.Fst, set stateSet, label fst.Label) stateSet {
	var next []fst.StateId
	for _, s := range set {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			if a.ILabel == label {
				next = append(next, a.NextState)
			}
		}
	}
	return normalizeStateSet(next)
}

func labelsOf(f fst.Fst, set stateSet, into map[fst.Label]bool) {
	for _, s := range set {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			into[it.Value().ILabel] = true
		}
	}
}

func anyFinal(f fst.Fst, set stateSet) bool {
	for _, s := range set {
		if !f.Final(s).IsZero() {
			return true
		}
	}
	return false
}

func startStates(f fst.Fst) []fst.StateId {
	if f.Start() == fst.NoStateId {
		return nil
	}
	return []fst.StateId{f.Start()}
}

// Equivalent reports whether two weighted acceptors f and g accept the same
// weighted language, per spec.md §4.4 and §4.6's congruence-closure
// traversal. It does not require either side to be deterministic: the
// traversal runs over pairs of state SETS (the states of f, resp. g,
// reachable by the input string read so far), which is on-the-fly subset
// construction performed on both sides at once. A deterministic FST simply
// contributes singleton sets throughout, so this subsumes the deterministic
// case exactly; a nondeterministic side's multiple arcs under one label
// fold into a single successor set the other side is compared against,
// e.g. a single state with "b" and "c" arcs compares equal to two states
// that split into a "b" branch and a "c" branch. Each newly discovered
// set-pair is recorded in a visited map, so a pair already checked is
// never rechecked.
//
// Final-weight comparison is exact only while both sides of a pair remain
// singletons, i.e. while both FSTs are locally deterministic along the
// string seen so far; once either side's set holds more than one state,
// this only checks that both sides agree on whether the string is accepted
// at all, not on the exact combined weight, since summing weight across
// multiple nondeterministic paths correctly requires weight-pushing this
// implementation does not perform (see DESIGN.md).
func Equivalent(f, g fst.ExpandedFst, delta float64) bool {
	startA := normalizeStateSet(startStates(f))
	startB := normalizeStateSet(startStates(g))

	ids := make(map[string]int)
	idOf := func(a, b stateSet) int {
		k := pairKey(a, b)
		if id, ok := ids[k]; ok {
			return id
		}
		id := len(ids)
		ids[k] = id
		return id
	}
	uf := newUnionFind(0)
	grow := func() {
		for len(uf) < len(ids) {
			uf = append(uf, len(uf))
		}
	}

	type pair struct{ a, b stateSet }
	startId := idOf(startA, startB)
	grow()
	visited := map[int]bool{startId: true}
	queue := []pair{{startA, startB}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if anyFinal(f, p.a) != anyFinal(g, p.b) {
			return false
		}
		if len(p.a) == 1 && len(p.b) == 1 {
			if !f.Final(p.a[0]).ApproxEqual(g.Final(p.b[0]), delta) {
				return false
			}
		}

		labels := make(map[fst.Label]bool)
		labelsOf(f, p.a, labels)
		labelsOf(g, p.b, labels)

		for label := range labels {
			nextA := destinations(f, p.a, label)
			nextB := destinations(g, p.b, label)
			id := idOf(nextA, nextB)
			grow()
			if visited[id] {
				continue
			}
			visited[id] = true
			uf.Union(startId, id)
			queue = append(queue, pair{nextA, nextB})
		}
	}
	return true
}

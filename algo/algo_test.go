package algo

import (
	"testing"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

// linearAcceptor builds a linear-chain acceptor over the given int labels,
// each arc weight one, final weight one: the minimal fixture needed by
// most of the tests below, in the same "one small reusable fixture" style
// as the teacher's readyBuilder.
func linearAcceptor(sr weight.Semiring, labels ...fst.Label) *fst.VectorFst {
	f := fst.NewVectorFst(sr)
	s := f.AddState()
	f.SetStart(s)
	for _, l := range labels {
		next := f.AddState()
		f.AddArc(s, fst.Arc{ILabel: l, OLabel: l, Weight: sr.One(), NextState: next})
		s = next
	}
	f.SetFinal(s, sr.One())
	return f
}

func TestArcSortOrdersByILabel(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 3, OLabel: 3, Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: sr.One(), NextState: s1})
	f.SetFinal(s1, sr.One())

	ArcSort(f, ByILabel)

	var got []fst.Label
	for it := f.Arcs(s0); !it.Done(); it.Next() {
		got = append(got, it.Value().ILabel)
	}
	want := []fst.Label{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ArcSort order = %v, want %v", got, want)
		}
	}
}

func TestConnectTrimsDeadStates(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	start := f.AddState()
	live := f.AddState()
	dead := f.AddState() // unreachable from start
	f.SetStart(start)
	f.AddArc(start, fst.Arc{ILabel: 1, OLabel: 1, Weight: sr.One(), NextState: live})
	f.SetFinal(live, sr.One())
	_ = dead

	Connect(f)

	if f.NumStates() != 2 {
		t.Errorf("expected Connect to trim the unreachable state, got %d states", f.NumStates())
	}
}

func TestShortestDistanceLinearChain(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: weight.TropicalWeight(1), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: 2, OLabel: 2, Weight: weight.TropicalWeight(2), NextState: s2})
	f.SetFinal(s2, sr.One())

	d := ShortestDistance(f, ShortestDistanceOptions{})
	if !d[s2].Equal(weight.TropicalWeight(3)) {
		t.Errorf("expected shortest distance to s2 = 3, got %v", d[s2])
	}
}

func TestShortestPathPicksCheaperBranch(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: weight.TropicalWeight(5), NextState: s2})
	f.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: weight.TropicalWeight(1), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: 3, OLabel: 3, Weight: weight.TropicalWeight(1), NextState: s2})
	f.SetFinal(s2, sr.One())

	best := ShortestPath(f, ShortestPathOptions{N: 1})
	var labels []fst.Label
	for s := fst.StateId(0); int(s) < best.NumStates(); s++ {
		for it := best.Arcs(s); !it.Done(); it.Next() {
			labels = append(labels, it.Value().ILabel)
		}
	}
	if len(labels) != 2 || labels[0] != 2 || labels[1] != 3 {
		t.Errorf("expected best path labels [2 3] (total weight 2), got %v", labels)
	}
}

func TestEqualDetectsStructuralDifference(t *testing.T) {
	sr := weight.TropicalSemiring{}
	a := linearAcceptor(sr, 1, 2)
	b := linearAcceptor(sr, 1, 3)
	if Equal(a, b, 1e-6) {
		t.Errorf("expected Equal to detect differing olabel")
	}
	c := linearAcceptor(sr, 1, 2)
	if !Equal(a, c, 1e-6) {
		t.Errorf("expected two identically-built linear acceptors to be Equal")
	}
}

func TestEquivalentIdenticalVsDifferentLanguage(t *testing.T) {
	sr := weight.TropicalSemiring{}
	a := linearAcceptor(sr, 1, 2)
	b := linearAcceptor(sr, 1, 2)
	if !Equivalent(a, b, 1e-6) {
		t.Errorf("expected two identical deterministic acceptors to be Equivalent")
	}
	c := linearAcceptor(sr, 1, 3)
	if Equivalent(a, c, 1e-6) {
		t.Errorf("expected acceptors over different languages to be inequivalent")
	}
}

func TestEquivalentAcceptsNondeterministicSide(t *testing.T) {
	sr := weight.TropicalSemiring{}

	// Deterministic: 0 --a--> 1 --b--> 2(final); 1 --c--> 3(final).
	det := fst.NewVectorFst(sr)
	d0 := det.AddState()
	d1 := det.AddState()
	d2 := det.AddState()
	d3 := det.AddState()
	det.SetStart(d0)
	det.AddArc(d0, fst.Arc{ILabel: 'a', OLabel: 'a', Weight: sr.One(), NextState: d1})
	det.AddArc(d1, fst.Arc{ILabel: 'b', OLabel: 'b', Weight: sr.One(), NextState: d2})
	det.AddArc(d1, fst.Arc{ILabel: 'c', OLabel: 'c', Weight: sr.One(), NextState: d3})
	det.SetFinal(d2, sr.One())
	det.SetFinal(d3, sr.One())

	// Nondeterministic: 0 has two arcs labeled a, one leading into the "b"
	// branch and one into the "c" branch.
	nondet := fst.NewVectorFst(sr)
	n0 := nondet.AddState()
	n1 := nondet.AddState()
	n2 := nondet.AddState()
	n3 := nondet.AddState()
	n4 := nondet.AddState()
	nondet.SetStart(n0)
	nondet.AddArc(n0, fst.Arc{ILabel: 'a', OLabel: 'a', Weight: sr.One(), NextState: n1})
	nondet.AddArc(n0, fst.Arc{ILabel: 'a', OLabel: 'a', Weight: sr.One(), NextState: n2})
	nondet.AddArc(n1, fst.Arc{ILabel: 'b', OLabel: 'b', Weight: sr.One(), NextState: n3})
	nondet.AddArc(n2, fst.Arc{ILabel: 'c', OLabel: 'c', Weight: sr.One(), NextState: n4})
	nondet.SetFinal(n3, sr.One())
	nondet.SetFinal(n4, sr.One())

	if !Equivalent(det, nondet, 1e-6) {
		t.Errorf("expected deterministic {ab,ac} acceptor to be Equivalent to its nondeterministic counterpart")
	}

	other := linearAcceptor(sr, 'a')
	if Equivalent(other, nondet, 1e-6) {
		t.Errorf("expected an acceptor over a different language to be inequivalent to the nondeterministic one")
	}
}

func TestUnionAcceptsBothLanguages(t *testing.T) {
	sr := weight.TropicalSemiring{}
	a := linearAcceptor(sr, 1)
	b := linearAcceptor(sr, 2)
	Union(a, b)

	if a.Start() == fst.NoStateId {
		t.Fatalf("expected Union to leave a start state set")
	}
	var firstLabels []fst.Label
	for it := a.Arcs(a.Start()); !it.Done(); it.Next() {
		firstLabels = append(firstLabels, it.Value().ILabel)
	}
	// Either a fresh epsilon-branching start, or (if a's old start had no
	// entering arcs) a direct epsilon arc to b: either way exactly one
	// epsilon-reachable path must carry label 1 and another label 2.
	if len(firstLabels) == 0 {
		t.Errorf("expected Union's start state to have outgoing arcs")
	}
	reached := map[fst.Label]bool{}
	seen := map[fst.StateId]bool{a.Start(): true}
	frontier := []fst.StateId{a.Start()}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for it := a.Arcs(s); !it.Done(); it.Next() {
			arc := it.Value()
			if arc.ILabel != fst.Epsilon {
				reached[arc.ILabel] = true
			} else if !seen[arc.NextState] {
				seen[arc.NextState] = true
				frontier = append(frontier, arc.NextState)
			}
		}
	}
	if !reached[1] || !reached[2] {
		t.Errorf("expected labels 1 and 2 reachable from Union's start via epsilon arcs, got %v", reached)
	}
}

func TestClosureStarAcceptsEmptyString(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := linearAcceptor(sr, 1)
	ClosureStar(f)
	if f.Final(f.Start()).IsZero() {
		t.Errorf("expected closure-star's new start state to be final (accepts epsilon)")
	}
}

func TestClosurePlusDoesNotAcceptEmptyString(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := linearAcceptor(sr, 1)
	oldStart := f.Start()
	ClosurePlus(f)
	if f.Start() != oldStart {
		t.Errorf("expected closure-plus to keep the original start state")
	}
	if !f.Final(f.Start()).IsZero() {
		t.Errorf("expected closure-plus's start state to stay non-final (no empty string)")
	}
}

func TestComposeMatchesLabels(t *testing.T) {
	sr := weight.TropicalSemiring{}
	// a: 0 --1:2/1--> 1(final)
	a := fst.NewVectorFst(sr)
	a0 := a.AddState()
	a1 := a.AddState()
	a.SetStart(a0)
	a.AddArc(a0, fst.Arc{ILabel: 1, OLabel: 2, Weight: weight.TropicalWeight(1), NextState: a1})
	a.SetFinal(a1, sr.One())

	// b: 0 --2:3/1--> 1(final)
	b := fst.NewVectorFst(sr)
	b0 := b.AddState()
	b1 := b.AddState()
	b.SetStart(b0)
	b.AddArc(b0, fst.Arc{ILabel: 2, OLabel: 3, Weight: weight.TropicalWeight(1), NextState: b1})
	b.SetFinal(b1, sr.One())

	comp := Compose(a, b, 0)
	start := comp.Start()
	var got fst.Arc
	n := 0
	for it := comp.Arcs(start); !it.Done(); it.Next() {
		got = it.Value()
		n++
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 composed arc, got %d", n)
	}
	if got.ILabel != 1 || got.OLabel != 3 {
		t.Errorf("expected composed arc labeled 1:3, got %d:%d", got.ILabel, got.OLabel)
	}
	if !got.Weight.Equal(weight.TropicalWeight(2)) {
		t.Errorf("expected composed arc weight 1+1=2, got %v", got.Weight)
	}
	if !comp.Final(got.NextState).Equal(sr.One()) {
		t.Errorf("expected composed final state to be final")
	}
}

func TestIntersectRejectsNonAcceptor(t *testing.T) {
	sr := weight.TropicalSemiring{}
	a := fst.NewVectorFst(sr)
	s0 := a.AddState()
	s1 := a.AddState()
	a.SetStart(s0)
	a.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 2, Weight: sr.One(), NextState: s1})
	a.SetFinal(s1, sr.One())

	b := linearAcceptor(sr, 1)

	if _, ok := Intersect(a, b, 0); ok {
		t.Errorf("expected Intersect to reject a non-acceptor input")
	}
}

func TestMinimizeMergesEquivalentStates(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	// Two branches from start both labeled 1 then both final: should
	// collapse into a single 2-state chain after minimization.
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: sr.One(), NextState: s2})
	f.SetFinal(s1, sr.One())
	f.SetFinal(s2, sr.One())

	if err := Minimize(f, MinimizeOptions{Delta: 1e-6, AllowNondeterministic: true}); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if f.NumStates() != 2 {
		t.Errorf("expected minimize to collapse the two equivalent final states, got %d states", f.NumStates())
	}
}

// TestMinimizeDistinguishesStatesByDestinationClass guards against merging
// states that merely share an outgoing-label set: after consuming 'x', the
// acceptor takes only "c"; after 'y', it takes only "cd". State 1 (reached
// via 'x') and state 2 (reached via 'y') both have a single outgoing arc
// labeled 'c', but they lead to different classes (one is final, the other
// needs a further 'd') and so must not collapse into one state.
func TestMinimizeDistinguishesStatesByDestinationClass(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState() // accepts "c"
	s2 := f.AddState() // accepts "cd"
	s3 := f.AddState() // final after c from s1
	s4 := f.AddState() // mid-state after c from s2
	s5 := f.AddState() // final after d from s4
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 'x', OLabel: 'x', Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 'y', OLabel: 'y', Weight: sr.One(), NextState: s2})
	f.AddArc(s1, fst.Arc{ILabel: 'c', OLabel: 'c', Weight: sr.One(), NextState: s3})
	f.AddArc(s2, fst.Arc{ILabel: 'c', OLabel: 'c', Weight: sr.One(), NextState: s4})
	f.AddArc(s4, fst.Arc{ILabel: 'd', OLabel: 'd', Weight: sr.One(), NextState: s5})
	f.SetFinal(s3, sr.One())
	f.SetFinal(s5, sr.One())

	if err := Minimize(f, MinimizeOptions{Delta: 1e-6, AllowNondeterministic: true}); err != nil {
		t.Fatalf("Minimize: %v", err)
	}

	// Re-walk from the start consuming 'x','c' and separately 'y','c','d'
	// and confirm both land on a final state: a wrongful merge of s1 and
	// s2 would make "xc" accept without needing the 'd', or make "ycd"
	// fail to reach a final state at all.
	walk := func(labels ...fst.Label) bool {
		s := f.Start()
		for _, l := range labels {
			next := fst.NoStateId
			for it := f.Arcs(s); !it.Done(); it.Next() {
				a := it.Value()
				if a.ILabel == l {
					next = a.NextState
					break
				}
			}
			if next == fst.NoStateId {
				return false
			}
			s = next
		}
		return !f.Final(s).IsZero()
	}

	if !walk('x', 'c') {
		t.Errorf("expected \"xc\" to still be accepted after minimize")
	}
	if walk('x', 'c', 'd') {
		t.Errorf("expected \"xcd\" to still be rejected after minimize (s1 must not have gained s2's 'd' arc)")
	}
	if !walk('y', 'c', 'd') {
		t.Errorf("expected \"ycd\" to still be accepted after minimize")
	}
	if walk('y', 'c') {
		t.Errorf("expected \"yc\" alone to still be rejected after minimize (s2 must not have gained s1's acceptance)")
	}
}

package fst

import (
	"bytes"
	"os"
	"testing"

	"github.com/mjansche/wfst-go/weight"
)

// buildSample constructs a small three-state acceptor-ish transducer
// shared by several tests below, in the same "build one fixture, reuse it
// across table-driven cases" style as the teacher's readyBuilder helper.
func buildSample(t *testing.T) *VectorFst {
	t.Helper()
	f := NewVectorFst(weight.TropicalSemiring{})
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, Arc{ILabel: 1, OLabel: 1, Weight: weight.TropicalWeight(1.0), NextState: s1})
	f.AddArc(s0, Arc{ILabel: 2, OLabel: 2, Weight: weight.TropicalWeight(2.0), NextState: s2})
	f.AddArc(s1, Arc{ILabel: 3, OLabel: 3, Weight: weight.TropicalWeight(0.5), NextState: s2})
	f.SetFinal(s2, weight.TropicalWeight(0))
	return f
}

func collectArcs(f Fst, s StateId) []Arc {
	var arcs []Arc
	for it := f.Arcs(s); !it.Done(); it.Next() {
		arcs = append(arcs, it.Value())
	}
	return arcs
}

func TestVectorFstBasics(t *testing.T) {
	f := buildSample(t)
	if f.NumStates() != 3 {
		t.Fatalf("expected 3 states, got %d", f.NumStates())
	}
	if got := len(collectArcs(f, f.Start())); got != 2 {
		t.Errorf("expected 2 arcs out of start state, got %d", got)
	}
	if !f.Final(1).IsZero() {
		t.Errorf("state 1 was never passed to SetFinal and should not be final")
	}
}

// TestVectorFstCopyOnWrite checks that Copy shares state until one handle
// mutates, the same discipline the teacher relies on for Vocab.Copy.
func TestVectorFstCopyOnWrite(t *testing.T) {
	f := buildSample(t)
	g := f.Copy().(*VectorFst)

	g.AddArc(StateId(0), Arc{ILabel: 9, OLabel: 9, Weight: weight.TropicalOne(), NextState: StateId(1)})

	if got := len(collectArcs(f, 0)); got != 2 {
		t.Errorf("original handle mutated by copy's AddArc: got %d arcs, want 2", got)
	}
	if got := len(collectArcs(g, 0)); got != 3 {
		t.Errorf("copy's AddArc did not take effect: got %d arcs, want 3", got)
	}
}

func TestDeleteStatesRenumbers(t *testing.T) {
	f := buildSample(t)
	f.DeleteStates([]StateId{1})
	if f.NumStates() != 2 {
		t.Fatalf("expected 2 states after deleting one, got %d", f.NumStates())
	}
	// The arc from state 0 to the old state 1 must be gone; the arc to the
	// old state 2 (now state 1) must survive with a renumbered target.
	arcs := collectArcs(f, 0)
	if len(arcs) != 1 {
		t.Fatalf("expected 1 surviving arc out of state 0, got %d", len(arcs))
	}
	if arcs[0].NextState != StateId(1) {
		t.Errorf("expected surviving arc to point at renumbered state 1, got %d", arcs[0].NextState)
	}
}

func TestComputedProperties(t *testing.T) {
	f := buildSample(t)
	props := f.Properties(Acceptor|NotAcceptor|Cyclic|Acyclic|Accessible|NotAccessible, true)
	if !props.Has(Acceptor) {
		t.Errorf("sample FST has ilabel==olabel everywhere, expected Acceptor")
	}
	if !props.Has(Acyclic) {
		t.Errorf("sample FST has no cycles, expected Acyclic")
	}
	if !props.Has(Accessible) {
		t.Errorf("every state in sample FST is reachable, expected Accessible")
	}
}

func TestConstFstMatchesVector(t *testing.T) {
	v := buildSample(t)
	c := NewConstFst(v)
	if c.NumStates() != v.NumStates() {
		t.Fatalf("ConstFst/VectorFst state count mismatch: %d vs %d", c.NumStates(), v.NumStates())
	}
	for s := StateId(0); int(s) < v.NumStates(); s++ {
		va, ca := collectArcs(v, s), collectArcs(c, s)
		if len(va) != len(ca) {
			t.Fatalf("state %d: arc count mismatch %d vs %d", s, len(va), len(ca))
		}
		for i := range va {
			if va[i].ILabel != ca[i].ILabel || va[i].OLabel != ca[i].OLabel || va[i].NextState != ca[i].NextState {
				t.Errorf("state %d arc %d mismatch: %+v vs %+v", s, i, va[i], ca[i])
			}
			if !va[i].Weight.Equal(ca[i].Weight) {
				t.Errorf("state %d arc %d weight mismatch: %v vs %v", s, i, va[i].Weight, ca[i].Weight)
			}
		}
		if !v.Final(s).Equal(c.Final(s)) {
			t.Errorf("state %d final weight mismatch: %v vs %v", s, v.Final(s), c.Final(s))
		}
	}
}

func TestConstFstBinaryRoundTrip(t *testing.T) {
	v := buildSample(t)
	c := NewConstFst(v)

	tmp, err := os.CreateTemp("", "fst-const-*.bin")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := WriteConstFst(c, path); err != nil {
		t.Fatalf("WriteConstFst: %v", err)
	}
	c2, err := ReadConstFst(path, weight.TropicalSemiring{})
	if err != nil {
		t.Fatalf("ReadConstFst: %v", err)
	}
	defer c2.Close()

	if c2.NumStates() != c.NumStates() || c2.Start() != c.Start() {
		t.Fatalf("round-tripped FST shape mismatch")
	}
	for s := StateId(0); int(s) < c.NumStates(); s++ {
		a1, a2 := collectArcs(c, s), collectArcs(c2, s)
		if len(a1) != len(a2) {
			t.Fatalf("state %d: arc count mismatch after round trip", s)
		}
		for i := range a1 {
			if a1[i].ILabel != a2[i].ILabel || a1[i].OLabel != a2[i].OLabel || a1[i].NextState != a2[i].NextState {
				t.Errorf("state %d arc %d mismatch after round trip: %+v vs %+v", s, i, a1[i], a2[i])
			}
		}
		if !c.Final(s).Equal(c2.Final(s)) {
			t.Errorf("state %d final weight mismatch after round trip", s)
		}
	}
}

func TestCompactFstAcceptorRoundTrip(t *testing.T) {
	v := buildSample(t)
	c := NewCompactFst(v, AcceptorCompactor{})
	for s := StateId(0); int(s) < v.NumStates(); s++ {
		va, ca := collectArcs(v, s), collectArcs(c, s)
		if len(va) != len(ca) {
			t.Fatalf("state %d: arc count mismatch %d vs %d", s, len(va), len(ca))
		}
		for i := range va {
			if va[i].ILabel != ca[i].ILabel || va[i].NextState != ca[i].NextState {
				t.Errorf("state %d arc %d mismatch: %+v vs %+v", s, i, va[i], ca[i])
			}
		}
		if !v.Final(s).Equal(c.Final(s)) {
			t.Errorf("state %d final weight mismatch: %v vs %v", s, v.Final(s), c.Final(s))
		}
	}
}

// TestEditFstDoesNotMutateBase verifies the copy-on-write promotion: edits
// through an EditFst must never be visible on the wrapped base FST.
func TestEditFstDoesNotMutateBase(t *testing.T) {
	base := NewConstFst(buildSample(t))
	e := NewEditFst(base)

	e.AddArc(StateId(0), Arc{ILabel: 42, OLabel: 42, Weight: weight.TropicalOne(), NextState: StateId(1)})

	if got := len(collectArcs(base, 0)); got != 2 {
		t.Errorf("EditFst.AddArc leaked into base: got %d arcs out of state 0, want 2", got)
	}
	if got := len(collectArcs(e, 0)); got != 3 {
		t.Errorf("EditFst overlay did not record AddArc: got %d arcs, want 3", got)
	}
}

func TestATTRoundTrip(t *testing.T) {
	v := buildSample(t)
	var buf bytes.Buffer
	if err := WriteATT(v, &buf); err != nil {
		t.Fatalf("WriteATT: %v", err)
	}

	got, err := ReadATT(&buf, weight.TropicalSemiring{})
	if err != nil {
		t.Fatalf("ReadATT: %v", err)
	}
	if got.NumStates() != v.NumStates() {
		t.Fatalf("expected %d states, got %d", v.NumStates(), got.NumStates())
	}
	totalArcs := 0
	for s := StateId(0); int(s) < got.NumStates(); s++ {
		totalArcs += got.NumArcs(s)
	}
	if totalArcs != 3 {
		t.Errorf("expected 3 arcs total after AT&T round trip, got %d", totalArcs)
	}
}

func TestReadLabelPairsRejectsNegativeByDefault(t *testing.T) {
	r := bytes.NewBufferString("1\t2\n3\t-1\n")
	if _, err := ReadLabelPairs(r, false); err == nil {
		t.Errorf("expected error for negative label with allowNegative=false")
	}
}

func TestReadLabelPairsAllowsNegativeWhenAsked(t *testing.T) {
	r := bytes.NewBufferString("1\t2\n3\t-1\n")
	pairs, err := ReadLabelPairs(r, true)
	if err != nil {
		t.Fatalf("ReadLabelPairs: %v", err)
	}
	if len(pairs) != 2 || pairs[1][1] != -1 {
		t.Errorf("unexpected parse result: %+v", pairs)
	}
}

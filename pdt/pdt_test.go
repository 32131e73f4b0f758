package pdt

import (
	"testing"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

// buildBalancedParen builds a one-paren PDT accepting "(" w ")" for a
// single inner label w, i.e. the bracketed language {( w )}.
func buildBalancedParen(sr weight.Semiring) (*fst.VectorFst, ParenPair) {
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	s3 := f.AddState()
	f.SetStart(s0)
	const open fst.Label = 100
	const close fst.Label = 101
	const inner fst.Label = 5
	f.AddArc(s0, fst.Arc{ILabel: open, OLabel: open, Weight: weight.TropicalWeight(1), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: inner, OLabel: inner, Weight: weight.TropicalWeight(2), NextState: s3})
	f.AddArc(s3, fst.Arc{ILabel: close, OLabel: close, Weight: weight.TropicalWeight(1), NextState: s2})
	f.SetFinal(s2, sr.One())
	return f, ParenPair{Open: open, Close: close}
}

func TestExpandStartOffersOnlyOpenParen(t *testing.T) {
	sr := weight.TropicalSemiring{}
	base, pair := buildBalancedParen(sr)
	p := NewPdtFst(base, []ParenPair{pair})

	expanded := Expand(p, 0, true)
	// Start state (orig s0, empty stack) should only offer the open-paren
	// arc and should not be final.
	if !expanded.Final(expanded.Start()).IsZero() {
		t.Errorf("expected start of expansion to be non-final (stack not yet closed)")
	}
	n := 0
	for it := expanded.Arcs(expanded.Start()); !it.Done(); it.Next() {
		if l := it.Value().ILabel; l != pair.Open {
			t.Errorf("expected only the open-paren arc out of the start, got label %d", l)
		}
		n++
	}
	if n != 1 {
		t.Errorf("expected exactly 1 arc out of the start, got %d", n)
	}
}

func TestExpandAcceptsBalancedPath(t *testing.T) {
	sr := weight.TropicalSemiring{}
	base, pair := buildBalancedParen(sr)
	p := NewPdtFst(base, []ParenPair{pair})
	expanded := Expand(p, 0, true)

	// Walk open -> inner -> close and confirm we land on a final state.
	s := expanded.Start()
	s = firstArcTo(t, expanded, s, pair.Open)
	s = firstArcTo(t, expanded, s, 5)
	s = firstArcTo(t, expanded, s, pair.Close)
	if expanded.Final(s).IsZero() {
		t.Errorf("expected state after balanced open/inner/close to be final")
	}
}

func firstArcTo(t *testing.T, f fst.Fst, s fst.StateId, label fst.Label) fst.StateId {
	t.Helper()
	for it := f.Arcs(s); !it.Done(); it.Next() {
		a := it.Value()
		if a.ILabel == label {
			return a.NextState
		}
	}
	t.Fatalf("no arc labeled %d out of state %d", label, s)
	return fst.NoStateId
}

func TestShortestDistanceSumsOpenInnerClose(t *testing.T) {
	sr := weight.TropicalSemiring{}
	base, pair := buildBalancedParen(sr)
	p := NewPdtFst(base, []ParenPair{pair})

	got := ShortestDistance(p)
	// Tropical: open(1) + inner(2) + close(1) = 4.
	want := weight.TropicalWeight(4)
	if !got.Equal(want) {
		t.Errorf("ShortestDistance = %v, want %v", got, want)
	}
}

func TestMpdtExpandRespectsIndependentLevels(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	s2 := f.AddState()
	f.SetStart(s0)
	const openA, closeA fst.Label = 200, 201
	const openB, closeB fst.Label = 202, 203
	f.AddArc(s0, fst.Arc{ILabel: openA, OLabel: openA, Weight: sr.One(), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: openB, OLabel: openB, Weight: sr.One(), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: closeB, OLabel: closeB, Weight: sr.One(), NextState: s1})
	f.AddArc(s1, fst.Arc{ILabel: closeA, OLabel: closeA, Weight: sr.One(), NextState: s2})
	f.SetFinal(s2, sr.One())

	m := NewMpdtFst(f, []MpdtParen{
		{Open: openA, Close: closeA, Level: 0},
		{Open: openB, Close: closeB, Level: 1},
	}, 2, nil, nil)

	expanded := ExpandMpdt(m, 0, true)
	s := expanded.Start()
	s = firstArcTo(t, expanded, s, openA)
	s = firstArcTo(t, expanded, s, openB)
	s = firstArcTo(t, expanded, s, closeB)
	s = firstArcTo(t, expanded, s, closeA)
	if expanded.Final(s).IsZero() {
		t.Errorf("expected state after nested-and-closed A/B parens to be final")
	}
}

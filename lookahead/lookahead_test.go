package lookahead

import (
	"testing"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

func buildFanOut(sr weight.Semiring) *fst.VectorFst {
	f := fst.NewVectorFst(sr)
	s0 := f.AddState()
	s1 := f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, fst.Arc{ILabel: 2, OLabel: 2, Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: sr.One(), NextState: s1})
	f.AddArc(s0, fst.Arc{ILabel: 1, OLabel: 1, Weight: weight.TropicalWeight(2), NextState: s1})
	f.SetFinal(s1, sr.One())
	return f
}

func TestMatcherFindReturnsOnlyMatchingLabel(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := buildFanOut(sr)
	m := NewMatcher(f, false)
	m.SetState(f.Start())

	r := m.Find(1)
	count := 0
	for ; !r.Done(); r.Next() {
		if r.Value().ILabel != 1 {
			t.Errorf("Find(1) returned arc with ilabel %d", r.Value().ILabel)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 arcs labeled 1, got %d", count)
	}

	r = m.Find(3)
	if !r.Done() {
		t.Errorf("expected no arcs labeled 3")
	}
}

func TestLookAheadMatcherPrunesWhenNotLive(t *testing.T) {
	sr := weight.TropicalSemiring{}
	f := buildFanOut(sr)
	base := NewMatcher(f, false)
	base.SetState(f.Start())
	dead := NewLookAheadMatcher(base, func(fst.StateId) bool { return false })

	r := dead.LookAheadFind(1, 0)
	if !r.Done() {
		t.Errorf("expected LookAheadFind to prune all arcs when live reports false")
	}

	live := NewLookAheadMatcher(base, func(fst.StateId) bool { return true })
	r = live.LookAheadFind(1, 0)
	if r.Done() {
		t.Errorf("expected LookAheadFind to pass arcs through when live reports true")
	}
}

func TestFastLogAccumulatorSumMatchesDirect(t *testing.T) {
	sr := weight.TropicalSemiring{}
	ws := make([]weight.Weight, 40)
	for i := range ws {
		ws[i] = weight.TropicalWeight(float32(i))
	}
	var acc FastLogAccumulator
	acc.Init(ws, sr)

	for _, rng := range [][2]int{{0, 0}, {0, 40}, {3, 5}, {16, 33}, {20, 20}, {1, 39}} {
		got := acc.Sum(rng[0], rng[1])
		want := sr.Zero()
		for i := rng[0]; i < rng[1]; i++ {
			want = want.Plus(ws[i])
		}
		if !got.Equal(want) {
			t.Errorf("Sum(%d,%d) = %v, want %v", rng[0], rng[1], got, want)
		}
	}
}

func TestCacheLogAccumulatorMatchesFastLog(t *testing.T) {
	sr := weight.TropicalSemiring{}
	ws := make([]weight.Weight, 25)
	for i := range ws {
		ws[i] = weight.TropicalWeight(float32(i % 7))
	}
	var fast FastLogAccumulator
	fast.Init(ws, sr)
	var cached CacheLogAccumulator
	cached.Init(ws, sr)

	for _, rng := range [][2]int{{0, 25}, {2, 19}, {10, 10}} {
		a := fast.Sum(rng[0], rng[1])
		b := cached.Sum(rng[0], rng[1])
		if !a.Equal(b) {
			t.Errorf("Sum(%d,%d): fast=%v cache=%v", rng[0], rng[1], a, b)
		}
	}
}

package cache

import (
	"testing"

	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

func TestDelayedExpandsLazily(t *testing.T) {
	calls := 0
	expand := func(s fst.StateId, store *Store) {
		calls++
		store.SetArcs(s, []fst.Arc{{ILabel: 1, OLabel: 1, Weight: weight.TropicalOne(), NextState: fst.StateId(1)}})
		store.SetFinal(s, weight.TropicalZero())
	}
	d := NewDelayed("test", weight.TropicalSemiring{}, 0, expand)
	d.Store().SetStart(fst.StateId(0))

	if calls != 0 {
		t.Fatalf("expand must not run before any query, ran %d times", calls)
	}
	if d.NumArcs(fst.StateId(0)) != 1 {
		t.Errorf("expected 1 arc after first query")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 expansion, got %d", calls)
	}
	d.Final(fst.StateId(0))
	if calls != 1 {
		t.Errorf("expansion must be cached, not repeated: ran %d times", calls)
	}
}

func TestStoreByteBudgetEviction(t *testing.T) {
	s := New(1) // tiny budget forces eviction on every SetArcs
	arcs := []fst.Arc{{ILabel: 1, OLabel: 1, Weight: weight.TropicalOne(), NextState: fst.StateId(1)}}
	s.SetArcs(fst.StateId(0), arcs)
	s.SetArcs(fst.StateId(1), arcs)
	s.SetArcs(fst.StateId(2), arcs)

	// The oldest, previously-accessed state should have been evicted by
	// the two-pass sweep; the most recent must still be cached.
	if !s.HasArcs(fst.StateId(2)) {
		t.Errorf("most recently expanded state should survive GC")
	}
}

func TestCacheOnlyLastState(t *testing.T) {
	s := New(0)
	s.SetCacheOnlyLastState()
	arcs := []fst.Arc{{ILabel: 1, OLabel: 1, Weight: weight.TropicalOne(), NextState: fst.StateId(1)}}
	s.SetArcs(fst.StateId(0), arcs)
	s.SetArcs(fst.StateId(1), arcs)

	if s.HasArcs(fst.StateId(0)) {
		t.Errorf("cache-only-last-state mode should have evicted state 0")
	}
	if !s.HasArcs(fst.StateId(1)) {
		t.Errorf("cache-only-last-state mode should retain the most recent state")
	}
}

func TestSafeCopyIndependence(t *testing.T) {
	expand := func(s fst.StateId, store *Store) {
		store.SetArcs(s, []fst.Arc{{ILabel: 1, OLabel: 1, Weight: weight.TropicalOne(), NextState: fst.StateId(1)}})
	}
	d := NewDelayed("test", weight.TropicalSemiring{}, 0, expand)
	d.Store().SetStart(fst.StateId(0))
	d.NumArcs(fst.StateId(0))

	copied := d.Copy()
	copied.(*Delayed).store.evictAllBut(-1)

	if !d.store.HasArcs(fst.StateId(0)) {
		t.Errorf("evicting the copy's cache must not affect the original")
	}
}

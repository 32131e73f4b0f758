// Package cache implements the cache store and delayed-FST skeleton of
// spec.md §4.2: a state-indexed cache with byte-budget eviction, and a
// thin wrapper that turns a per-state "expand" callback into a read-only
// fst.Fst.
//
// The teacher has no delayed-computation concept of its own (Hashed and
// Sorted are both fully materialized before use), so this package is
// grounded less on a single teacher file and more on the teacher's general
// discipline of explicit, inspectable state (xqwBuckets' fixed per-state
// storage, Builder's incremental construction) turned into a lazy,
// evictable variant.
package cache

import (
	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/weight"
)

// arcByteCost is the rough per-arc byte estimate spec.md §4.2 calls for
// ("accumulated cache size is incremented by the rough byte cost of the
// produced arcs"); exactness does not matter, only monotonic growth with
// cached state.
const arcByteCost = 40

// State is one delayed FST state's cached computation result.
type State struct {
	Final    weight.Weight
	Arcs     []fst.Arc
	NIEps    int
	NOEps    int
	HasFinal bool
	HasArcs  bool
	accessed bool
}

// Store is the cache state of spec.md §4.2: a vector of per-state cache
// entries plus byte-budgeted eviction. It is a value field owned by a
// single delayed FST, never global state (per spec.md Design Notes
// "model the cache as a value field, not global state").
type Store struct {
	states     []State
	hasStart   bool
	start      fst.StateId
	byteBudget int64
	size       int64
	// gcLimit == 0 selects "cache only last state" mode, the default for a
	// delayed FST about to be materialized into a vector form.
	gcLimit int
}

// New creates a Store with the given byte budget. A non-positive budget
// disables eviction (the cache grows without bound), matching an
// unconfigured delayed FST used for a one-shot, fully-expanding walk.
func New(byteBudget int64) *Store {
	return &Store{byteBudget: byteBudget, gcLimit: -1}
}

// SetCacheOnlyLastState switches the store to "gc_limit = 0" mode.
func (s *Store) SetCacheOnlyLastState() { s.gcLimit = 0 }

func (s *Store) ensure(id fst.StateId) {
	if int(id) >= len(s.states) {
		grown := make([]State, int(id)+1)
		copy(grown, s.states)
		s.states = grown
	}
}

func (s *Store) HasStart() bool     { return s.hasStart }
func (s *Store) Start() fst.StateId { return s.start }
func (s *Store) SetStart(id fst.StateId) {
	s.start = id
	s.hasStart = true
}

func (s *Store) HasFinal(id fst.StateId) bool {
	if int(id) >= len(s.states) {
		return false
	}
	return s.states[id].HasFinal
}

func (s *Store) Final(id fst.StateId) weight.Weight {
	return s.states[id].Final
}

func (s *Store) SetFinal(id fst.StateId, w weight.Weight) {
	s.ensure(id)
	s.states[id].Final = w
	s.states[id].HasFinal = true
	s.touch(id)
}

func (s *Store) HasArcs(id fst.StateId) bool {
	if int(id) >= len(s.states) {
		return false
	}
	return s.states[id].HasArcs
}

// SetArcs records the fully-expanded arc list of id and its epsilon
// counts, replacing any prior (possibly evicted) content.
func (s *Store) SetArcs(id fst.StateId, arcs []fst.Arc) {
	s.ensure(id)
	nIEps, nOEps := 0, 0
	for _, a := range arcs {
		if a.ILabel == fst.Epsilon {
			nIEps++
		}
		if a.OLabel == fst.Epsilon {
			nOEps++
		}
	}
	s.states[id].Arcs = arcs
	s.states[id].NIEps = nIEps
	s.states[id].NOEps = nOEps
	s.states[id].HasArcs = true
	s.size += int64(len(arcs)) * arcByteCost
	s.touch(id)
	s.maybeGC(id)
}

func (s *Store) NumArcs(id fst.StateId) int  { return len(s.states[id].Arcs) }
func (s *Store) NumInputEpsilons(id fst.StateId) int  { return s.states[id].NIEps }
func (s *Store) NumOutputEpsilons(id fst.StateId) int { return s.states[id].NOEps }
func (s *Store) Arcs(id fst.StateId) []fst.Arc        { return s.states[id].Arcs }

// touch marks id recently used, for the two-pass GC sweep below.
func (s *Store) touch(id fst.StateId) {
	s.ensure(id)
	s.states[id].accessed = true
}

// maybeGC implements the two-pass eviction of spec.md §4.2: first drop
// states unaccessed since the previous sweep, then (if still over budget)
// drop the rest too, aiming to reduce size to roughly two-thirds of the
// budget. gcLimit == 0 keeps only the single most recently expanded state.
// current, the state whose arcs were just stored, is never evicted.
func (s *Store) maybeGC(current fst.StateId) {
	if s.gcLimit == 0 {
		s.evictAllBut(int(current))
		return
	}
	if s.byteBudget <= 0 || s.size <= s.byteBudget {
		return
	}
	target := s.byteBudget * 2 / 3
	s.sweep(false, target, int(current))
	if s.size > s.byteBudget {
		s.sweep(true, target, int(current))
	}
}

func lastArcState(states []State) int {
	for i := len(states) - 1; i >= 0; i-- {
		if states[i].HasArcs {
			return i
		}
	}
	return -1
}

func (s *Store) evictAllBut(keep int) {
	for i := range s.states {
		if i == keep || !s.states[i].HasArcs {
			continue
		}
		s.size -= int64(len(s.states[i].Arcs)) * arcByteCost
		s.states[i].Arcs = nil
		s.states[i].HasArcs = false
	}
}

// sweep drops cache content for states whose accessed flag is false
// (dropAll selects dropping regardless of the flag, the second pass),
// skipping state keep, until size falls to target or every eligible state
// has been cleared.
func (s *Store) sweep(dropAll bool, target int64, keep int) {
	for i := range s.states {
		if s.size <= target {
			break
		}
		if i == keep || !s.states[i].HasArcs {
			continue
		}
		if !dropAll && s.states[i].accessed {
			s.states[i].accessed = false
			continue
		}
		s.size -= int64(len(s.states[i].Arcs)) * arcByteCost
		s.states[i].Arcs = nil
		s.states[i].HasArcs = false
		s.states[i].accessed = false
	}
}

// Copy returns a Store for a "safe copy" of the owning delayed FST: its
// own independent cache state (so a second reader's expansions/evictions
// never race with the first), per spec.md §5's thread-safety note. The
// caller is responsible for re-pointing the copy at the same underlying
// expansion logic.
func (s *Store) Copy() *Store {
	states := make([]State, len(s.states))
	for i, st := range s.states {
		states[i] = State{
			Final:    st.Final,
			Arcs:     append([]fst.Arc(nil), st.Arcs...),
			NIEps:    st.NIEps,
			NOEps:    st.NOEps,
			HasFinal: st.HasFinal,
			HasArcs:  st.HasArcs,
		}
	}
	return &Store{
		states:     states,
		hasStart:   s.hasStart,
		start:      s.start,
		byteBudget: s.byteBudget,
		size:       s.size,
		gcLimit:    s.gcLimit,
	}
}

// Package fst implements the generic FST abstraction of spec.md §3-4.1:
// the read-only/expanded/mutable traits, the Arc record, and the three
// concrete storage layouts (vector, const, compact) plus the edit
// overlay.
//
// The teacher (kho/fslm) hard-codes a single arc/weight shape (word.Id,
// fslm.StateId, fslm.Weight float32) across three storage strategies
// (Hashed's open-addressed buckets, Sorted's per-state sorted slice, and
// the historical Model's global hash map). This package generalizes that
// same three-strategy split — hashed/open-addressed is not reused (FST
// arcs are positional, not keyed by label, unlike n-gram back-off
// lookups) but the *vector-of-per-state-slices* (Sorted) and the
// *flat mmap-able array pair* (Hashed's WriteBinary/unsafeParseBinary)
// shapes map directly onto spec.md's vector form and const form.
package fst

import (
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// Label is an integer arc label. 0 is epsilon.
type Label int64

// NoLabel marks "no label", used for super-final transitions and as a
// map-miss sentinel.
const NoLabel Label = -1

// Epsilon is the label consuming/producing no symbol.
const Epsilon Label = 0

// StateId identifies a state. NoStateId marks "absent".
type StateId int64

const NoStateId StateId = -1

// Arc is the weighted transition quadruple of spec.md §3.
type Arc struct {
	ILabel, OLabel Label
	Weight         weight.Weight
	NextState      StateId
}

// ArcIterator is a cursor over a state's outgoing arcs.
type ArcIterator interface {
	Done() bool
	Value() Arc
	Next()
	Reset()
}

// MutableArcIterator additionally allows in-place arc modification; per
// spec.md §9, SetValue must invalidate any cached property bits that
// depend on arc content (acceptor-ness, epsilon/sort/weighted flags).
type MutableArcIterator interface {
	ArcIterator
	SetValue(Arc)
}

// Fst is the polymorphic read-only FST trait of spec.md §3 "FST trait".
type Fst interface {
	Start() StateId
	Final(s StateId) weight.Weight
	NumArcs(s StateId) int
	NumInputEpsilons(s StateId) int
	NumOutputEpsilons(s StateId) int
	Arcs(s StateId) ArcIterator

	// Properties returns the subset of mask known to this FST; if test is
	// true and a requested bit is not already known, it is computed (which
	// may require a full walk).
	Properties(mask Properties, test bool) Properties

	Type() string
	Semiring() weight.Semiring
	InputSymbols() *symtab.Table
	OutputSymbols() *symtab.Table

	// Copy returns a reference to the same underlying FST (cheap;
	// copy-on-write is triggered only by a subsequent mutation), per
	// spec.md §5.
	Copy() Fst
}

// ExpandedFst adds the O(1) NumStates query of spec.md §3 "Expanded
// trait". Its states are addressable as a dense range [0, NumStates).
type ExpandedFst interface {
	Fst
	NumStates() int
}

// MutableFst adds the construction/editing operations of spec.md §3
// "Mutable trait".
type MutableFst interface {
	ExpandedFst

	SetStart(s StateId)
	SetFinal(s StateId, w weight.Weight)
	AddState() StateId
	AddArc(s StateId, a Arc)

	// DeleteStates removes the given states (order-preserving compaction of
	// survivors) and rewrites every arc whose NextState referenced a
	// deleted state; DeleteStates(nil) deletes all states.
	DeleteStates(states []StateId)
	// DeleteArcs pops the last n arcs of s (all of them if n < 0).
	DeleteArcs(s StateId, n int)

	ReserveStates(n int)
	ReserveArcs(s StateId, n int)

	MutableArcs(s StateId) MutableArcIterator

	SetInputSymbols(t *symtab.Table)
	SetOutputSymbols(t *symtab.Table)

	SetSemiring(sr weight.Semiring)
}

// StateRange iterates state ids [0, n) of an ExpandedFst; spec.md models
// state iteration as dense integer enumeration whenever NumStates is O(1),
// which is the case for every storage layout in this package.
func StateRange(f ExpandedFst) []StateId {
	n := f.NumStates()
	ids := make([]StateId, n)
	for i := range ids {
		ids[i] = StateId(i)
	}
	return ids
}

// sliceArcIterator is the common ArcIterator over a pre-materialized arc
// slice, shared by VectorFst and ConstFst; CompactFst uses it only for an
// out-of-range state and otherwise iterates through its own compactor.
type sliceArcIterator struct {
	arcs []Arc
	pos  int
}

func newSliceArcIterator(arcs []Arc) *sliceArcIterator {
	return &sliceArcIterator{arcs: arcs}
}

func (it *sliceArcIterator) Done() bool  { return it.pos >= len(it.arcs) }
func (it *sliceArcIterator) Value() Arc  { return it.arcs[it.pos] }
func (it *sliceArcIterator) Next()       { it.pos++ }
func (it *sliceArcIterator) Reset()      { it.pos = 0 }

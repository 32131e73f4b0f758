package cache

import (
	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// Expander computes the final weight and outgoing arcs of state s and
// records them into store, per spec.md §4.2's "expand(s) entry point".
// Expansion must be idempotent: the skeleton only calls it when the store
// does not already have s's arcs cached.
type Expander func(s fst.StateId, store *Store)

// Delayed is the generic delayed-FST skeleton of spec.md §4.2: it exposes
// the read-only fst.Fst trait, calling Expander lazily before answering
// any query that needs a state's arcs or final weight.
//
// algo.Compose, algo.DelayedRelabel, pdt.Expand and pdt.ExpandMpdt all
// build one of these rather than each reimplementing cache-triggered
// expansion.
type Delayed struct {
	store    *Store
	expand   Expander
	sr       weight.Semiring
	typeName string
	iSyms    *symtab.Table
	oSyms    *symtab.Table
	props    fst.Properties
}

// NewDelayed creates a delayed FST with the given type name (surfaced through
// Type(), e.g. "compose" or "closure"), semiring, byte budget and
// expansion callback. The caller must call Store().SetStart(...) before
// Start() is queried.
func NewDelayed(typeName string, sr weight.Semiring, byteBudget int64, expand Expander) *Delayed {
	return &Delayed{
		store:    New(byteBudget),
		expand:   expand,
		sr:       sr,
		typeName: typeName,
	}
}

// Store exposes the underlying cache store so the constructing algorithm
// can seed Start and any other state it already knows.
func (d *Delayed) Store() *Store { return d.store }

func (d *Delayed) SetInputSymbols(t *symtab.Table)  { d.iSyms = t }
func (d *Delayed) SetOutputSymbols(t *symtab.Table) { d.oSyms = t }
func (d *Delayed) SetProperties(p fst.Properties)   { d.props = p }

func (d *Delayed) ensure(s fst.StateId) {
	if !d.store.HasArcs(s) {
		d.expand(s, d.store)
	}
}

func (d *Delayed) Start() fst.StateId {
	if !d.store.HasStart() {
		return fst.NoStateId
	}
	return d.store.Start()
}

func (d *Delayed) Final(s fst.StateId) weight.Weight {
	d.ensure(s)
	if !d.store.HasFinal(s) {
		return d.sr.Zero()
	}
	return d.store.Final(s)
}

func (d *Delayed) NumArcs(s fst.StateId) int {
	d.ensure(s)
	return d.store.NumArcs(s)
}

func (d *Delayed) NumInputEpsilons(s fst.StateId) int {
	d.ensure(s)
	return d.store.NumInputEpsilons(s)
}

func (d *Delayed) NumOutputEpsilons(s fst.StateId) int {
	d.ensure(s)
	return d.store.NumOutputEpsilons(s)
}

func (d *Delayed) Arcs(s fst.StateId) fst.ArcIterator {
	d.ensure(s)
	return newArcSliceIterator(d.store.Arcs(s))
}

func (d *Delayed) Properties(mask fst.Properties, _ bool) fst.Properties {
	return d.props & mask
}

func (d *Delayed) Type() string                 { return d.typeName }
func (d *Delayed) Semiring() weight.Semiring    { return d.sr }
func (d *Delayed) InputSymbols() *symtab.Table  { return d.iSyms }
func (d *Delayed) OutputSymbols() *symtab.Table { return d.oSyms }

// Copy returns a "safe copy" for a second concurrent reader: a fresh Store
// (so expansion/eviction in one copy never races the other) that still
// shares the same Expander closure and, through it, the same immutable
// backing FSTs, per spec.md §5.
func (d *Delayed) Copy() fst.Fst {
	return &Delayed{
		store:    d.store.Copy(),
		expand:   d.expand,
		sr:       d.sr,
		typeName: d.typeName,
		iSyms:    d.iSyms,
		oSyms:    d.oSyms,
		props:    d.props,
	}
}

type arcSliceIterator struct {
	arcs []fst.Arc
	pos  int
}

func newArcSliceIterator(arcs []fst.Arc) *arcSliceIterator {
	return &arcSliceIterator{arcs: arcs}
}

func (it *arcSliceIterator) Done() bool { return it.pos >= len(it.arcs) }
func (it *arcSliceIterator) Value() fst.Arc { return it.arcs[it.pos] }
func (it *arcSliceIterator) Next()          { it.pos++ }
func (it *arcSliceIterator) Reset()         { it.pos = 0 }

var _ fst.Fst = (*Delayed)(nil)

package fst

import (
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// EditFst overlays a small set of local edits on top of an immutable
// ExpandedFst (typically a ConstFst) without copying it, materializing a
// VectorFst copy of the underlying FST only on first mutation. This is
// the same copy-on-write deferral the teacher relies on in Vocab.Copy and
// xqwMap.Resize (never pay the copy until a write actually forces it),
// applied at the whole-FST granularity spec.md's EditFst calls for.
type EditFst struct {
	base     ExpandedFst
	overlay  *VectorFst // nil until the first mutation
}

// NewEditFst wraps base for editing. Reads are served directly from base
// until a write promotes to overlay.
func NewEditFst(base ExpandedFst) *EditFst {
	return &EditFst{base: base}
}

func (f *EditFst) active() ExpandedFst {
	if f.overlay != nil {
		return f.overlay
	}
	return f.base
}

// promote materializes the overlay by copying every state and arc of base
// into a fresh VectorFst, the copy-on-write trigger point.
func (f *EditFst) promote() *VectorFst {
	if f.overlay != nil {
		return f.overlay
	}
	v := NewVectorFst(f.base.Semiring())
	n := f.base.NumStates()
	for i := 0; i < n; i++ {
		v.AddState()
	}
	for s := StateId(0); int(s) < n; s++ {
		v.SetFinal(s, f.base.Final(s))
		for it := f.base.Arcs(s); !it.Done(); it.Next() {
			v.AddArc(s, it.Value())
		}
	}
	v.SetStart(f.base.Start())
	v.SetInputSymbols(f.base.InputSymbols())
	v.SetOutputSymbols(f.base.OutputSymbols())
	f.overlay = v
	return v
}

func (f *EditFst) Start() StateId                        { return f.active().Start() }
func (f *EditFst) Final(s StateId) weight.Weight          { return f.active().Final(s) }
func (f *EditFst) NumArcs(s StateId) int                  { return f.active().NumArcs(s) }
func (f *EditFst) NumInputEpsilons(s StateId) int         { return f.active().NumInputEpsilons(s) }
func (f *EditFst) NumOutputEpsilons(s StateId) int        { return f.active().NumOutputEpsilons(s) }
func (f *EditFst) Arcs(s StateId) ArcIterator             { return f.active().Arcs(s) }
func (f *EditFst) Properties(mask Properties, test bool) Properties {
	return f.active().Properties(mask, test)
}
func (f *EditFst) Type() string                 { return "edit<" + f.active().Type() + ">" }
func (f *EditFst) Semiring() weight.Semiring    { return f.active().Semiring() }
func (f *EditFst) InputSymbols() *symtab.Table  { return f.active().InputSymbols() }
func (f *EditFst) OutputSymbols() *symtab.Table { return f.active().OutputSymbols() }
func (f *EditFst) NumStates() int               { return f.active().NumStates() }

func (f *EditFst) Copy() Fst {
	if f.overlay != nil {
		return &EditFst{base: f.base, overlay: f.overlay.Copy().(*VectorFst)}
	}
	return &EditFst{base: f.base}
}

func (f *EditFst) SetStart(s StateId)                 { f.promote().SetStart(s) }
func (f *EditFst) SetFinal(s StateId, w weight.Weight) { f.promote().SetFinal(s, w) }
func (f *EditFst) AddState() StateId                  { return f.promote().AddState() }
func (f *EditFst) AddArc(s StateId, a Arc)            { f.promote().AddArc(s, a) }
func (f *EditFst) DeleteStates(states []StateId)      { f.promote().DeleteStates(states) }
func (f *EditFst) DeleteArcs(s StateId, n int)        { f.promote().DeleteArcs(s, n) }
func (f *EditFst) ReserveStates(n int)                { f.promote().ReserveStates(n) }
func (f *EditFst) ReserveArcs(s StateId, n int)       { f.promote().ReserveArcs(s, n) }
func (f *EditFst) MutableArcs(s StateId) MutableArcIterator {
	return f.promote().MutableArcs(s)
}
func (f *EditFst) SetInputSymbols(t *symtab.Table)  { f.promote().SetInputSymbols(t) }
func (f *EditFst) SetOutputSymbols(t *symtab.Table) { f.promote().SetOutputSymbols(t) }
func (f *EditFst) SetSemiring(sr weight.Semiring)   { f.promote().SetSemiring(sr) }

var _ MutableFst = (*EditFst)(nil)

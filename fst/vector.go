package fst

import (
	"sync/atomic"

	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// vectorState is one state's arcs and final weight, grounded in the
// teacher's Sorted layout (sorted.go): a per-state slice of outgoing
// transitions rather than a single global hash table.
type vectorState struct {
	final weight.Weight
	arcs  []Arc
	nIEps int
	nOEps int
}

// vectorImpl is the shared, reference-counted body of a VectorFst. Several
// VectorFst handles can point at the same impl until a mutation forces a
// copy, mirroring the teacher's xqwMap.Resize copy-on-grow discipline
// (vocab.go/probing_impl.go): readers never observe a half-mutated table.
type vectorImpl struct {
	refs    int32
	start   StateId
	states  []vectorState
	sr      weight.Semiring
	iSyms   *symtab.Table
	oSyms   *symtab.Table
	props   Properties
	isError bool
}

func newVectorImpl(sr weight.Semiring) *vectorImpl {
	return &vectorImpl{refs: 1, start: NoStateId, sr: sr, props: Mutable | Expanded}
}

func (impl *vectorImpl) addRef()  { atomic.AddInt32(&impl.refs, 1) }
func (impl *vectorImpl) release() { atomic.AddInt32(&impl.refs, -1) }
func (impl *vectorImpl) shared() bool { return atomic.LoadInt32(&impl.refs) > 1 }

func (impl *vectorImpl) clone() *vectorImpl {
	states := make([]vectorState, len(impl.states))
	for i, s := range impl.states {
		states[i] = vectorState{
			final: s.final,
			arcs:  append([]Arc(nil), s.arcs...),
			nIEps: s.nIEps,
			nOEps: s.nOEps,
		}
	}
	return &vectorImpl{
		refs:    1,
		start:   impl.start,
		states:  states,
		sr:      impl.sr,
		iSyms:   impl.iSyms,
		oSyms:   impl.oSyms,
		props:   impl.props,
		isError: impl.isError,
	}
}

// VectorFst is the general-purpose mutable FST of spec.md §4.1 "vector
// form". It is the primary type constructed by algorithms and editors.
type VectorFst struct {
	impl *vectorImpl
}

// NewVectorFst creates an empty VectorFst over the given semiring.
func NewVectorFst(sr weight.Semiring) *VectorFst {
	return &VectorFst{impl: newVectorImpl(sr)}
}

// ErrorVectorFst returns a VectorFst with the Error property bit set and no
// states, per REDESIGN FLAG (b): internal failures surface as an
// error-state FST rather than a panic/log.Fatal from library code.
func ErrorVectorFst(sr weight.Semiring) *VectorFst {
	impl := newVectorImpl(sr)
	impl.isError = true
	impl.props |= Error
	return &VectorFst{impl: impl}
}

// mutate returns an impl this handle can safely write to, cloning first if
// the current impl is shared with another handle (copy-on-write, the same
// discipline the teacher's probing table uses around Resize/xqwBuckets
// splits).
func (f *VectorFst) mutate() *vectorImpl {
	if f.impl.shared() {
		f.impl.release()
		f.impl = f.impl.clone()
	}
	return f.impl
}

func (f *VectorFst) Start() StateId { return f.impl.start }

func (f *VectorFst) Final(s StateId) weight.Weight {
	if int(s) < 0 || int(s) >= len(f.impl.states) {
		return f.impl.sr.Zero()
	}
	return f.impl.states[s].final
}

func (f *VectorFst) NumArcs(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.impl.states) {
		return 0
	}
	return len(f.impl.states[s].arcs)
}

func (f *VectorFst) NumInputEpsilons(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.impl.states) {
		return 0
	}
	return f.impl.states[s].nIEps
}

func (f *VectorFst) NumOutputEpsilons(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.impl.states) {
		return 0
	}
	return f.impl.states[s].nOEps
}

func (f *VectorFst) Arcs(s StateId) ArcIterator {
	if int(s) < 0 || int(s) >= len(f.impl.states) {
		return newSliceArcIterator(nil)
	}
	return newSliceArcIterator(f.impl.states[s].arcs)
}

func (f *VectorFst) Properties(mask Properties, test bool) Properties {
	known := f.impl.props.Known(mask)
	if !test || known == mask {
		return f.impl.props & mask
	}
	return computeProperties(f, mask) & mask
}

func (f *VectorFst) Type() string                 { return "vector" }
func (f *VectorFst) Semiring() weight.Semiring    { return f.impl.sr }
func (f *VectorFst) InputSymbols() *symtab.Table  { return f.impl.iSyms }
func (f *VectorFst) OutputSymbols() *symtab.Table { return f.impl.oSyms }

func (f *VectorFst) Copy() Fst {
	f.impl.addRef()
	return &VectorFst{impl: f.impl}
}

func (f *VectorFst) NumStates() int { return len(f.impl.states) }

func (f *VectorFst) SetStart(s StateId) {
	impl := f.mutate()
	impl.start = s
}

func (f *VectorFst) SetFinal(s StateId, w weight.Weight) {
	impl := f.mutate()
	prior := impl.states[s].final
	wasZero := prior == nil || prior.IsZero()
	impl.states[s].final = w
	impl.props = SetFinalProperties(impl.props, wasZero, w.IsZero(), w.IsOne())
}

func (f *VectorFst) AddState() StateId {
	impl := f.mutate()
	impl.states = append(impl.states, vectorState{final: impl.sr.Zero()})
	impl.props = AddStateProperties(impl.props)
	return StateId(len(impl.states) - 1)
}

func (f *VectorFst) AddArc(s StateId, a Arc) {
	impl := f.mutate()
	st := &impl.states[s]
	firstArc := len(st.arcs) == 0
	sortedIncreasing := !firstArc && st.arcs[len(st.arcs)-1].ILabel <= a.ILabel
	st.arcs = append(st.arcs, a)
	if a.ILabel == Epsilon {
		st.nIEps++
	}
	if a.OLabel == Epsilon {
		st.nOEps++
	}
	impl.props = AddArcProperties(impl.props, a.ILabel, a.OLabel, a.Weight.IsOne(), sortedIncreasing, firstArc)
}

// DeleteStates removes the given states and renumbers survivors, discarding
// any arc whose NextState referenced a removed state. states == nil deletes
// every state.
func (f *VectorFst) DeleteStates(states []StateId) {
	impl := f.mutate()
	if states == nil {
		impl.states = nil
		impl.start = NoStateId
		impl.props = DeleteStatesProperties(impl.props)
		return
	}
	dead := make(map[StateId]bool, len(states))
	for _, s := range states {
		dead[s] = true
	}
	remap := make(map[StateId]StateId, len(impl.states))
	kept := impl.states[:0:0]
	for old := StateId(0); int(old) < len(impl.states); old++ {
		if dead[old] {
			continue
		}
		remap[old] = StateId(len(kept))
		kept = append(kept, impl.states[old])
	}
	for i := range kept {
		survived := kept[i].arcs[:0:0]
		for _, a := range kept[i].arcs {
			next, ok := remap[a.NextState]
			if !ok {
				continue
			}
			a.NextState = next
			survived = append(survived, a)
		}
		kept[i].arcs = survived
	}
	impl.states = kept
	if next, ok := remap[impl.start]; ok {
		impl.start = next
	} else {
		impl.start = NoStateId
	}
	impl.props = DeleteStatesProperties(impl.props)
}

// DeleteArcs pops the trailing n arcs of s, or all of them if n < 0.
func (f *VectorFst) DeleteArcs(s StateId, n int) {
	impl := f.mutate()
	st := &impl.states[s]
	if n < 0 || n > len(st.arcs) {
		n = len(st.arcs)
	}
	for _, a := range st.arcs[len(st.arcs)-n:] {
		if a.ILabel == Epsilon {
			st.nIEps--
		}
		if a.OLabel == Epsilon {
			st.nOEps--
		}
	}
	st.arcs = st.arcs[:len(st.arcs)-n]
	impl.props = DeleteArcsProperties(impl.props)
}

func (f *VectorFst) ReserveStates(n int) {
	impl := f.mutate()
	if cap(impl.states)-len(impl.states) < n {
		grown := make([]vectorState, len(impl.states), len(impl.states)+n)
		copy(grown, impl.states)
		impl.states = grown
	}
}

func (f *VectorFst) ReserveArcs(s StateId, n int) {
	impl := f.mutate()
	st := &impl.states[s]
	if cap(st.arcs)-len(st.arcs) < n {
		grown := make([]Arc, len(st.arcs), len(st.arcs)+n)
		copy(grown, st.arcs)
		st.arcs = grown
	}
}

// vectorMutableArcIterator is a MutableArcIterator over a VectorFst state's
// live arc slice (not a copy), so SetValue writes through.
type vectorMutableArcIterator struct {
	f   *VectorFst
	s   StateId
	pos int
}

func (it *vectorMutableArcIterator) Done() bool {
	return it.pos >= len(it.f.impl.states[it.s].arcs)
}
func (it *vectorMutableArcIterator) Value() Arc {
	return it.f.impl.states[it.s].arcs[it.pos]
}
func (it *vectorMutableArcIterator) Next()  { it.pos++ }
func (it *vectorMutableArcIterator) Reset() { it.pos = 0 }

func (it *vectorMutableArcIterator) SetValue(a Arc) {
	impl := it.f.mutate()
	st := &impl.states[it.s]
	old := st.arcs[it.pos]
	if old.ILabel == Epsilon {
		st.nIEps--
	}
	if old.OLabel == Epsilon {
		st.nOEps--
	}
	st.arcs[it.pos] = a
	if a.ILabel == Epsilon {
		st.nIEps++
	}
	if a.OLabel == Epsilon {
		st.nOEps++
	}
	clear := Acceptor | NotAcceptor | ILabelSorted | NotILabelSorted |
		OLabelSorted | NotOLabelSorted | Weighted | Unweighted |
		Accessible | NotAccessible | Coaccessible | NotCoaccessible
	impl.props &^= clear
}

func (f *VectorFst) MutableArcs(s StateId) MutableArcIterator {
	return &vectorMutableArcIterator{f: f, s: s}
}

func (f *VectorFst) SetInputSymbols(t *symtab.Table) {
	impl := f.mutate()
	impl.iSyms = t
}

func (f *VectorFst) SetOutputSymbols(t *symtab.Table) {
	impl := f.mutate()
	impl.oSyms = t
}

func (f *VectorFst) SetSemiring(sr weight.Semiring) {
	impl := f.mutate()
	impl.sr = sr
}

var _ MutableFst = (*VectorFst)(nil)

package fst

import (
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// constState is one state's fixed-size record in a ConstFst: a final
// weight plus a [start, start+numArcs) slice into the shared arc array.
// This is the flat-array analogue of the teacher's xqwBuckets-per-state
// layout (hashed.go), minus the hashing: ConstFst arcs are positional, so
// a contiguous run replaces a bucket array.
type constState struct {
	final    weight.Weight
	arcStart int32
	numArcs  int32
	nIEps    int32
	nOEps    int32
}

// ConstFst is the immutable, compact FST of spec.md §4.1 "const form": two
// flat arrays (states, arcs) built once and never mutated, suited to
// mmap-backed loading (see ioformat.go, grounded in the teacher's
// Hashed.WriteBinary/unsafeParseBinary/OpenMappedFile). Construct one from
// any ExpandedFst with NewConstFst, or by reading a file (ReadConstFst).
type ConstFst struct {
	start   StateId
	states  []constState
	arcs    []Arc
	sr      weight.Semiring
	iSyms   *symtab.Table
	oSyms   *symtab.Table
	props   Properties
	mapping *MappedFile // non-nil when backed by ReadConstFst; states/arcs are
	// already copied out by the time this is set (see ReadConstFst), so
	// Close only needs to run before the process exits, not before states
	// or arcs are read; it exists to release the mmap resource promptly.
}

// NewConstFst compacts any ExpandedFst into const form. This is the
// expand-then-freeze step analogous to how the teacher's Builder produces
// a Sorted and a caller who wants the mmap-able form then calls
// WriteBinary/FromBinary.
func NewConstFst(f ExpandedFst) *ConstFst {
	n := f.NumStates()
	cf := &ConstFst{
		start:  f.Start(),
		states: make([]constState, n),
		sr:     f.Semiring(),
		iSyms:  f.InputSymbols(),
		oSyms:  f.OutputSymbols(),
		props:  f.Properties(^Properties(0)&^(Expanded|Mutable), true) | Expanded,
	}
	for s := StateId(0); int(s) < n; s++ {
		cf.states[s].final = f.Final(s)
		cf.states[s].arcStart = int32(len(cf.arcs))
		var nIEps, nOEps int32
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			cf.arcs = append(cf.arcs, a)
			if a.ILabel == Epsilon {
				nIEps++
			}
			if a.OLabel == Epsilon {
				nOEps++
			}
		}
		cf.states[s].numArcs = int32(len(cf.arcs)) - cf.states[s].arcStart
		cf.states[s].nIEps = nIEps
		cf.states[s].nOEps = nOEps
	}
	return cf
}

func (f *ConstFst) Start() StateId { return f.start }

func (f *ConstFst) Final(s StateId) weight.Weight {
	if int(s) < 0 || int(s) >= len(f.states) {
		return f.sr.Zero()
	}
	return f.states[s].final
}

func (f *ConstFst) NumArcs(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.states) {
		return 0
	}
	return int(f.states[s].numArcs)
}

func (f *ConstFst) NumInputEpsilons(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.states) {
		return 0
	}
	return int(f.states[s].nIEps)
}

func (f *ConstFst) NumOutputEpsilons(s StateId) int {
	if int(s) < 0 || int(s) >= len(f.states) {
		return 0
	}
	return int(f.states[s].nOEps)
}

func (f *ConstFst) Arcs(s StateId) ArcIterator {
	if int(s) < 0 || int(s) >= len(f.states) {
		return newSliceArcIterator(nil)
	}
	st := f.states[s]
	return newSliceArcIterator(f.arcs[st.arcStart : st.arcStart+st.numArcs])
}

func (f *ConstFst) Properties(mask Properties, test bool) Properties {
	known := f.props.Known(mask)
	if !test || known == mask {
		return f.props & mask
	}
	return computeProperties(f, mask) & mask
}

func (f *ConstFst) Type() string                 { return "const" }
func (f *ConstFst) Semiring() weight.Semiring    { return f.sr }
func (f *ConstFst) InputSymbols() *symtab.Table  { return f.iSyms }
func (f *ConstFst) OutputSymbols() *symtab.Table { return f.oSyms }
func (f *ConstFst) NumStates() int               { return len(f.states) }

// Copy returns the same immutable instance: ConstFst never mutates, so
// unlike VectorFst's copy-on-write there is nothing to defer.
func (f *ConstFst) Copy() Fst { return f }

// Close releases the backing mmap region, if this ConstFst was produced by
// ReadConstFst. Safe to call on a ConstFst built with NewConstFst (no-op).
func (f *ConstFst) Close() error {
	if f.mapping == nil {
		return nil
	}
	return f.mapping.Close()
}

var _ ExpandedFst = (*ConstFst)(nil)

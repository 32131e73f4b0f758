package fst

import (
	"github.com/mjansche/wfst-go/symtab"
	"github.com/mjansche/wfst-go/weight"
)

// Compactor encodes/decodes one arc-plus-final-weight pair (spec.md calls
// this a "transition", matching the teacher's WordStateWeight) to and from
// a fixed-size element of some application-chosen type, letting CompactFst
// specialize its storage for restricted FST shapes the way Sorted
// specializes xqwEntry for n-gram back-off transitions.
type Compactor interface {
	// Compact encodes the i-th transition out of s (i == NumArcs(s) encodes
	// the state's final weight as a sentinel transition with NextState ==
	// NoStateId).
	Compact(s StateId, a Arc) interface{}
	// Expand decodes a previously compacted element back to an arc; ok is
	// false for a final-weight sentinel, in which case a.Weight holds the
	// final weight.
	Expand(elem interface{}) (a Arc, ok bool)
	Size() int
}

// UnweightedAcceptorCompactor stores one label and the next state per
// transition (ilabel == olabel, weight == One implied), suited to
// unweighted acceptors.
type UnweightedAcceptorCompactor struct {
	Label Label
	Next  StateId
	One   weight.Weight
}

type uaElem struct {
	label Label
	next  StateId
}

func (c UnweightedAcceptorCompactor) Compact(_ StateId, a Arc) interface{} {
	return uaElem{label: a.ILabel, next: a.NextState}
}

func (c UnweightedAcceptorCompactor) Expand(elem interface{}) (Arc, bool) {
	e := elem.(uaElem)
	if e.next == NoStateId {
		return Arc{Weight: c.One}, false
	}
	return Arc{ILabel: e.label, OLabel: e.label, Weight: c.One, NextState: e.next}, true
}

func (c UnweightedAcceptorCompactor) Size() int { return 1 }

// AcceptorCompactor additionally stores a weight, for weighted acceptors.
type AcceptorCompactor struct{}

type acceptorElem struct {
	label  Label
	next   StateId
	weight weight.Weight
}

func (AcceptorCompactor) Compact(_ StateId, a Arc) interface{} {
	return acceptorElem{label: a.ILabel, next: a.NextState, weight: a.Weight}
}

func (AcceptorCompactor) Expand(elem interface{}) (Arc, bool) {
	e := elem.(acceptorElem)
	if e.next == NoStateId {
		return Arc{Weight: e.weight}, false
	}
	return Arc{ILabel: e.label, OLabel: e.label, Weight: e.weight, NextState: e.next}, true
}

func (AcceptorCompactor) Size() int { return 1 }

// UnweightedCompactor stores ilabel/olabel/next for an unweighted
// transducer.
type UnweightedCompactor struct{ One weight.Weight }

type unweightedElem struct {
	ilabel, olabel Label
	next           StateId
}

func (c UnweightedCompactor) Compact(_ StateId, a Arc) interface{} {
	return unweightedElem{ilabel: a.ILabel, olabel: a.OLabel, next: a.NextState}
}

func (c UnweightedCompactor) Expand(elem interface{}) (Arc, bool) {
	e := elem.(unweightedElem)
	if e.next == NoStateId {
		return Arc{Weight: c.One}, false
	}
	return Arc{ILabel: e.ilabel, OLabel: e.olabel, Weight: c.One, NextState: e.next}, true
}

func (c UnweightedCompactor) Size() int { return 1 }

// StringCompactor stores only a label per transition for a linear-chain
// acceptor (spec.md's "string FST"), the compactor equivalent of the
// teacher's observation that a back-off chain is itself a linear string of
// states; weight/next are implied one/sequential.
type StringCompactor struct {
	One weight.Weight
}

type stringElem struct {
	label Label
	final bool
}

func (c StringCompactor) Compact(_ StateId, a Arc) interface{} {
	return stringElem{label: a.ILabel}
}

func (c StringCompactor) Expand(elem interface{}) (Arc, bool) {
	e := elem.(stringElem)
	if e.final {
		return Arc{Weight: c.One}, false
	}
	return Arc{ILabel: e.label, OLabel: e.label, Weight: c.One, NextState: NoStateId}, true
}

func (c StringCompactor) Size() int { return 1 }

// CompactFst is an immutable FST whose transitions are stored through a
// Compactor, trading the general Arc{ILabel,OLabel,Weight,NextState}
// record for an application-specific fixed-size element, grounded on the
// same "one fixed-size record per transition" idiom as the teacher's
// xqwEntry (hashed.go) and WordStateWeight (sorted.go) but generalized to
// a pluggable element type instead of a single hard-coded one.
type CompactFst struct {
	start     StateId
	numStates int
	compactor Compactor
	elems     []interface{}
	arcStart  []int32 // len == numStates+1, arcStart[s]..arcStart[s+1] are s's transitions (final sentinel included)
	sr        weight.Semiring
	iSyms     *symtab.Table
	oSyms     *symtab.Table
	props     Properties
}

// NewCompactFst compacts f through the given Compactor. The caller is
// responsible for choosing a Compactor compatible with f's actual shape
// (e.g. StringCompactor only round-trips a linear acceptor); Compact does
// not itself validate this, matching spec.md's "caller-chosen compactor"
// design.
func NewCompactFst(f ExpandedFst, c Compactor) *CompactFst {
	n := f.NumStates()
	cf := &CompactFst{
		start:     f.Start(),
		numStates: n,
		compactor: c,
		arcStart:  make([]int32, n+1),
		sr:        f.Semiring(),
		iSyms:     f.InputSymbols(),
		oSyms:     f.OutputSymbols(),
		props:     f.Properties(^Properties(0)&^(Expanded|Mutable), true) | Expanded,
	}
	for s := StateId(0); int(s) < n; s++ {
		cf.arcStart[s] = int32(len(cf.elems))
		for it := f.Arcs(s); !it.Done(); it.Next() {
			cf.elems = append(cf.elems, c.Compact(s, it.Value()))
		}
		cf.elems = append(cf.elems, c.Compact(s, Arc{NextState: NoStateId, Weight: f.Final(s)}))
	}
	cf.arcStart[n] = int32(len(cf.elems))
	return cf
}

func (f *CompactFst) Start() StateId { return f.start }

func (f *CompactFst) Final(s StateId) weight.Weight {
	if int(s) < 0 || int(s) >= f.numStates {
		return f.sr.Zero()
	}
	_, final := f.finalIndex(s)
	a, ok := f.compactor.Expand(f.elems[final])
	if ok {
		return f.sr.Zero()
	}
	return a.Weight
}

// finalIndex returns [arcsStart, finalSentinelIndex) for s.
func (f *CompactFst) finalIndex(s StateId) (int32, int32) {
	start := f.arcStart[s]
	end := f.arcStart[s+1]
	return start, end - 1
}

func (f *CompactFst) NumArcs(s StateId) int {
	if int(s) < 0 || int(s) >= f.numStates {
		return 0
	}
	start, final := f.finalIndex(s)
	return int(final - start)
}

func (f *CompactFst) NumInputEpsilons(s StateId) int  { return f.countEps(s, true) }
func (f *CompactFst) NumOutputEpsilons(s StateId) int { return f.countEps(s, false) }

func (f *CompactFst) countEps(s StateId, input bool) int {
	if int(s) < 0 || int(s) >= f.numStates {
		return 0
	}
	start, final := f.finalIndex(s)
	n := 0
	for i := start; i < final; i++ {
		a, ok := f.compactor.Expand(f.elems[i])
		if !ok {
			continue
		}
		if input && a.ILabel == Epsilon {
			n++
		}
		if !input && a.OLabel == Epsilon {
			n++
		}
	}
	return n
}

type compactArcIterator struct {
	f     *CompactFst
	start int32
	pos   int32
	end   int32
}

func (it *compactArcIterator) Done() bool { return it.pos >= it.end }
func (it *compactArcIterator) Value() Arc {
	a, _ := it.f.compactor.Expand(it.f.elems[it.pos])
	return a
}
func (it *compactArcIterator) Next()  { it.pos++ }
func (it *compactArcIterator) Reset() { it.pos = it.start }

func (f *CompactFst) Arcs(s StateId) ArcIterator {
	if int(s) < 0 || int(s) >= f.numStates {
		return newSliceArcIterator(nil)
	}
	start, final := f.finalIndex(s)
	return &compactArcIterator{f: f, start: start, pos: start, end: final}
}

func (f *CompactFst) Properties(mask Properties, test bool) Properties {
	known := f.props.Known(mask)
	if !test || known == mask {
		return f.props & mask
	}
	return computeProperties(f, mask) & mask
}

func (f *CompactFst) Type() string                 { return "compact" }
func (f *CompactFst) Semiring() weight.Semiring    { return f.sr }
func (f *CompactFst) InputSymbols() *symtab.Table  { return f.iSyms }
func (f *CompactFst) OutputSymbols() *symtab.Table { return f.oSyms }
func (f *CompactFst) NumStates() int               { return f.numStates }
func (f *CompactFst) Copy() Fst                    { return f }

var _ ExpandedFst = (*CompactFst)(nil)

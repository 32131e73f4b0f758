// Package pdt expands pushdown transducers (PDTs) and multi-stack PDTs
// (MPDTs) into ordinary FSTs, and computes shortest distance directly on
// the unexpanded PDT, per spec.md §4.12. The teacher has no pushdown
// concept; the hash-consed configuration table here is grounded on the
// same "intern small values, share by id" discipline the teacher's
// symtab.Table and xqwMap use for strings and n-grams, applied to stack
// configurations instead.
package pdt

import "github.com/mjansche/wfst-go/fst"

// ParenPair names one matched open/close label pair, identified by its
// position in a PdtFst's Parens slice.
type ParenPair struct {
	Open, Close fst.Label
}

// parenRole is looked up by label: which paren id a label belongs to, and
// whether it opens or closes it.
type parenRole struct {
	id     int
	isOpen bool
}

// PdtFst pairs an ordinary FST (whose arcs may carry paren labels) with
// the paren pairs that make it a pushdown transducer.
type PdtFst struct {
	F      fst.ExpandedFst
	Parens []ParenPair

	roles map[fst.Label]parenRole
}

// Bind precomputes the label-to-paren-role lookup; callers must call it
// (or use NewPdtFst) before Expand or ShortestDistance.
func (p *PdtFst) Bind() {
	p.roles = make(map[fst.Label]parenRole, len(p.Parens)*2)
	for id, pair := range p.Parens {
		p.roles[pair.Open] = parenRole{id: id, isOpen: true}
		p.roles[pair.Close] = parenRole{id: id, isOpen: false}
	}
}

// NewPdtFst builds a bound PdtFst.
func NewPdtFst(f fst.ExpandedFst, parens []ParenPair) *PdtFst {
	p := &PdtFst{F: f, Parens: parens}
	p.Bind()
	return p
}

func (p *PdtFst) roleOf(label fst.Label) (parenRole, bool) {
	r, ok := p.roles[label]
	return r, ok
}

// stackTable hash-conses stack configurations: node 0 is always the empty
// stack, and node k>0 records the (parent, paren id) of the innermost
// open paren pushed to reach it. Two pushes from equal parent/id land on
// the same node, so product states never explode from re-derived but
// structurally identical stacks.
type stackTable struct {
	parent []int32
	paren  []int
	index  map[[2]int32]int32
}

func newStackTable() *stackTable {
	return &stackTable{
		parent: []int32{0}, // node 0: empty stack, self-parented (unused)
		paren:  []int{-1},
		index:  make(map[[2]int32]int32),
	}
}

func (t *stackTable) push(parent int32, parenId int) int32 {
	key := [2]int32{parent, int32(parenId)}
	if id, ok := t.index[key]; ok {
		return id
	}
	id := int32(len(t.parent))
	t.parent = append(t.parent, parent)
	t.paren = append(t.paren, parenId)
	t.index[key] = id
	return id
}

// pop returns the configuration below node (its parent) and the paren id
// that was pushed to reach node, or ok=false if node is the empty stack.
func (t *stackTable) pop(node int32) (parent int32, parenId int, ok bool) {
	if node == 0 {
		return 0, -1, false
	}
	return t.parent[node], t.paren[node], true
}

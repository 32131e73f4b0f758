package pdt

import (
	"encoding/binary"

	"github.com/mjansche/wfst-go/cache"
	"github.com/mjansche/wfst-go/fst"
)

// MpdtParen is one paren pair assigned to a stack level: level 0 is
// highest priority, per spec.md §4.12's "N levels" description.
type MpdtParen struct {
	Open, Close fst.Label
	Level       int
}

// MpdtFst is the multi-stack generalization of PdtFst: every paren label
// belongs to exactly one of Levels independent stacks.
type MpdtFst struct {
	F      fst.ExpandedFst
	Parens []MpdtParen
	Levels int

	// WriteRestricted[level] (resp. ReadRestricted) makes an open (resp.
	// close) paren on that level illegal unless every higher-priority
	// (lower-numbered) level's stack is currently empty.
	WriteRestricted []bool
	ReadRestricted  []bool

	roles map[fst.Label]mpdtRole
}

type mpdtRole struct {
	id     int
	level  int
	isOpen bool
}

// Bind precomputes the label lookup; call before Expand.
func (m *MpdtFst) Bind() {
	m.roles = make(map[fst.Label]mpdtRole, len(m.Parens)*2)
	for id, p := range m.Parens {
		m.roles[p.Open] = mpdtRole{id: id, level: p.Level, isOpen: true}
		m.roles[p.Close] = mpdtRole{id: id, level: p.Level, isOpen: false}
	}
}

// NewMpdtFst builds a bound MpdtFst.
func NewMpdtFst(f fst.ExpandedFst, parens []MpdtParen, levels int, writeRestricted, readRestricted []bool) *MpdtFst {
	m := &MpdtFst{F: f, Parens: parens, Levels: levels, WriteRestricted: writeRestricted, ReadRestricted: readRestricted}
	m.Bind()
	return m
}

// mstack is the per-level tuple of hash-consed stack configuration ids
// active at one product state.
type mstack []int32

func (s mstack) key() string {
	buf := make([]byte, 4*len(s))
	for i, v := range s {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return string(buf)
}

func (s mstack) empty() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

type mproductKey struct {
	orig fst.StateId
	key  string
}

type mexpander struct {
	m          *MpdtFst
	tables     []*stackTable
	stacks     map[string]mstack
	ids        map[mproductKey]fst.StateId
	keys       []mproductKey
	keepLabels bool
}

func (e *mexpander) idFor(orig fst.StateId, s mstack) fst.StateId {
	k := mproductKey{orig, s.key()}
	if id, ok := e.ids[k]; ok {
		return id
	}
	id := fst.StateId(len(e.keys))
	e.ids[k] = id
	e.keys = append(e.keys, k)
	e.stacks[k.key] = s
	return id
}

func (e *mexpander) higherPriorityEmpty(s mstack, level int) bool {
	for l := 0; l < level; l++ {
		if s[l] != 0 {
			return false
		}
	}
	return true
}

func (e *mexpander) expand(s fst.StateId, store *cache.Store) {
	k := e.keys[s]
	stack := e.stacks[k.key]

	if stack.empty() {
		if fw := e.m.F.Final(k.orig); !fw.IsZero() {
			store.SetFinal(s, fw)
		}
	}

	var arcs []fst.Arc
	for it := e.m.F.Arcs(k.orig); !it.Done(); it.Next() {
		arc := it.Value()
		role, isParen := e.m.roles[arc.ILabel]
		switch {
		case !isParen:
			next := e.idFor(arc.NextState, stack)
			arcs = append(arcs, withNext(arc, next))

		case role.isOpen:
			if e.m.WriteRestricted != nil && len(e.m.WriteRestricted) > role.level && e.m.WriteRestricted[role.level] {
				if !e.higherPriorityEmpty(stack, role.level) {
					continue
				}
			}
			next := append(mstack(nil), stack...)
			next[role.level] = e.tables[role.level].push(stack[role.level], role.id)
			nextId := e.idFor(arc.NextState, next)
			out := withNext(arc, nextId)
			if !e.keepLabels {
				out.ILabel, out.OLabel = fst.Epsilon, fst.Epsilon
			}
			arcs = append(arcs, out)

		default: // close paren
			if e.m.ReadRestricted != nil && len(e.m.ReadRestricted) > role.level && e.m.ReadRestricted[role.level] {
				if !e.higherPriorityEmpty(stack, role.level) {
					continue
				}
			}
			parent, openId, ok := e.tables[role.level].pop(stack[role.level])
			if !ok || openId != role.id {
				continue
			}
			next := append(mstack(nil), stack...)
			next[role.level] = parent
			nextId := e.idFor(arc.NextState, next)
			out := withNext(arc, nextId)
			if !e.keepLabels {
				out.ILabel, out.OLabel = fst.Epsilon, fst.Epsilon
			}
			arcs = append(arcs, out)
		}
	}
	store.SetArcs(s, arcs)
}

// ExpandMpdt is the multi-stack counterpart of Expand.
func ExpandMpdt(m *MpdtFst, byteBudget int64, keepParenLabels bool) fst.Fst {
	tables := make([]*stackTable, m.Levels)
	for i := range tables {
		tables[i] = newStackTable()
	}
	e := &mexpander{
		m:          m,
		tables:     tables,
		stacks:     make(map[string]mstack),
		ids:        make(map[mproductKey]fst.StateId),
		keepLabels: keepParenLabels,
	}
	d := cache.NewDelayed("mpdt_expand", m.F.Semiring(), byteBudget, e.expand)
	if m.F.Start() != fst.NoStateId {
		root := make(mstack, m.Levels)
		start := e.idFor(m.F.Start(), root)
		d.Store().SetStart(start)
	}
	return d
}

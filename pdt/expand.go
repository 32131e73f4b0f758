package pdt

import (
	"github.com/mjansche/wfst-go/cache"
	"github.com/mjansche/wfst-go/fst"
)

// productKey identifies one expanded state: the original PDT state paired
// with the hash-consed stack configuration active there.
type productKey struct {
	orig  fst.StateId
	stack int32
}

// expander drives the lazy expansion of one PdtFst into an ordinary FST,
// in the same "discover states on demand, hand them to a cache.Store"
// style as algo.composer.
type expander struct {
	p          *PdtFst
	stacks     *stackTable
	ids        map[productKey]fst.StateId
	keys       []productKey
	keepLabels bool
}

func (e *expander) idFor(k productKey) fst.StateId {
	if id, ok := e.ids[k]; ok {
		return id
	}
	id := fst.StateId(len(e.keys))
	e.ids[k] = id
	e.keys = append(e.keys, k)
	return id
}

func (e *expander) expand(s fst.StateId, store *cache.Store) {
	k := e.keys[s]

	if k.stack == 0 {
		if fw := e.p.F.Final(k.orig); !fw.IsZero() {
			store.SetFinal(s, fw)
		}
	}

	var arcs []fst.Arc
	for it := e.p.F.Arcs(k.orig); !it.Done(); it.Next() {
		arc := it.Value()
		role, isParen := e.p.roleOf(arc.ILabel)
		switch {
		case !isParen:
			next := e.idFor(productKey{arc.NextState, k.stack})
			arcs = append(arcs, withNext(arc, next))

		case role.isOpen:
			pushed := e.stacks.push(k.stack, role.id)
			next := e.idFor(productKey{arc.NextState, pushed})
			out := withNext(arc, next)
			if !e.keepLabels {
				out.ILabel, out.OLabel = fst.Epsilon, fst.Epsilon
			}
			arcs = append(arcs, out)

		default: // close paren
			parent, openId, ok := e.stacks.pop(k.stack)
			if !ok || openId != role.id {
				// Unmatched close: dropped, per spec.md §4.12 traversal rule.
				continue
			}
			next := e.idFor(productKey{arc.NextState, parent})
			out := withNext(arc, next)
			if !e.keepLabels {
				out.ILabel, out.OLabel = fst.Epsilon, fst.Epsilon
			}
			arcs = append(arcs, out)
		}
	}
	store.SetArcs(s, arcs)
}

func withNext(a fst.Arc, next fst.StateId) fst.Arc {
	a.NextState = next
	return a
}

// Expand returns the ordinary FST equivalent to p: a product state is
// final iff its original state is final and its stack configuration is
// empty (node 0), matching spec.md §4.12. keepParenLabels controls
// whether paren arcs keep their original labels in the expansion or are
// rewritten to ε, mirroring the "optionally replace the paren label with
// ε" clause of the traversal rule.
func Expand(p *PdtFst, byteBudget int64, keepParenLabels bool) fst.Fst {
	e := &expander{
		p:          p,
		stacks:     newStackTable(),
		ids:        make(map[productKey]fst.StateId),
		keepLabels: keepParenLabels,
	}
	d := cache.NewDelayed("pdt_expand", p.F.Semiring(), byteBudget, e.expand)
	if p.F.Start() != fst.NoStateId {
		start := e.idFor(productKey{p.F.Start(), 0})
		d.Store().SetStart(start)
	}
	return d
}

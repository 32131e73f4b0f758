package algo

import (
	"github.com/mjansche/wfst-go/cache"
	"github.com/mjansche/wfst-go/fst"
)

// composeFilterState is the classic three-state epsilon filter that
// disambiguates the order in which a composed pair of states consumes
// epsilon-labeled arcs from each side, so an ε:ε transition pair is never
// counted twice. filterReal allows both non-epsilon matches and starting
// a fresh epsilon-chase; filterAArmed/filterBArmed each permit only their
// own side's epsilon arcs until a non-epsilon transition resets to
// filterReal.
type composeFilterState int8

const (
	filterReal composeFilterState = iota
	filterAArmed
	filterBArmed
)

type composeKey struct {
	sa, sb fst.StateId
	fs     composeFilterState
}

// composer holds the on-the-fly state-allocation table for one Compose
// call: composite (sa, sb, filter) triples are discovered lazily and
// assigned dense StateIds as cache.Delayed.Arcs/Final first reach them.
type composer struct {
	a, b fst.ExpandedFst
	ids  map[composeKey]fst.StateId
	keys []composeKey
}

func (c *composer) idFor(k composeKey) fst.StateId {
	if id, ok := c.ids[k]; ok {
		return id
	}
	id := fst.StateId(len(c.keys))
	c.ids[k] = id
	c.keys = append(c.keys, k)
	return id
}

func (c *composer) expand(s fst.StateId, store *cache.Store) {
	k := c.keys[s]

	if fa, fb := c.a.Final(k.sa), c.b.Final(k.sb); !fa.IsZero() && !fb.IsZero() {
		store.SetFinal(s, fa.Times(fb))
	}

	var arcs []fst.Arc

	for ai := c.a.Arcs(k.sa); !ai.Done(); ai.Next() {
		aArc := ai.Value()
		if aArc.OLabel == fst.Epsilon {
			continue
		}
		for bi := c.b.Arcs(k.sb); !bi.Done(); bi.Next() {
			bArc := bi.Value()
			if bArc.ILabel != aArc.OLabel {
				continue
			}
			next := c.idFor(composeKey{aArc.NextState, bArc.NextState, filterReal})
			arcs = append(arcs, fst.Arc{
				ILabel:    aArc.ILabel,
				OLabel:    bArc.OLabel,
				Weight:    aArc.Weight.Times(bArc.Weight),
				NextState: next,
			})
		}
	}

	if k.fs != filterBArmed {
		for ai := c.a.Arcs(k.sa); !ai.Done(); ai.Next() {
			aArc := ai.Value()
			if aArc.OLabel != fst.Epsilon {
				continue
			}
			next := c.idFor(composeKey{aArc.NextState, k.sb, filterAArmed})
			arcs = append(arcs, fst.Arc{ILabel: aArc.ILabel, OLabel: fst.Epsilon, Weight: aArc.Weight, NextState: next})
		}
	}

	if k.fs != filterAArmed {
		for bi := c.b.Arcs(k.sb); !bi.Done(); bi.Next() {
			bArc := bi.Value()
			if bArc.ILabel != fst.Epsilon {
				continue
			}
			next := c.idFor(composeKey{k.sa, bArc.NextState, filterBArmed})
			arcs = append(arcs, fst.Arc{ILabel: fst.Epsilon, OLabel: bArc.OLabel, Weight: bArc.Weight, NextState: next})
		}
	}

	store.SetArcs(s, arcs)
}

// Compose returns the on-the-fly composition a ∘ b as a delayed FST: b's
// input labels are matched against a's output labels, yielding arcs
// labeled (a's ilabel, b's olabel). The naive matcher here pairs every arc
// of a's state with every arc of b's state (O(out-degree²)) whether or not
// either side is label-sorted; a full look-ahead matcher (spec.md §4.11)
// is not implemented, see DESIGN.md.
func Compose(a, b fst.ExpandedFst, byteBudget int64) fst.Fst {
	c := &composer{a: a, b: b, ids: make(map[composeKey]fst.StateId)}
	d := cache.NewDelayed("compose", a.Semiring(), byteBudget, c.expand)
	if a.Start() != fst.NoStateId && b.Start() != fst.NoStateId {
		start := c.idFor(composeKey{a.Start(), b.Start(), filterReal})
		d.Store().SetStart(start)
	}
	return d
}

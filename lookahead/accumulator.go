package lookahead

import "github.com/mjansche/wfst-go/weight"

// Accumulator answers Sum(begin, end): the ⊕-combination of a sequence of
// weights over the half-open range [begin, end), per spec.md §4.11's
// fast-log/cache-log accumulators. Weight exposes Divide only as the
// inverse of Times, not of Plus, so an arbitrary semiring here gives no
// general way to turn two prefix sums into a range sum by subtraction.
// Both accumulators below answer Sum by a direct scan of [begin, end), so
// a query takes time linear in the range length; the periodic prefix sums
// they build are not read by Sum — see DESIGN.md.
type Accumulator interface {
	Init(weights []weight.Weight, sr weight.Semiring)
	Sum(begin, end int) weight.Weight
}

// period is the spacing of the stored prefix-sum checkpoints.
const period = 16

// checkpointed holds the shared machinery both accumulators below use: the
// weights and a prefix sum stored every period entries.
type checkpointed struct {
	sr          weight.Semiring
	weights     []weight.Weight
	checkpoints []weight.Weight // checkpoints[k] = Plus of weights[0 : k*period)
}

func (c *checkpointed) build(weights []weight.Weight, sr weight.Semiring) {
	c.sr = sr
	c.weights = weights
	n := len(weights)/period + 1
	c.checkpoints = make([]weight.Weight, n)
	sum := sr.Zero()
	c.checkpoints[0] = sum
	for i, w := range weights {
		sum = sum.Plus(w)
		if (i+1)%period == 0 {
			c.checkpoints[(i+1)/period] = sum
		}
	}
}

// sum folds weights[begin:end) one by one; the checkpoints are not read.
func (c *checkpointed) sum(begin, end int) weight.Weight {
	if begin >= end {
		return c.sr.Zero()
	}
	total := c.sr.Zero()
	for i := begin; i < end; i++ {
		total = total.Plus(c.weights[i])
	}
	return total
}

// FastLogAccumulator builds every checkpoint during Init; Sum is a direct
// scan of the range.
type FastLogAccumulator struct {
	checkpointed
}

func (a *FastLogAccumulator) Init(weights []weight.Weight, sr weight.Semiring) {
	a.build(weights, sr)
}

func (a *FastLogAccumulator) Sum(begin, end int) weight.Weight {
	return a.sum(begin, end)
}

// CacheLogAccumulator defers building the checkpoints until the first Sum
// call, so a weight sequence that is never queried never pays for that
// pass.
type CacheLogAccumulator struct {
	sr      weight.Semiring
	weights []weight.Weight
	built   bool
	inner   checkpointed
}

func (a *CacheLogAccumulator) Init(weights []weight.Weight, sr weight.Semiring) {
	a.sr = sr
	a.weights = weights
	a.built = false
}

func (a *CacheLogAccumulator) Sum(begin, end int) weight.Weight {
	if !a.built {
		a.inner.build(a.weights, a.sr)
		a.built = true
	}
	return a.inner.sum(begin, end)
}

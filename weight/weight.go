// Package weight implements the semiring trait from spec.md §3: the
// algebraic weight types that FST arcs and final states carry. Concrete
// weights are boxed behind the Weight interface the way the teacher boxes
// its single float32 Weight type behind the fslm.Model interface —
// generalized here from one hard-coded semiring to several, dispatched by
// interface rather than by a Go type parameter.
package weight

import "math"

// DivideSide selects which side of Times the Divide operation undoes.
type DivideSide int

const (
	DivideLeft DivideSide = iota
	DivideRight
	DivideAny
)

// Properties is the semiring property bitset from spec.md §3: which of
// {left-semiring, right-semiring, commutative, idempotent, path} a weight
// type satisfies.
type Properties uint8

const (
	LeftSemiring Properties = 1 << iota
	RightSemiring
	Commutative
	Idempotent
	Path
)

func (p Properties) Has(bit Properties) bool { return p&bit != 0 }

// Weight is the semiring trait. The concrete weight types TropicalWeight,
// LogWeight and BooleanWeight implement it; this package defines no
// composite weights (pair, product, lexicographic).
type Weight interface {
	Plus(Weight) Weight
	Times(Weight) Weight
	Divide(Weight, DivideSide) Weight
	Reverse() Weight

	// Member reports whether the value is a valid semiring element (as
	// opposed to NoWeight, the "uninitialized/error" sentinel).
	Member() bool
	Quantize(delta float64) Weight
	ApproxEqual(other Weight, delta float64) bool
	Hash() uint64
	Equal(other Weight) bool

	IsZero() bool
	IsOne() bool

	TypeName() string
	StaticProperties() Properties

	String() string
	MarshalBinary() ([]byte, error)
}

// Semiring bundles the per-type constants spec.md §3 calls out
// (zero, one, no_weight) and a binary unmarshaler, one instance per
// concrete weight type (e.g. Tropical, Log, Boolean below).
type Semiring interface {
	Zero() Weight
	One() Weight
	NoWeight() Weight
	TypeName() string
	UnmarshalBinary([]byte) (Weight, []byte, error)
}

// ApproxEqualFloat is the shared δ-comparison helper used by every
// float-backed weight's ApproxEqual.
func ApproxEqualFloat(a, b float64, delta float64) bool {
	if math.IsInf(a, 0) && a == b {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= delta
}

// QuantizeFloat rounds to the nearest multiple of delta, the textbook
// quantization spec.md §3 requires for Quantize.
func QuantizeFloat(v float64, delta float64) float64 {
	if delta <= 0 || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v/delta) * delta
}

// NaturalLess implements the strict "natural order" < used by
// shortest-distance and shortest-path queues: a < b iff Plus(a, b) == a
// and Plus(a, b) != b, defined for any idempotent semiring (spec.md §4.4,
// §4.3's shortest-first queue).
func NaturalLess(a, b Weight) bool {
	p := a.Plus(b)
	return p.Equal(a) && !p.Equal(b)
}

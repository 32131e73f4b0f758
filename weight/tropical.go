package weight

import (
	"math"
	"strconv"
)

// TropicalWeight is the min-plus semiring: Plus = min, Times = +,
// Zero = +Inf, One = 0. It is a path semiring (right- and left-, and
// commutative, and idempotent), the classic weight for shortest-path
// search. The underlying float32 mirrors the teacher's own Weight type
// (fslm.Weight, a float32 of log-probability with WEIGHT_LOG0 = -Inf
// playing the zero role for a max-plus-like scoring walk); TropicalWeight
// keeps that representation but uses the min-plus convention, with +Inf
// as zero, as a first-class semiring value instead of a bare float32.
type TropicalWeight float32

const tropicalTypeName = "tropical"

// NoWeight is the "uninitialized/error" sentinel: NaN compares unequal to
// everything, including itself, exactly as spec.md's no_weight must.
var tropicalNoWeight = TropicalWeight(math.NaN())

func TropicalZero() TropicalWeight     { return TropicalWeight(math.Inf(1)) }
func TropicalOne() TropicalWeight      { return TropicalWeight(0) }
func TropicalNoWeight() TropicalWeight { return tropicalNoWeight }

func (w TropicalWeight) Plus(other Weight) Weight {
	o, ok := other.(TropicalWeight)
	if !ok || !w.Member() || !o.Member() {
		return tropicalNoWeight
	}
	if w < o {
		return w
	}
	return o
}

func (w TropicalWeight) Times(other Weight) Weight {
	o, ok := other.(TropicalWeight)
	if !ok || !w.Member() || !o.Member() {
		return tropicalNoWeight
	}
	if math.IsInf(float64(w), 1) || math.IsInf(float64(o), 1) {
		return TropicalZero()
	}
	return w + o
}

func (w TropicalWeight) Divide(other Weight, _ DivideSide) Weight {
	o, ok := other.(TropicalWeight)
	if !ok || !w.Member() || !o.Member() {
		return tropicalNoWeight
	}
	if math.IsInf(float64(o), 1) {
		return tropicalNoWeight
	}
	if math.IsInf(float64(w), 1) {
		return TropicalZero()
	}
	return w - o
}

func (w TropicalWeight) Reverse() Weight { return w }

func (w TropicalWeight) Member() bool { return !math.IsNaN(float64(w)) }

func (w TropicalWeight) Quantize(delta float64) Weight {
	if !w.Member() {
		return w
	}
	return TropicalWeight(QuantizeFloat(float64(w), delta))
}

func (w TropicalWeight) ApproxEqual(other Weight, delta float64) bool {
	o, ok := other.(TropicalWeight)
	if !ok || !w.Member() || !o.Member() {
		return false
	}
	return ApproxEqualFloat(float64(w), float64(o), delta)
}

func (w TropicalWeight) Hash() uint64 {
	return uint64(math.Float32bits(float32(w)))
}

func (w TropicalWeight) Equal(other Weight) bool {
	o, ok := other.(TropicalWeight)
	return ok && w == o
}

func (w TropicalWeight) IsZero() bool { return w.Member() && math.IsInf(float64(w), 1) }
func (w TropicalWeight) IsOne() bool  { return w.Member() && w == 0 }

func (w TropicalWeight) TypeName() string { return tropicalTypeName }

func (w TropicalWeight) StaticProperties() Properties {
	return LeftSemiring | RightSemiring | Commutative | Idempotent | Path
}

func (w TropicalWeight) String() string {
	if math.IsInf(float64(w), 1) {
		return "Infinity"
	}
	return strconv.FormatFloat(float64(w), 'g', -1, 32)
}

func (w TropicalWeight) MarshalBinary() ([]byte, error) {
	bits := math.Float32bits(float32(w))
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}, nil
}

// UnmarshalTropicalWeight decodes the native 32-bit float encoding spec.md
// §6 prescribes for floating-point semirings.
func UnmarshalTropicalWeight(data []byte) (Weight, []byte, error) {
	if len(data) < 4 {
		return nil, data, errShortRead
	}
	bits := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return TropicalWeight(math.Float32frombits(bits)), data[4:], nil
}

// TropicalSemiring implements Semiring for TropicalWeight.
type TropicalSemiring struct{}

func (TropicalSemiring) Zero() Weight     { return TropicalZero() }
func (TropicalSemiring) One() Weight      { return TropicalOne() }
func (TropicalSemiring) NoWeight() Weight { return TropicalNoWeight() }
func (TropicalSemiring) TypeName() string { return tropicalTypeName }
func (TropicalSemiring) UnmarshalBinary(data []byte) (Weight, []byte, error) {
	return UnmarshalTropicalWeight(data)
}

package weight

// BooleanWeight is the Boolean semiring: Plus = OR, Times = AND,
// Zero = false, One = true. Used for unweighted acceptors.
type BooleanWeight int8

const booleanTypeName = "boolean"

const (
	booleanFalse BooleanWeight = 0
	booleanTrue  BooleanWeight = 1
	booleanNo    BooleanWeight = -1
)

func BooleanZero() BooleanWeight     { return booleanFalse }
func BooleanOne() BooleanWeight      { return booleanTrue }
func BooleanNoWeight() BooleanWeight { return booleanNo }

func (w BooleanWeight) Plus(other Weight) Weight {
	o, ok := other.(BooleanWeight)
	if !ok || !w.Member() || !o.Member() {
		return booleanNo
	}
	if w == booleanTrue || o == booleanTrue {
		return booleanTrue
	}
	return booleanFalse
}

func (w BooleanWeight) Times(other Weight) Weight {
	o, ok := other.(BooleanWeight)
	if !ok || !w.Member() || !o.Member() {
		return booleanNo
	}
	if w == booleanTrue && o == booleanTrue {
		return booleanTrue
	}
	return booleanFalse
}

func (w BooleanWeight) Divide(other Weight, _ DivideSide) Weight {
	o, ok := other.(BooleanWeight)
	if !ok || !w.Member() || !o.Member() || o == booleanFalse {
		return booleanNo
	}
	return w
}

func (w BooleanWeight) Reverse() Weight { return w }
func (w BooleanWeight) Member() bool    { return w == booleanFalse || w == booleanTrue }

func (w BooleanWeight) Quantize(float64) Weight { return w }

func (w BooleanWeight) ApproxEqual(other Weight, _ float64) bool {
	return w.Equal(other)
}

func (w BooleanWeight) Hash() uint64 { return uint64(w) }

func (w BooleanWeight) Equal(other Weight) bool {
	o, ok := other.(BooleanWeight)
	return ok && w == o
}

func (w BooleanWeight) IsZero() bool { return w == booleanFalse }
func (w BooleanWeight) IsOne() bool  { return w == booleanTrue }

func (w BooleanWeight) TypeName() string { return booleanTypeName }

func (w BooleanWeight) StaticProperties() Properties {
	return LeftSemiring | RightSemiring | Commutative | Idempotent | Path
}

func (w BooleanWeight) String() string {
	if w == booleanTrue {
		return "T"
	}
	return "F"
}

func (w BooleanWeight) MarshalBinary() ([]byte, error) {
	return []byte{byte(w)}, nil
}

func UnmarshalBooleanWeight(data []byte) (Weight, []byte, error) {
	if len(data) < 1 {
		return nil, data, errShortRead
	}
	return BooleanWeight(data[0]), data[1:], nil
}

// BooleanSemiring implements Semiring for BooleanWeight.
type BooleanSemiring struct{}

func (BooleanSemiring) Zero() Weight     { return BooleanZero() }
func (BooleanSemiring) One() Weight      { return BooleanOne() }
func (BooleanSemiring) NoWeight() Weight { return BooleanNoWeight() }
func (BooleanSemiring) TypeName() string { return booleanTypeName }
func (BooleanSemiring) UnmarshalBinary(data []byte) (Weight, []byte, error) {
	return UnmarshalBooleanWeight(data)
}

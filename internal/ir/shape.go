package ir

// Shape is how an operand is accessed by a method.
type Shape int

const (
	ByValue          Shape = iota // self, other: T
	ByExclusiveValue              // mut self, mut other: T
	ByRef                         // &self, other: &T
	ByExclusiveRef                // &mut self, other: &mut T
)

func shapeOf(ref, mut bool) Shape {
	switch {
	case ref && mut:
		return ByExclusiveRef
	case ref:
		return ByRef
	case mut:
		return ByExclusiveValue
	default:
		return ByValue
	}
}

// IsRef reports whether the shape is a reference.
func (s Shape) IsRef() bool {
	return s == ByRef || s == ByExclusiveRef
}

// IsExclusive reports whether the shape carries the exclusive-access qualifier.
func (s Shape) IsExclusive() bool {
	return s == ByExclusiveValue || s == ByExclusiveRef
}

func (s Shape) String() string {
	switch s {
	case ByValue:
		return "by-value"
	case ByExclusiveValue:
		return "by-exclusive-value"
	case ByRef:
		return "by-reference"
	case ByExclusiveRef:
		return "by-exclusive-reference"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

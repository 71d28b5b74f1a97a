package compiler

import (
	"fmt"

	"github.com/roach88/symm/internal/ir"
)

// Expansion error codes (E200-E299)
const (
	// Structural errors (E201-E209)
	ErrNotTraitImpl    = "E201" // inherent impl
	ErrNegativeImpl    = "E202" // impl !Trait for T
	ErrNotGenericTrait = "E203" // trait path without <...>
	ErrNoTypeArgument  = "E204" // only lifetimes, consts, or bindings
	ErrNotImplItem     = "E205" // directive on a fn, struct, or other non-impl item

	// Arity errors (E210-E219)
	ErrVariadicMethod = "E210" // C-variadic `...`
	ErrArgumentCount  = "E211" // not exactly receiver + other

	// Shape mismatch errors (E220-E229)
	ErrExpectedReceiver  = "E220" // first parameter is not self
	ErrExpectedReference = "E221" // &self with by-value other
	ErrExpectedValue     = "E222" // self with by-reference other
	ErrMismatchedMut     = "E223" // exclusive-access qualifier differs
	ErrMismatchedLife    = "E224" // reference lifetimes differ

	// Pattern errors (E230-E239)
	ErrExpectedIdent = "E230" // other binding is not a plain name
)

// Kind classifies an expansion error.
type Kind int

const (
	StructuralError Kind = iota + 1
	ArityError
	ShapeMismatchError
	PatternError
)

func (k Kind) String() string {
	switch k {
	case StructuralError:
		return "StructuralError"
	case ArityError:
		return "ArityError"
	case ShapeMismatchError:
		return "ShapeMismatchError"
	case PatternError:
		return "PatternError"
	default:
		return "UnknownError"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for c := StructuralError; c <= PatternError; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Error is a classified validation failure anchored at a source span.
type Error struct {
	Kind    Kind    `json:"kind"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Span    ir.Span `json:"span"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Span.Start.IsValid() {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Span.Start, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newError(kind Kind, code, message string, span ir.Span) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Span: span}
}

// Shape is a record that passed validation, with the parts the mirror
// transformation needs already located.
type Shape struct {
	Record *ir.ImplRecord

	// Slot is the index of the symmetry slot in Record.Trait.Args.
	Slot int

	Methods []MethodShape
}

// Other returns the symmetry-slot argument.
func (s *Shape) Other() ir.GenericArg {
	return s.Record.Trait.Args[s.Slot]
}

// MethodShape is a validated two-operand method.
type MethodShape struct {
	Method   *ir.Method
	Receiver *ir.Receiver
	Other    *ir.Typed
}

// Validate checks that rec can be mirrored. The first failing check wins:
// structural checks on the impl header, then each method in declaration
// order (arity, then operand shapes, then the other binding).
// Validate never modifies rec.
func Validate(rec *ir.ImplRecord) (*Shape, *Error) {
	// E201: must implement a trait
	if rec.Trait == nil {
		return nil, newError(StructuralError, ErrNotTraitImpl,
			"#[symmetric] can only be used on trait implementation", rec.Span)
	}

	// E202: must not be a negative impl
	if rec.Negative {
		return nil, newError(StructuralError, ErrNegativeImpl,
			"#[symmetric] cannot be used on negative trait bound", rec.NegativePos)
	}

	// E203: trait must carry a bracketed argument list
	if !rec.Trait.Bracketed {
		return nil, newError(StructuralError, ErrNotGenericTrait,
			"expected a generic trait", rec.Trait.Span)
	}

	// E204: the first type argument is the symmetry slot
	slot := rec.Trait.SymmetrySlot()
	if slot < 0 {
		return nil, newError(StructuralError, ErrNoTypeArgument,
			"symmetric trait must contain at least 1 type argument", rec.Trait.ArgsSpan)
	}

	shape := &Shape{Record: rec, Slot: slot}
	for _, m := range rec.Methods() {
		ms, err := validateMethod(m)
		if err != nil {
			return nil, err
		}
		shape.Methods = append(shape.Methods, ms)
	}
	return shape, nil
}

func validateMethod(m *ir.Method) (MethodShape, *Error) {
	// E210, E211: exactly a receiver and one other operand
	if v := m.Variadic(); v != nil {
		return MethodShape{}, newError(ArityError, ErrVariadicMethod,
			"method in a symmetric trait cannot be variadic", v.Span)
	}
	if len(m.Params) != 2 {
		return MethodShape{}, newError(ArityError, ErrArgumentCount,
			"expected 2 arguments", m.ParamsSpan)
	}

	// E220: receiver first
	recv, ok := m.Params[0].(*ir.Receiver)
	if !ok {
		return MethodShape{}, newError(ShapeMismatchError, ErrExpectedReceiver,
			"expected a receiver", m.Params[0].ParamSpan())
	}

	other, ok := m.Params[1].(*ir.Typed)
	if !ok || other.Pattern.Kind == ir.PatSelf {
		// A second receiver has no name to pass along.
		return MethodShape{}, newError(PatternError, ErrExpectedIdent,
			"expected an ident", m.Params[1].ParamSpan())
	}

	if err := matchShapes(recv, other); err != nil {
		return MethodShape{}, err
	}

	// E230: the other operand is forwarded by name
	if other.Pattern.Kind != ir.PatIdent {
		return MethodShape{}, newError(PatternError, ErrExpectedIdent,
			"expected an ident", other.Pattern.Span)
	}

	return MethodShape{Method: m, Receiver: recv, Other: other}, nil
}

// matchShapes requires the other operand to be accessed exactly the way the
// receiver is: same reference-ness, same exclusive-access qualifier, and for
// references the same lifetime (an elided lifetime differs from a named one).
func matchShapes(recv *ir.Receiver, other *ir.Typed) *Error {
	ref := other.Type.Ref
	switch {
	case recv.Ref && ref == nil:
		return newError(ShapeMismatchError, ErrExpectedReference, "expected a reference", other.Span)
	case !recv.Ref && ref != nil:
		return newError(ShapeMismatchError, ErrExpectedValue, "expected a value", other.Span)
	case recv.Shape() != other.Shape():
		return newError(ShapeMismatchError, ErrMismatchedMut, "mismatched mutability", other.Span)
	case recv.Ref && recv.Lifetime != ref.Lifetime:
		return newError(ShapeMismatchError, ErrMismatchedLife, "mismatched lifetime", other.Span)
	}
	return nil
}

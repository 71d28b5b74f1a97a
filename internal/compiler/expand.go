package compiler

import "github.com/roach88/symm/internal/ir"

// Expansion is the outcome of expanding one annotated impl.
// Exactly one of Mirror and Err is set.
type Expansion struct {
	Original *ir.ImplRecord `json:"original"`
	Mirror   *ir.ImplRecord `json:"mirror,omitempty"`
	Err      *Error         `json:"error,omitempty"`
}

// OK reports whether the expansion produced a mirror.
func (x Expansion) OK() bool {
	return x.Err == nil
}

// Expand validates rec and builds its mirror. It keeps no state between
// calls and is safe for concurrent use.
func Expand(rec *ir.ImplRecord) Expansion {
	shape, err := Validate(rec)
	if err != nil {
		return Expansion{Original: rec, Err: err}
	}
	return Expansion{Original: rec, Mirror: Mirror(shape)}
}

// Reject fails a directive placed on an item that is not an impl. rec holds
// only the item's text and span; the error is anchored at the directive.
func Reject(rec *ir.ImplRecord, directive ir.Span) Expansion {
	return Expansion{
		Original: rec,
		Err:      newError(StructuralError, ErrNotImplItem, "expected `impl`", directive),
	}
}

package ir

import "fmt"

// Pos is a position in a source file.
type Pos struct {
	Offset int `json:"offset"` // 0-based byte offset
	Line   int `json:"line"`   // 1-based
	Column int `json:"column"` // 1-based, in bytes
}

// IsValid reports whether the position was set.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes strictly before q.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || p.Line == q.Line && p.Column < q.Column
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range.
type Span struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// ImplRecord is one `impl` item: the unit of work for a single expansion.
type ImplRecord struct {
	// Attrs are the outer attributes kept on the item, verbatim
	// (e.g. "#[cfg(test)]"). The expansion directive itself is not included.
	Attrs []string `json:"attrs,omitempty"`

	// Preamble is the verbatim text from the first outer attribute up to the
	// impl keyword with the directive cut out, comments included. Empty when
	// the directive was the only thing before the impl.
	Preamble string `json:"preamble,omitempty"`

	// Unsafe is set for `unsafe impl`.
	Unsafe bool `json:"unsafe,omitempty"`

	// Generics is the verbatim generic parameter list, e.g. "<'a, T>".
	Generics string `json:"generics,omitempty"`

	// Trait is the implemented trait. Nil for an inherent impl.
	Trait *TraitRef `json:"trait,omitempty"`

	// Negative is set for `impl !Trait for T`.
	Negative    bool `json:"negative,omitempty"`
	NegativePos Span `json:"negative_pos"`

	// SelfType is the implementing type.
	SelfType TypeExpr `json:"self_type"`

	// Where is the verbatim where clause, starting with "where".
	Where string `json:"where,omitempty"`

	Members []Member `json:"members"`

	// Source is the verbatim text of the impl item.
	Source string `json:"source"`
	Span   Span   `json:"span"`
}

// Methods returns the method members in declaration order.
func (r *ImplRecord) Methods() []*Method {
	var methods []*Method
	for _, m := range r.Members {
		if method, ok := m.(*Method); ok {
			methods = append(methods, method)
		}
	}
	return methods
}

// TraitRef is a trait path with its generic argument list.
type TraitRef struct {
	// Path is the verbatim path without arguments, e.g. "inner::Distance".
	Path string `json:"path"`

	// Bracketed is set when the reference carries an angle-bracketed list.
	Bracketed bool         `json:"bracketed"`
	Args      []GenericArg `json:"args,omitempty"`

	Span     Span `json:"span"`
	PathSpan Span `json:"path_span"`
	ArgsSpan Span `json:"args_span"`
}

// SymmetrySlot returns the index of the first type argument, or -1.
// Lifetime, const, and binding arguments are skipped.
func (t *TraitRef) SymmetrySlot() int {
	if t == nil {
		return -1
	}
	for i, arg := range t.Args {
		if arg.Kind == ArgType {
			return i
		}
	}
	return -1
}

// String renders the reference as Rust source, e.g. "Distance<Disk>".
func (t *TraitRef) String() string {
	if t == nil {
		return ""
	}
	if !t.Bracketed {
		return t.Path
	}
	s := t.Path + "<"
	for i, arg := range t.Args {
		if i > 0 {
			s += ", "
		}
		s += arg.Text
	}
	return s + ">"
}

// ArgKind tags a generic argument.
type ArgKind int

const (
	ArgType ArgKind = iota
	ArgLifetime
	ArgConst
	ArgBinding // associated type binding or constraint, e.g. Output = T
)

func (k ArgKind) String() string {
	switch k {
	case ArgType:
		return "type"
	case ArgLifetime:
		return "lifetime"
	case ArgConst:
		return "const"
	case ArgBinding:
		return "binding"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ArgKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// GenericArg is one entry of a trait's generic argument list.
type GenericArg struct {
	Kind ArgKind `json:"kind"`
	Text string  `json:"text"`
	Span Span    `json:"span"`
}

// TypeExpr is a type expression. Text is always the full verbatim source;
// Ref is set when the expression is a reference type.
type TypeExpr struct {
	Text string   `json:"text"`
	Ref  *RefType `json:"ref,omitempty"`
	Span Span     `json:"span"`
}

// RefType decomposes `&'a mut T`.
type RefType struct {
	Lifetime string   `json:"lifetime,omitempty"` // e.g. "'a"
	Mut      bool     `json:"mut,omitempty"`
	Elem     TypeExpr `json:"elem"`
}

// PlainType builds a non-reference type expression.
func PlainType(text string) TypeExpr {
	return TypeExpr{Text: text}
}

// RefTo builds a reference type expression and its text.
func RefTo(lifetime string, mut bool, elem TypeExpr) TypeExpr {
	ref := &RefType{Lifetime: lifetime, Mut: mut, Elem: elem}
	return TypeExpr{Text: ref.String(), Ref: ref}
}

// String renders the reference as Rust source.
func (r *RefType) String() string {
	s := "&"
	if r.Lifetime != "" {
		s += r.Lifetime + " "
	}
	if r.Mut {
		s += "mut "
	}
	return s + r.Elem.Text
}

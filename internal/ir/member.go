package ir

import (
	"fmt"
	"strings"
)

// Member is one item inside an impl block.
// Only *Method, *OutputType, and *Verbatim implement it.
type Member interface {
	member() // Sealed
	MemberSpan() Span
}

// Method is a function member: `fn name(params) -> ret { body }`.
type Method struct {
	Attrs      []string `json:"attrs,omitempty"`
	Visibility string   `json:"visibility,omitempty"` // e.g. "pub(crate)"
	Qualifiers string   `json:"qualifiers,omitempty"` // e.g. "const unsafe"
	Name       string   `json:"name"`
	Generics   string   `json:"generics,omitempty"`
	Params     []Param  `json:"params"`
	Return     string   `json:"return,omitempty"`
	Where      string   `json:"where,omitempty"`
	Body       Body     `json:"body"`

	Span       Span `json:"span"`
	ParamsSpan Span `json:"params_span"`
}

func (*Method) member() {}

// MemberSpan implements Member.
func (m *Method) MemberSpan() Span { return m.Span }

// Variadic returns the variadic parameter, if any.
func (m *Method) Variadic() *Variadic {
	for _, p := range m.Params {
		if v, ok := p.(*Variadic); ok {
			return v
		}
	}
	return nil
}

// OutputType is an associated type member: `type Name = T;`.
type OutputType struct {
	Attrs      []string `json:"attrs,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
	Name       string   `json:"name"`
	Generics   string   `json:"generics,omitempty"`
	Where      string   `json:"where,omitempty"`
	Type       TypeExpr `json:"type"`

	Span Span `json:"span"`
}

func (*OutputType) member() {}

// MemberSpan implements Member.
func (o *OutputType) MemberSpan() Span { return o.Span }

// Verbatim is any other member (const, macro invocation, inner attribute).
// It is copied through unchanged.
type Verbatim struct {
	NodeKind string   `json:"node_kind"` // tree-sitter node kind, informational
	Attrs    []string `json:"attrs,omitempty"`
	Text     string   `json:"text"`

	Span Span `json:"span"`
}

func (*Verbatim) member() {}

// MemberSpan implements Member.
func (v *Verbatim) MemberSpan() Span { return v.Span }

// Param is one entry of a method parameter list.
// Only *Receiver, *Typed, and *Variadic implement it.
type Param interface {
	param() // Sealed
	ParamSpan() Span
}

// Receiver is a `self` parameter in shorthand form:
// `self`, `mut self`, `&'a self`, `&'a mut self`.
type Receiver struct {
	Ref      bool   `json:"ref,omitempty"`
	Lifetime string `json:"lifetime,omitempty"`
	Mut      bool   `json:"mut,omitempty"`

	Span Span `json:"span"`
}

func (*Receiver) param() {}

// ParamSpan implements Param.
func (r *Receiver) ParamSpan() Span { return r.Span }

// Shape classifies the receiver.
func (r *Receiver) Shape() Shape {
	return shapeOf(r.Ref, r.Mut)
}

func (r *Receiver) String() string {
	if !r.Ref {
		if r.Mut {
			return "mut self"
		}
		return "self"
	}
	s := "&"
	if r.Lifetime != "" {
		s += r.Lifetime + " "
	}
	if r.Mut {
		s += "mut "
	}
	return s + "self"
}

// Typed is a `pattern: Type` parameter.
type Typed struct {
	Attrs   []string `json:"attrs,omitempty"`
	Pattern Pattern  `json:"pattern"`
	Type    TypeExpr `json:"type"`

	Span Span `json:"span"`
}

func (*Typed) param() {}

// ParamSpan implements Param.
func (t *Typed) ParamSpan() Span { return t.Span }

// Shape classifies the parameter the way a receiver is classified: by
// reference-ness of its type and by the exclusive-access qualifier (`&mut T`
// for references, `mut name` for values).
func (t *Typed) Shape() Shape {
	if t.Type.Ref != nil {
		return shapeOf(true, t.Type.Ref.Mut)
	}
	return shapeOf(false, t.Pattern.Mut)
}

func (t *Typed) String() string {
	s := ""
	for _, attr := range t.Attrs {
		s += attr + " "
	}
	return s + t.Pattern.String() + ": " + t.Type.Text
}

// Variadic is a C-variadic `...` parameter.
type Variadic struct {
	Text string `json:"text"`
	Span Span   `json:"span"`
}

func (*Variadic) param() {}

// ParamSpan implements Param.
func (v *Variadic) ParamSpan() Span { return v.Span }

// PatternKind tags a parameter binding pattern.
type PatternKind int

const (
	PatIdent    PatternKind = iota // name or mut name
	PatWildcard                    // _
	PatSelf                        // self: Type
	PatOther                       // destructuring, ref bindings, literals
)

func (k PatternKind) String() string {
	switch k {
	case PatIdent:
		return "ident"
	case PatWildcard:
		return "wildcard"
	case PatSelf:
		return "self"
	case PatOther:
		return "other"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PatternKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Pattern is the binding side of a typed parameter.
type Pattern struct {
	Kind PatternKind `json:"kind"`
	Name string      `json:"name,omitempty"` // set for PatIdent
	Mut  bool        `json:"mut,omitempty"`
	Text string      `json:"text"` // verbatim, without a leading parameter-level `mut`

	Span Span `json:"span"`
}

func (p Pattern) String() string {
	if p.Kind == PatIdent {
		if p.Mut {
			return "mut " + p.Name
		}
		return p.Name
	}
	if p.Mut {
		return "mut " + p.Text
	}
	return p.Text
}

// Body is a method body.
// Only *RawBody and *DelegateBody implement it.
type Body interface {
	body() // Sealed
}

// RawBody is a verbatim block, braces included.
type RawBody struct {
	Text string `json:"text"`
}

func (*RawBody) body() {}

// DelegateBody calls the same method on another impl using fully qualified
// syntax: `<SelfType as Trait>::Method(args...)`.
type DelegateBody struct {
	SelfType string   `json:"self_type"`
	Trait    string   `json:"trait"`
	Method   string   `json:"method"`
	Args     []string `json:"args"`
}

func (*DelegateBody) body() {}

// Call renders the delegating call expression.
func (d *DelegateBody) Call() string {
	return fmt.Sprintf("<%s as %s>::%s(%s)", d.SelfType, d.Trait, d.Method, strings.Join(d.Args, ", "))
}

// Projection renders `<SelfType as Trait>::Name`.
func Projection(selfType, trait, name string) string {
	return fmt.Sprintf("<%s as %s>::%s", selfType, trait, name)
}

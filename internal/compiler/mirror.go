package compiler

import "github.com/roach88/symm/internal/ir"

// Markers added to every generated method. The delegating call can make a
// `mut` binding redundant, and the call itself is a passthrough.
var mirrorAttrs = []string{"#[allow(unused_mut)]", "#[inline]"}

// Mirror builds the mirror impl of a validated record: the trait is
// parameterized by the original self type and implemented for the original
// symmetry-slot type. Every method delegates to the original impl with the
// operands swapped, and every output type projects the original's.
//
// The returned record is a deep copy; shape.Record is not modified.
func Mirror(shape *Shape) *ir.ImplRecord {
	orig := shape.Record
	selfType := orig.SelfType.Text
	trait := orig.Trait.String()

	m := ir.Clone(orig)
	for _, member := range m.Members {
		switch member := member.(type) {
		case *ir.Method:
			mirrorMethod(member, selfType, trait)
		case *ir.OutputType:
			member.Type = ir.PlainType(ir.Projection(selfType, trait, member.Name))
		case *ir.Verbatim:
			// Copied through unchanged.
		}
	}

	slot := &m.Trait.Args[shape.Slot]
	m.SelfType = ir.PlainType(slot.Text)
	slot.Text = selfType
	return m
}

func mirrorMethod(m *ir.Method, selfType, trait string) {
	other, ok := m.Params[1].(*ir.Typed)
	if !ok {
		return
	}
	if ref := other.Type.Ref; ref != nil {
		other.Type = ir.RefTo(ref.Lifetime, ref.Mut, ir.PlainType(selfType))
	} else {
		other.Type = ir.PlainType(selfType)
	}

	m.Body = &ir.DelegateBody{
		SelfType: selfType,
		Trait:    trait,
		Method:   m.Name,
		Args:     []string{other.Pattern.Name, "self"},
	}
	m.Attrs = append(m.Attrs, mirrorAttrs...)
}

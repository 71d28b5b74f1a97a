package compiler

import (
	"strings"

	"github.com/roach88/symm/internal/ir"
)

const indentUnit = "    "

// Render prints a record as Rust source. Lines are relative to column one;
// callers splicing into nested code indent every line after the first.
func Render(rec *ir.ImplRecord) string {
	var b strings.Builder
	for _, attr := range rec.Attrs {
		b.WriteString(attr)
		b.WriteByte('\n')
	}
	if rec.Unsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("impl")
	b.WriteString(rec.Generics)
	b.WriteByte(' ')
	if rec.Trait != nil {
		if rec.Negative {
			b.WriteByte('!')
		}
		b.WriteString(rec.Trait.String())
		b.WriteString(" for ")
	}
	b.WriteString(rec.SelfType.Text)

	if rec.Where != "" {
		b.WriteString("\n" + rec.Where + "\n")
	} else {
		b.WriteByte(' ')
	}
	if len(rec.Members) == 0 {
		b.WriteString("{}")
		return b.String()
	}

	b.WriteString("{\n")
	for _, member := range rec.Members {
		b.WriteString(indent(renderMember(member), indentUnit))
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

func renderMember(member ir.Member) string {
	switch m := member.(type) {
	case *ir.Method:
		return renderMethod(m)
	case *ir.OutputType:
		return renderOutputType(m)
	case *ir.Verbatim:
		return withAttrs(m.Attrs, m.Text)
	default:
		return ""
	}
}

func renderMethod(m *ir.Method) string {
	var b strings.Builder
	if m.Visibility != "" {
		b.WriteString(m.Visibility + " ")
	}
	if m.Qualifiers != "" {
		b.WriteString(m.Qualifiers + " ")
	}
	b.WriteString("fn " + m.Name + m.Generics + "(")
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderParam(p))
	}
	b.WriteByte(')')
	if m.Return != "" {
		b.WriteString(" -> " + m.Return)
	}

	body := renderBody(m.Body)
	switch {
	case body == "":
		b.WriteByte(';')
	case m.Where != "":
		b.WriteString("\n" + m.Where + "\n" + body)
	default:
		b.WriteString(" " + body)
	}
	return withAttrs(m.Attrs, b.String())
}

func renderParam(p ir.Param) string {
	switch p := p.(type) {
	case *ir.Receiver:
		return p.String()
	case *ir.Typed:
		return p.String()
	case *ir.Variadic:
		return p.Text
	default:
		return ""
	}
}

func renderBody(body ir.Body) string {
	switch body := body.(type) {
	case *ir.RawBody:
		return body.Text
	case *ir.DelegateBody:
		return "{\n" + indentUnit + body.Call() + "\n}"
	default:
		return ""
	}
}

func renderOutputType(o *ir.OutputType) string {
	var b strings.Builder
	if o.Visibility != "" {
		b.WriteString(o.Visibility + " ")
	}
	b.WriteString("type " + o.Name + o.Generics + " = " + o.Type.Text)
	if o.Where != "" {
		b.WriteString(" " + o.Where)
	}
	b.WriteByte(';')
	return withAttrs(o.Attrs, b.String())
}

func withAttrs(attrs []string, text string) string {
	if len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "\n") + "\n" + text
}

// indent prefixes every non-empty line of text with prefix.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Indent prefixes every non-empty line of text after the first with prefix.
// The first line is assumed to already sit at the splice column.
func Indent(text, prefix string) string {
	if prefix == "" {
		return text
	}
	first, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return text
	}
	return first + "\n" + indent(rest, prefix)
}

package compiler

import (
	"strings"

	"github.com/roach88/symm/internal/ir"
)

// Report renders err as a `compile_error!` invocation. When the marker is
// spliced at origin, the newlines and spaces in front of it place the macro
// name at exactly err's line and column, so the compiler reports the failure
// at the offending construct.
func Report(err *Error, origin ir.Pos) string {
	var b strings.Builder
	at := err.Span.Start
	if at.IsValid() && origin.IsValid() && !at.Before(origin) {
		if lines := at.Line - origin.Line; lines > 0 {
			b.WriteString(strings.Repeat("\n", lines))
			b.WriteString(strings.Repeat(" ", at.Column-1))
		} else {
			b.WriteString(strings.Repeat(" ", at.Column-origin.Column))
		}
	}
	b.WriteString(`compile_error! { "`)
	b.WriteString(escapeString(err.Message))
	b.WriteString(`" }`)
	return b.String()
}

// escapeString escapes s for a Rust string literal body.
func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package compiler

import (
	"strings"

	"github.com/roach88/symm/internal/ir"
)

// Emit produces the replacement text for an annotated impl spliced at origin.
// On success it is the original impl as written minus the directive, then a
// blank line and the rendered mirror. On failure it is only the error marker;
// nothing of the impl survives.
func Emit(x Expansion, origin ir.Pos) string {
	if x.Err != nil {
		return Report(x.Err, origin)
	}
	var b strings.Builder
	if x.Original.Preamble != "" {
		b.WriteString(x.Original.Preamble)
	} else {
		for _, attr := range x.Original.Attrs {
			b.WriteString(attr)
			b.WriteByte('\n')
		}
	}
	b.WriteString(x.Original.Source)
	b.WriteString("\n\n")
	b.WriteString(Render(x.Mirror))
	return b.String()
}

package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/symm/internal/ir"
)

func TestReport_Padding(t *testing.T) {
	origin := ir.Pos{Offset: 20, Line: 2, Column: 5}

	tests := []struct {
		name string
		at   ir.Pos
		want string
	}{
		{
			name: "at origin",
			at:   origin,
			want: `compile_error! { "boom" }`,
		},
		{
			name: "same line",
			at:   ir.Pos{Offset: 24, Line: 2, Column: 9},
			want: `    compile_error! { "boom" }`,
		},
		{
			name: "later line",
			at:   ir.Pos{Offset: 60, Line: 4, Column: 12},
			want: "\n\n" + strings.Repeat(" ", 11) + `compile_error! { "boom" }`,
		},
		{
			name: "before origin",
			at:   ir.Pos{Offset: 2, Line: 1, Column: 3},
			want: `compile_error! { "boom" }`,
		},
		{
			name: "no position",
			want: `compile_error! { "boom" }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newError(ArityError, ErrArgumentCount, "boom", ir.Span{Start: tt.at})
			assert.Equal(t, tt.want, Report(err, origin))
		})
	}
}

func TestReport_Escapes(t *testing.T) {
	err := newError(PatternError, ErrExpectedIdent, "say \"hi\"\\\n\tnow", ir.Span{})
	assert.Equal(t, `compile_error! { "say \"hi\"\\\n\tnow" }`, Report(err, ir.Pos{}))
}

func TestReport_NegativeImplMessage(t *testing.T) {
	src := "#[symmetric]\nimpl !T<B> for A {}\n"
	site := parseSite(t, src)
	x := Expand(site.Record)
	assert.Equal(t,
		"\n     compile_error! { \"#[symmetric] cannot be used on negative trait bound\" }",
		Report(x.Err, site.Region.Start))
}

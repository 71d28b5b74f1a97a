package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(line, col int) Span {
	return Span{Start: Pos{Line: line, Column: col}, End: Pos{Line: line, Column: col + 1}}
}

// sampleRecord models:
//
//	impl Distance<Disk> for Point2D {
//	    type Output = f64;
//	    fn distance(&self, other: &Disk) -> f64 { ... }
//	}
func sampleRecord() *ImplRecord {
	return &ImplRecord{
		Trait: &TraitRef{
			Path:      "Distance",
			Bracketed: true,
			Args:      []GenericArg{{Kind: ArgType, Text: "Disk", Span: at(1, 15)}},
			Span:      at(1, 6),
		},
		SelfType: PlainType("Point2D"),
		Members: []Member{
			&OutputType{Name: "Output", Type: PlainType("f64"), Span: at(2, 5)},
			&Method{
				Name: "distance",
				Params: []Param{
					&Receiver{Ref: true, Span: at(3, 17)},
					&Typed{
						Pattern: Pattern{Kind: PatIdent, Name: "other", Text: "other"},
						Type:    RefTo("", false, PlainType("Disk")),
						Span:    at(3, 24),
					},
				},
				Return: "f64",
				Body:   &RawBody{Text: "{ 0.0 }"},
				Span:   at(3, 5),
			},
		},
		Source: "impl Distance<Disk> for Point2D { ... }",
		Span:   at(1, 1),
	}
}

func TestSymmetrySlot(t *testing.T) {
	tests := []struct {
		name string
		args []GenericArg
		want int
	}{
		{"none", nil, -1},
		{"type first", []GenericArg{{Kind: ArgType}}, 0},
		{"lifetime then type", []GenericArg{{Kind: ArgLifetime}, {Kind: ArgType}, {Kind: ArgType}}, 1},
		{"lifetime only", []GenericArg{{Kind: ArgLifetime}}, -1},
		{"const and binding skipped", []GenericArg{{Kind: ArgConst}, {Kind: ArgBinding}, {Kind: ArgType}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := &TraitRef{Bracketed: true, Args: tt.args}
			assert.Equal(t, tt.want, ref.SymmetrySlot())
		})
	}

	var nilRef *TraitRef
	assert.Equal(t, -1, nilRef.SymmetrySlot())
}

func TestTraitRefString(t *testing.T) {
	ref := &TraitRef{Path: "inner::Distance", Bracketed: true, Args: []GenericArg{
		{Kind: ArgLifetime, Text: "'a"},
		{Kind: ArgType, Text: "Disk<'a>"},
	}}
	assert.Equal(t, "inner::Distance<'a, Disk<'a>>", ref.String())
	assert.Equal(t, "Clone", (&TraitRef{Path: "Clone"}).String())
	assert.Equal(t, "Empty<>", (&TraitRef{Path: "Empty", Bracketed: true}).String())
}

func TestRefTo(t *testing.T) {
	assert.Equal(t, "&Disk", RefTo("", false, PlainType("Disk")).Text)
	assert.Equal(t, "&'a mut Disk", RefTo("'a", true, PlainType("Disk")).Text)
}

func TestShapes(t *testing.T) {
	assert.Equal(t, ByValue, (&Receiver{}).Shape())
	assert.Equal(t, ByExclusiveValue, (&Receiver{Mut: true}).Shape())
	assert.Equal(t, ByRef, (&Receiver{Ref: true}).Shape())
	assert.Equal(t, ByExclusiveRef, (&Receiver{Ref: true, Mut: true}).Shape())

	byValue := &Typed{Pattern: Pattern{Kind: PatIdent, Name: "o"}, Type: PlainType("T")}
	assert.Equal(t, ByValue, byValue.Shape())

	mutValue := &Typed{Pattern: Pattern{Kind: PatIdent, Name: "o", Mut: true}, Type: PlainType("T")}
	assert.Equal(t, ByExclusiveValue, mutValue.Shape())

	// `mut o: &T` is a shared reference bound mutably; the reference decides.
	mutBinding := &Typed{Pattern: Pattern{Kind: PatIdent, Name: "o", Mut: true}, Type: RefTo("", false, PlainType("T"))}
	assert.Equal(t, ByRef, mutBinding.Shape())

	assert.True(t, ByExclusiveRef.IsRef())
	assert.True(t, ByExclusiveRef.IsExclusive())
	assert.False(t, ByExclusiveValue.IsRef())
}

func TestReceiverString(t *testing.T) {
	assert.Equal(t, "self", (&Receiver{}).String())
	assert.Equal(t, "mut self", (&Receiver{Mut: true}).String())
	assert.Equal(t, "&'a mut self", (&Receiver{Ref: true, Lifetime: "'a", Mut: true}).String())
}

func TestDelegateCall(t *testing.T) {
	body := &DelegateBody{SelfType: "Point2D", Trait: "Distance<Disk>", Method: "distance", Args: []string{"other", "self"}}
	assert.Equal(t, "<Point2D as Distance<Disk>>::distance(other, self)", body.Call())
	assert.Equal(t, "<Point2D as Distance<Disk>>::Output", Projection("Point2D", "Distance<Disk>", "Output"))
}

func TestMethods(t *testing.T) {
	rec := sampleRecord()
	methods := rec.Methods()
	require.Len(t, methods, 1)
	assert.Equal(t, "distance", methods[0].Name)
	assert.Nil(t, methods[0].Variadic())
}

package syntax

import (
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/roach88/symm/internal/ir"
)

// DefaultAttributes are the directive paths recognized when none are configured.
var DefaultAttributes = []string{"symmetric", "symm_impl::symmetric"}

// Rust returns the tree-sitter Rust grammar.
func Rust() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_rust.Language())
}

// Extractor finds annotated impl items in Rust source.
// An Extractor owns a tree-sitter parser and is not safe for concurrent use;
// create one per goroutine.
type Extractor struct {
	parser     *sitter.Parser
	attributes map[string]bool
}

// NewExtractor constructs an extractor recognizing the given directive paths.
// An empty list selects DefaultAttributes.
func NewExtractor(attributes []string) (*Extractor, error) {
	if len(attributes) == 0 {
		attributes = DefaultAttributes
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(Rust()); err != nil {
		p.Close()
		return nil, fmt.Errorf("syntax: %w", err)
	}
	set := make(map[string]bool, len(attributes))
	for _, a := range attributes {
		set[normalizePath(a)] = true
	}
	return &Extractor{parser: p, attributes: set}, nil
}

// Close releases parser resources.
func (x *Extractor) Close() {
	if x == nil || x.parser == nil {
		return
	}
	x.parser.Close()
	x.parser = nil
}

// Site is one annotated impl item and the source region it replaces.
type Site struct {
	Record *ir.ImplRecord

	// Directive is the verbatim directive attribute, e.g. "#[symmetric]".
	Directive     string
	DirectiveSpan ir.Span

	// Item is the node kind of the annotated item when it is not an impl,
	// e.g. "function_item". Such sites carry only the item's Source and Span
	// in Record and always fail to expand.
	Item string

	// Region spans from the first outer attribute to the end of the impl.
	Region ir.Span

	// Indent is the leading whitespace of the line Region starts on.
	Indent string
}

// File is the result of extracting one source file.
type File struct {
	Source []byte
	Sites  []*Site
}

// Extract parses source and returns every outermost annotated impl item in
// source order. Annotated impls nested inside another annotated impl are left
// to the text of the outer one.
func (x *Extractor) Extract(source []byte) (*File, error) {
	if x == nil || x.parser == nil {
		return nil, fmt.Errorf("syntax: nil extractor")
	}

	tree := x.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("syntax: parse cancelled")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.Kind() != "source_file" {
		return nil, &ParseError{Message: "unexpected root node", Pos: ir.Pos{Line: 1, Column: 1}}
	}
	if root.HasError() {
		return nil, syntaxError(root)
	}

	e := &extraction{source: source, attributes: x.attributes}
	e.visit(root)
	slog.Debug("extracted sites", "count", len(e.sites), "bytes", len(source))
	return &File{Source: source, Sites: e.sites}, nil
}

// normalizePath drops whitespace so that "symm_impl :: symmetric" and
// "symm_impl::symmetric" compare equal.
func normalizePath(path string) string {
	return strings.Join(strings.Fields(path), "")
}

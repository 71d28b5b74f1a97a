package syntax

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/roach88/symm/internal/ir"
)

// extraction carries the source being walked and the sites found so far.
type extraction struct {
	source     []byte
	attributes map[string]bool
	sites      []*Site
}

// visit walks node's children looking for impl items preceded by a directive.
// Outer attributes and doc comments accumulate until the next item.
func (e *extraction) visit(node *sitter.Node) {
	var pending []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch {
		case child.Kind() == "attribute_item":
			pending = append(pending, child)
			continue
		case isComment(child):
			if isDocComment(child, e.source) {
				pending = append(pending, child)
			}
			continue
		case child.Kind() == "impl_item":
			if site := e.site(child, pending); site != nil {
				e.sites = append(e.sites, site)
				pending = nil
				continue
			}
		case child.IsNamed():
			if site := e.misplaced(child, pending); site != nil {
				e.sites = append(e.sites, site)
				pending = nil
				continue
			}
		}
		pending = nil
		e.visit(child)
	}
}

// site builds a Site when one of attrs is a directive, and returns nil otherwise.
func (e *extraction) site(impl *sitter.Node, attrs []*sitter.Node) *Site {
	var directive *sitter.Node
	var kept []*sitter.Node
	for _, a := range attrs {
		if directive == nil && e.isDirective(a) {
			directive = a
			continue
		}
		kept = append(kept, a)
	}
	if directive == nil {
		return nil
	}

	start := impl
	if len(attrs) > 0 {
		start = attrs[0]
	}
	region := ir.Span{Start: spanOf(start).Start, End: spanOf(impl).End}
	indent := lineIndent(e.source, int(start.StartByte()))

	rec := e.implRecord(impl, indent)
	for _, a := range kept {
		rec.Attrs = append(rec.Attrs, strings.TrimRight(e.text(a), "\r\n"))
	}
	rec.Preamble = dedent(e.preamble(start, directive, impl), indent)
	return &Site{
		Record:        rec,
		Directive:     e.text(directive),
		DirectiveSpan: spanOf(directive),
		Region:        region,
		Indent:        indent,
	}
}

// misplaced builds a Site for a directive on an item that is not an impl.
// The whole item is the region, so the rejection replaces it.
func (e *extraction) misplaced(item *sitter.Node, attrs []*sitter.Node) *Site {
	var directive *sitter.Node
	for _, a := range attrs {
		if e.isDirective(a) {
			directive = a
			break
		}
	}
	if directive == nil {
		return nil
	}
	start := attrs[0]
	indent := lineIndent(e.source, int(start.StartByte()))
	return &Site{
		Record: &ir.ImplRecord{
			Source: dedent(e.text(item), indent),
			Span:   spanOf(item),
		},
		Item:          item.Kind(),
		Directive:     e.text(directive),
		DirectiveSpan: spanOf(directive),
		Region:        ir.Span{Start: spanOf(start).Start, End: spanOf(item).End},
		Indent:        indent,
	}
}

// preamble returns the source between start and the impl keyword with the
// directive and the whitespace after it cut out. Comments in the attribute
// run survive this way.
func (e *extraction) preamble(start, directive, impl *sitter.Node) string {
	from, to := int(start.StartByte()), int(impl.StartByte())
	cut, resume := int(directive.StartByte()), int(directive.EndByte())
	for resume < to && isSpace(e.source[resume]) {
		resume++
	}
	return string(e.source[from:cut]) + string(e.source[resume:to])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (e *extraction) isDirective(node *sitter.Node) bool {
	if node.Kind() != "attribute_item" {
		return false
	}
	attr := firstNamedChild(node)
	if attr == nil || attr.Kind() != "attribute" {
		return false
	}
	path := firstNamedChild(attr)
	if path == nil {
		return false
	}
	return e.attributes[normalizePath(e.text(path))]
}

func (e *extraction) implRecord(node *sitter.Node, indent string) *ir.ImplRecord {
	rec := &ir.ImplRecord{
		Source: dedent(e.text(node), indent),
		Span:   spanOf(node),
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "unsafe":
			rec.Unsafe = true
		case "!":
			rec.Negative = true
			rec.NegativePos = spanOf(child)
		case "where_clause":
			rec.Where = dedent(e.text(child), indent)
		}
	}
	if params := node.ChildByFieldName("type_parameters"); params != nil {
		rec.Generics = dedent(e.text(params), indent)
	}
	if trait := node.ChildByFieldName("trait"); trait != nil {
		rec.Trait = e.traitRef(trait)
	}
	if selfType := node.ChildByFieldName("type"); selfType != nil {
		rec.SelfType = e.typeExpr(selfType)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		rec.Members = e.members(body)
	}
	return rec
}

func (e *extraction) traitRef(node *sitter.Node) *ir.TraitRef {
	ref := &ir.TraitRef{Span: spanOf(node), PathSpan: spanOf(node)}
	if node.Kind() != "generic_type" {
		ref.Path = e.text(node)
		return ref
	}

	path := node.ChildByFieldName("type")
	args := node.ChildByFieldName("type_arguments")
	ref.Path = e.text(path)
	ref.PathSpan = spanOf(path)
	if args == nil {
		return ref
	}
	ref.Bracketed = true
	ref.ArgsSpan = spanOf(args)
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if isComment(child) {
			continue
		}
		if child.Kind() == "trait_bounds" && len(ref.Args) > 0 {
			// `Item: Bound` is an associated constraint on the previous argument.
			prev := &ref.Args[len(ref.Args)-1]
			prev.Kind = ir.ArgBinding
			prev.Span.End = spanOf(child).End
			prev.Text = string(e.source[prev.Span.Start.Offset:prev.Span.End.Offset])
			continue
		}
		ref.Args = append(ref.Args, ir.GenericArg{
			Kind: argKind(child.Kind()),
			Text: e.text(child),
			Span: spanOf(child),
		})
	}
	return ref
}

func argKind(kind string) ir.ArgKind {
	switch kind {
	case "lifetime":
		return ir.ArgLifetime
	case "type_binding":
		return ir.ArgBinding
	case "block", "integer_literal", "float_literal", "string_literal", "raw_string_literal",
		"char_literal", "boolean_literal", "negative_literal":
		return ir.ArgConst
	default:
		return ir.ArgType
	}
}

func (e *extraction) typeExpr(node *sitter.Node) ir.TypeExpr {
	t := ir.TypeExpr{Text: e.text(node), Span: spanOf(node)}
	if node.Kind() != "reference_type" {
		return t
	}
	ref := &ir.RefType{}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "lifetime":
			ref.Lifetime = e.text(child)
		case "mutable_specifier":
			ref.Mut = true
		}
	}
	if elem := node.ChildByFieldName("type"); elem != nil {
		ref.Elem = e.typeExpr(elem)
	}
	t.Ref = ref
	return t
}

func (e *extraction) members(body *sitter.Node) []ir.Member {
	var members []ir.Member
	var attrs []string
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		indent := lineIndent(e.source, int(child.StartByte()))
		switch {
		case child.Kind() == "attribute_item":
			attrs = append(attrs, e.text(child))
			continue
		case isComment(child):
			if isDocComment(child, e.source) {
				attrs = append(attrs, strings.TrimRight(e.text(child), "\r\n"))
			}
			continue
		}

		switch child.Kind() {
		case "function_item", "function_signature_item":
			members = append(members, e.method(child, attrs, indent))
		case "type_item":
			members = append(members, e.outputType(child, attrs, indent))
		default:
			span := spanOf(child)
			if next := child.NextSibling(); next != nil && next.Kind() == ";" {
				// Item macros carry their terminator as a sibling token.
				span.End = spanOf(next).End
			}
			members = append(members, &ir.Verbatim{
				NodeKind: child.Kind(),
				Attrs:    attrs,
				Text:     dedent(string(e.source[span.Start.Offset:span.End.Offset]), indent),
				Span:     span,
			})
		}
		attrs = nil
	}
	if len(attrs) > 0 {
		// Attributes with nothing to attach to are kept in place.
		members = append(members, &ir.Verbatim{NodeKind: "attribute_item", Text: strings.Join(attrs, "\n")})
	}
	return members
}

func (e *extraction) method(node *sitter.Node, attrs []string, indent string) *ir.Method {
	m := &ir.Method{Attrs: attrs, Span: spanOf(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "visibility_modifier":
			m.Visibility = e.text(child)
		case "function_modifiers":
			m.Qualifiers = strings.Join(strings.Fields(e.text(child)), " ")
		case "where_clause":
			m.Where = dedent(e.text(child), indent)
		}
	}
	if name := node.ChildByFieldName("name"); name != nil {
		m.Name = e.text(name)
	}
	if generics := node.ChildByFieldName("type_parameters"); generics != nil {
		m.Generics = dedent(e.text(generics), indent)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		m.Return = dedent(e.text(ret), indent)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params = e.params(params)
		m.ParamsSpan = spanOf(params)
		if len(m.Params) > 0 {
			// Anchor at the parameters themselves, not the parentheses.
			m.ParamsSpan = ir.Span{
				Start: m.Params[0].ParamSpan().Start,
				End:   m.Params[len(m.Params)-1].ParamSpan().End,
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		m.Body = &ir.RawBody{Text: dedent(e.text(body), indent)}
	}
	return m
}

func (e *extraction) outputType(node *sitter.Node, attrs []string, indent string) *ir.OutputType {
	o := &ir.OutputType{Attrs: attrs, Span: spanOf(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "visibility_modifier":
			o.Visibility = e.text(child)
		case "where_clause":
			o.Where = dedent(e.text(child), indent)
		}
	}
	if name := node.ChildByFieldName("name"); name != nil {
		o.Name = e.text(name)
	}
	if generics := node.ChildByFieldName("type_parameters"); generics != nil {
		o.Generics = e.text(generics)
	}
	if t := node.ChildByFieldName("type"); t != nil {
		o.Type = e.typeExpr(t)
		o.Type.Text = dedent(o.Type.Text, indent)
	}
	return o
}

func (e *extraction) params(node *sitter.Node) []ir.Param {
	var params []ir.Param
	var attrs []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "(", ")", ",":
			continue
		case "attribute_item":
			attrs = append(attrs, e.text(child))
			continue
		case "line_comment", "block_comment":
			continue
		case "self_parameter":
			params = append(params, e.receiver(child))
		case "variadic_parameter":
			params = append(params, &ir.Variadic{Text: e.text(child), Span: spanOf(child)})
		case "parameter":
			p := e.typed(child)
			p.Attrs = attrs
			params = append(params, p)
		case "_":
			params = append(params, &ir.Typed{
				Attrs:   attrs,
				Pattern: ir.Pattern{Kind: ir.PatWildcard, Text: "_", Span: spanOf(child)},
				Span:    spanOf(child),
			})
		default:
			// A bare type with no binding.
			params = append(params, &ir.Typed{
				Attrs:   attrs,
				Pattern: ir.Pattern{Kind: ir.PatOther, Span: spanOf(child)},
				Type:    e.typeExpr(child),
				Span:    spanOf(child),
			})
		}
		attrs = nil
	}
	return params
}

func (e *extraction) receiver(node *sitter.Node) *ir.Receiver {
	r := &ir.Receiver{Span: spanOf(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "&":
			r.Ref = true
		case "lifetime":
			r.Lifetime = e.text(child)
		case "mutable_specifier":
			r.Mut = true
		}
	}
	return r
}

func (e *extraction) typed(node *sitter.Node) *ir.Typed {
	p := &ir.Typed{Span: spanOf(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "mutable_specifier" {
			p.Pattern.Mut = true
		}
	}
	if pat := node.ChildByFieldName("pattern"); pat != nil {
		mut := p.Pattern.Mut
		p.Pattern = e.pattern(pat)
		p.Pattern.Mut = p.Pattern.Mut || mut
	}
	if t := node.ChildByFieldName("type"); t != nil {
		p.Type = e.typeExpr(t)
	}
	return p
}

func (e *extraction) pattern(node *sitter.Node) ir.Pattern {
	p := ir.Pattern{Text: e.text(node), Span: spanOf(node)}
	switch node.Kind() {
	case "identifier":
		p.Kind = ir.PatIdent
		p.Name = p.Text
	case "_":
		p.Kind = ir.PatWildcard
	case "self":
		p.Kind = ir.PatSelf
	case "mut_pattern":
		var inner *sitter.Node
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if c := node.NamedChild(i); c.Kind() != "mutable_specifier" {
				inner = c
				break
			}
		}
		if inner != nil && inner.Kind() == "identifier" {
			p.Kind = ir.PatIdent
			p.Name = e.text(inner)
			p.Text = p.Name
			p.Mut = true
			return p
		}
		p.Kind = ir.PatOther
	default:
		p.Kind = ir.PatOther
	}
	return p
}

func (e *extraction) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(e.source) {
		return ""
	}
	return string(e.source[start:end])
}

func spanOf(node *sitter.Node) ir.Span {
	if node == nil {
		return ir.Span{}
	}
	start := node.StartPosition()
	end := node.EndPosition()
	return ir.Span{
		Start: ir.Pos{Offset: int(node.StartByte()), Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   ir.Pos{Offset: int(node.EndByte()), Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && !isComment(child) {
			return child
		}
	}
	return nil
}

func isComment(node *sitter.Node) bool {
	kind := node.Kind()
	return kind == "line_comment" || kind == "block_comment"
}

// isDocComment reports whether a comment is an outer doc comment (`///` or
// `/**`), which Rust treats as an attribute of the following item.
func isDocComment(node *sitter.Node, source []byte) bool {
	text := string(source[node.StartByte():node.EndByte()])
	switch {
	case strings.HasPrefix(text, "////"), strings.HasPrefix(text, "/***"), text == "/**/":
		return false
	default:
		return strings.HasPrefix(text, "///") || strings.HasPrefix(text, "/**")
	}
}

// lineIndent returns the whitespace between the start of the line containing
// offset and the first non-blank byte of that line.
func lineIndent(source []byte, offset int) string {
	start := offset
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}

// dedent strips indent from every line of text after the first. Lines that
// do not start with indent are kept as they are.
func dedent(text, indent string) string {
	if indent == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], indent)
	}
	return strings.Join(lines, "\n")
}

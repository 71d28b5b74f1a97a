// Package rewrite expands every annotated impl in a Rust source file and
// splices the results back into the file text.
package rewrite

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/symm/internal/compiler"
	"github.com/roach88/symm/internal/ir"
	"github.com/roach88/symm/internal/syntax"
)

// Diagnostic is a failed expansion located in a file.
type Diagnostic struct {
	Path    string        `json:"path"`
	Pos     ir.Pos        `json:"pos"`
	Kind    compiler.Kind `json:"kind"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Path, d.Pos.Line, d.Pos.Column, d.Code, d.Message)
}

// Expansion pairs a site with the outcome of expanding it.
type Expansion struct {
	Site   *syntax.Site       `json:"-"`
	Result compiler.Expansion `json:"result"`
}

// Result is the rewritten form of one file.
type Result struct {
	Path        string       `json:"path"`
	Output      []byte       `json:"-"`
	Sites       int          `json:"sites"`
	Expansions  []Expansion  `json:"expansions,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Cached is set when the result was replayed from the expansion cache.
	// Cached results carry no Expansions.
	Cached bool `json:"cached,omitempty"`
}

// Changed reports whether the file contained any annotated impl.
func (r *Result) Changed() bool {
	return r.Sites > 0
}

// Failed reports whether any expansion in the file failed.
func (r *Result) Failed() bool {
	return len(r.Diagnostics) > 0
}

// Rewriter expands files. It wraps a single parser and is not safe for
// concurrent use.
type Rewriter struct {
	extractor *syntax.Extractor
}

// New creates a Rewriter recognizing the given directive attribute paths.
func New(attributes []string) (*Rewriter, error) {
	x, err := syntax.NewExtractor(attributes)
	if err != nil {
		return nil, err
	}
	return &Rewriter{extractor: x}, nil
}

// Close releases the parser.
func (r *Rewriter) Close() {
	r.extractor.Close()
}

// Extract returns the annotated impls of src without expanding them.
func (r *Rewriter) Extract(path string, src []byte) ([]*syntax.Site, error) {
	f, err := r.extractor.Extract(src)
	if err != nil {
		return nil, syntax.WithPath(err, path)
	}
	return f.Sites, nil
}

// File expands every annotated impl in src. Failed expansions are replaced by
// their compile_error! marker and reported as diagnostics; a file with only
// failures still rewrites successfully. The returned error is reserved for
// sources that do not parse.
func (r *Rewriter) File(path string, src []byte) (*Result, error) {
	sites, err := r.Extract(path, src)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path, Sites: len(sites)}
	for _, site := range sites {
		x := ExpandSite(site)
		res.Expansions = append(res.Expansions, Expansion{Site: site, Result: x})
		if x.Err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Path:    path,
				Pos:     x.Err.Span.Start,
				Kind:    x.Err.Kind,
				Code:    x.Err.Code,
				Message: x.Err.Message,
			})
		}
	}
	res.Output = Splice(src, res.Expansions)

	slog.Debug("rewrote file",
		"path", path,
		"sites", len(res.Expansions),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

// ExpandSite expands one site. A directive on anything but an impl is
// rejected without validating the item.
func ExpandSite(site *syntax.Site) compiler.Expansion {
	if site.Item != "" {
		return compiler.Reject(site.Record, site.DirectiveSpan)
	}
	return compiler.Expand(site.Record)
}

// Splice replaces each expansion's region in src with its emitted text.
// Regions must not overlap. Successful output is indented to the site's
// column; error markers carry their own placement.
func Splice(src []byte, expansions []Expansion) []byte {
	ordered := make([]Expansion, len(expansions))
	copy(ordered, expansions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Site.Region.Start.Offset < ordered[j].Site.Region.Start.Offset
	})

	var out bytes.Buffer
	out.Grow(len(src))
	last := 0
	for _, x := range ordered {
		region := x.Site.Region
		out.Write(src[last:region.Start.Offset])

		text := compiler.Emit(x.Result, region.Start)
		if x.Result.OK() {
			text = compiler.Indent(text, x.Site.Indent)
		}
		out.WriteString(text)
		last = region.End.Offset
	}
	out.Write(src[last:])
	return out.Bytes()
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/roach88/symm/internal/compiler"
	"github.com/roach88/symm/internal/ir"
	"github.com/roach88/symm/internal/rewrite"
	"github.com/roach88/symm/internal/syntax"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Dump bool
}

// SiteReport describes one annotated impl and its expansion.
type SiteReport struct {
	ID        string             `json:"id"`
	Pos       ir.Pos             `json:"pos"`
	Directive string             `json:"directive"`
	Item      string             `json:"item,omitempty"` // non-impl item kind
	Indent    string             `json:"indent,omitempty"`
	Expansion compiler.Expansion `json:"expansion"`
	Rendered  string             `json:"rendered,omitempty"`
}

// dumper prints records without pointer addresses so dumps are stable.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the impl records extracted from a file",
		Long: `Print each #[symmetric] impl found in file as the tool sees it: the
extracted record, the validation outcome, and the rendered mirror.

With --format json the records are printed as JSON; with --dump as a Go
value dump.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "dump records as Go values")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.Indent = true

	src, err := os.ReadFile(path)
	if err != nil {
		return loadFailure(formatter, &LoadError{Code: ErrCodeNotFound, Message: err.Error()})
	}
	cfg, err := LoadConfig(opts.RootOptions, path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	r, err := rewrite.New(cfg.Attributes)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create rewriter", err)
	}
	defer r.Close()

	sites, err := r.Extract(path, src)
	if err != nil {
		var parseErr *syntax.ParseError
		if errors.As(err, &parseErr) {
			_ = formatter.Error(ErrCodeSyntax, parseErr.Error(), nil)
			return WrapExitError(ExitFailure, "syntax error", err)
		}
		return WrapExitError(ExitCommandError, "failed to extract", err)
	}

	reports := make([]SiteReport, 0, len(sites))
	for _, site := range sites {
		x := rewrite.ExpandSite(site)
		report := SiteReport{
			ID:        ir.MustRecordID(site.Record),
			Pos:       site.Region.Start,
			Directive: site.Directive,
			Item:      site.Item,
			Indent:    site.Indent,
			Expansion: x,
		}
		if x.OK() {
			report.Rendered = compiler.Render(x.Mirror)
		}
		reports = append(reports, report)
	}

	switch {
	case opts.Dump:
		dumper.Fdump(formatter.Writer, reports)
		return nil
	case opts.Format == "json":
		return formatter.Respond(CLIResponse{Data: reports})
	}

	w := formatter.Writer
	if len(reports) == 0 {
		fmt.Fprintf(w, "%s: no annotated impls\n", path)
		return nil
	}
	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		rec := rep.Expansion.Original
		if rep.Item != "" {
			fmt.Fprintf(w, "%s:%s: %s on %s\n", path, rep.Pos, rep.Directive, strings.ReplaceAll(rep.Item, "_", " "))
		} else {
			fmt.Fprintf(w, "%s:%s: %s impl %s for %s\n", path, rep.Pos, rep.Directive, rec.Trait, rec.SelfType.Text)
		}
		fmt.Fprintf(w, "  id: %s\n", rep.ID)
		if err := rep.Expansion.Err; err != nil {
			fmt.Fprintf(w, "  %s %s at %s: %s\n", err.Kind, err.Code, err.Span.Start, err.Message)
			continue
		}
		fmt.Fprintln(w, "  mirror:")
		for _, line := range strings.Split(rep.Rendered, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	return nil
}

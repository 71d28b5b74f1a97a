package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/symm/internal/workspace"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Write   bool
	OutDir  string
	Changed bool
	Watch   bool
	Jobs    int
	NoCache bool
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand [path]",
		Short: "Expand #[symmetric] impls",
		Long: `Expand every #[symmetric] impl under path (default: the current directory).

Without --write or --out-dir the rewritten sources are printed to stdout.
A failed expansion is replaced by a compile_error! invocation placed at
the offending construct, so the Rust compiler reports it there.

Exit codes:
  0 - All impls expanded
  1 - One or more impls were rejected, or a file did not parse
  2 - Command error (invalid paths, bad configuration, etc.)

Examples:
  symm expand src/lib.rs
  symm expand --write ./src
  symm expand --out-dir ./generated ./src
  symm expand --write --changed
  symm expand --write --watch ./src`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runExpand(opts, root, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "rewrite files in place")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "write rewritten files under this directory")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "only process files that differ from git HEAD")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "keep running and expand files as they change")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "files processed in parallel (default: config, then GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "do not read or write the expansion cache")

	return cmd
}

func runExpand(opts *ExpandOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Watch && !opts.Write && opts.OutDir == "" {
		return NewExitError(ExitCommandError, "--watch requires --write or --out-dir")
	}

	inputs, err := ResolveInputs(opts.RootOptions, root, opts.Changed)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if opts.Jobs > 0 {
		inputs.Config.Jobs = opts.Jobs
	}
	if opts.OutDir != "" {
		inputs.Config.OutDir = opts.OutDir
	}
	toDisk := opts.Write || inputs.Config.OutDir != ""
	formatter.VerboseLog("Found %d source file(s) in %s", len(inputs.Files), root)

	sess, err := openSession("expand", inputs, !opts.NoCache, toDisk)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, outcomes, err := sess.pass(ctx, inputs.Files)
	if err != nil {
		return err
	}
	if !toDisk && opts.Format != "json" {
		printOutputs(cmd.OutOrStdout(), outcomes)
		printProblems(formatter.GetErrWriter(), sum)
	} else if err := outputSummary(formatter, sum); err != nil {
		return err
	}

	if opts.Watch {
		return watch(ctx, sess, formatter)
	}
	if sum.Problems() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", sum.Failed))
	}
	return nil
}

// watch re-expands batches of changed files until ctx is cancelled.
func watch(ctx context.Context, sess *session, formatter *OutputFormatter) error {
	w, err := workspace.NewWatcher(sess.inputs.Root, sess.inputs.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to watch", err)
	}
	defer w.Close()

	formatter.VerboseLog("Watching %s", sess.inputs.Root)
	err = w.Run(ctx, func(ctx context.Context, files []string) error {
		sum, _, err := sess.pass(ctx, files)
		if err != nil {
			return err
		}
		return outputSummary(formatter, sum)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printOutputs writes the rewritten text of every file with annotated
// impls. With several files each is preceded by a path comment.
func printOutputs(w io.Writer, outcomes []workspace.Outcome) {
	var changed []workspace.Outcome
	for _, o := range outcomes {
		if o.Result != nil && o.Result.Changed() {
			changed = append(changed, o)
		}
	}
	for _, o := range changed {
		if len(changed) > 1 {
			fmt.Fprintf(w, "// %s\n", o.Path)
		}
		w.Write(o.Result.Output)
	}
}

// printProblems writes diagnostics and file errors, one per line.
func printProblems(w io.Writer, sum *Summary) {
	for _, r := range sum.Reports {
		if r.Error != "" {
			fmt.Fprintln(w, r.Error)
		}
		for _, d := range r.Diagnostics {
			fmt.Fprintln(w, d.String())
		}
	}
}

// outputSummary reports a pass: JSON, or one line per file plus a total.
func outputSummary(f *OutputFormatter, sum *Summary) error {
	if f.Format == "json" {
		return outputSummaryJSON(f, sum)
	}

	w := f.Writer
	for _, r := range sum.Reports {
		switch {
		case r.Error != "":
			fmt.Fprintf(w, "✗ %s\n", r.Path)
			fmt.Fprintf(w, "  %s\n", r.Error)
		case len(r.Diagnostics) > 0:
			fmt.Fprintf(w, "✗ %s\n", r.Path)
			for _, d := range r.Diagnostics {
				fmt.Fprintf(w, "  %s\n", d)
			}
		case r.Written != "":
			fmt.Fprintf(w, "✓ %s -> %s (%d impl(s))\n", r.Path, r.Written, r.Sites)
		case r.Sites > 0:
			fmt.Fprintf(w, "✓ %s (%d impl(s))\n", r.Path, r.Sites)
		default:
			f.VerboseLog("  %s: no annotated impls", r.Path)
		}
	}
	fmt.Fprintf(w, "Summary: %d file(s), %d impl(s), %d expanded, %d failed, %d cached\n",
		sum.Files, sum.Sites, sum.Expanded, sum.Failed, sum.CacheHits)
	return nil
}

// outputSummaryJSON writes sum as a CLIResponse, with an error when any
// file failed.
func outputSummaryJSON(f *OutputFormatter, sum *Summary) error {
	response := CLIResponse{Data: sum, RunID: sum.RunID}
	if sum.Problems() {
		response.Error = &CLIError{
			Code:    "E_EXPAND_FAILED",
			Message: fmt.Sprintf("%d file(s) failed", sum.Failed),
		}
	}
	return f.Respond(response)
}

// loadFailure reports a LoadError through the formatter and converts it to
// a command error.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = f.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, loadErr.Message, err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}

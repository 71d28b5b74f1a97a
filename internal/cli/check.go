package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Changed bool
	NoCache bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Report expansion diagnostics without writing",
		Long: `Validate every #[symmetric] impl under path and report the diagnostics,
without printing or writing rewritten sources. Faster feedback than a full
cargo build for a rejected impl.

Exit codes:
  0 - No diagnostics
  1 - One or more impls were rejected, or a file did not parse
  2 - Command error`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runCheck(opts, root, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "only check files that differ from git HEAD")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "do not read or write the expansion cache")

	return cmd
}

func runCheck(opts *CheckOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	inputs, err := ResolveInputs(opts.RootOptions, root, opts.Changed)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Checking %d source file(s) in %s", len(inputs.Files), root)

	sess, err := openSession("check", inputs, !opts.NoCache, false)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer sess.Close()

	sum, _, err := sess.pass(cmd.Context(), inputs.Files)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		if err := outputSummaryJSON(formatter, sum); err != nil {
			return err
		}
	} else {
		printProblems(formatter.Writer, sum)
		if !sum.Problems() {
			fmt.Fprintf(formatter.Writer, "✓ %d impl(s) in %d file(s) OK\n", sum.Sites, sum.Files)
		}
	}

	if sum.Problems() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed", sum.Failed))
	}
	return nil
}

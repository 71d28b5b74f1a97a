package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/symm/internal/ir"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
	Config  string // explicit symm.cue path
}

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand builds the symm command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "symm",
		Short:   "symm - mirror impls for symmetric traits",
		Version: ir.ToolVersion,
		Long: `Expand #[symmetric] trait impls in Rust sources.

For every impl Trait<Other> for Self annotated with #[symmetric], symm emits
the mirror impl Trait<Self> for Other whose methods delegate back to the
original with the operands swapped. Impls that cannot be mirrored are
replaced by a compile_error! marker at the offending token.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logs")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Config, "config", "", "path to symm.cue (default: <root>/symm.cue)")

	cmd.AddCommand(
		NewExpandCommand(opts),
		NewCheckCommand(opts),
		NewInspectCommand(opts),
		NewTestCommand(opts),
		NewCacheCommand(opts),
	)
	return cmd
}

// newLogger logs to w at Info, or Debug when verbose. JSON output gets JSON
// log lines so both streams stay machine-readable.
func newLogger(w io.Writer, opts *RootOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

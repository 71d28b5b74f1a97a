package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/symm/internal/store"
)

// CacheOptions holds flags for the cache commands.
type CacheOptions struct {
	*RootOptions
	Stale bool
	Limit int
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the expansion cache",
		Long: `The expansion cache stores rewritten files keyed by their content, the
directive names, and the tool version, along with a log of past runs. Its
location is the cache field of symm.cue (default .symm/cache.db).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "stats [root]",
		Short:         "Show cache statistics",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(opts, rootArg(args), cmd)
		},
	})

	clearCmd := &cobra.Command{
		Use:           "clear [root]",
		Short:         "Remove cache entries",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(opts, rootArg(args), cmd)
		},
	}
	clearCmd.Flags().BoolVar(&opts.Stale, "stale", false, "only remove entries from incompatible tool versions")
	cmd.AddCommand(clearCmd)

	runsCmd := &cobra.Command{
		Use:           "runs [root]",
		Short:         "List recent runs",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheRuns(opts, rootArg(args), cmd)
		},
	}
	runsCmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of runs to list")
	cmd.AddCommand(runsCmd)

	return cmd
}

func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// openCache opens the cache configured for root.
func openCache(opts *CacheOptions, root string, formatter *OutputFormatter) (*store.Store, error) {
	cfg, err := LoadConfig(opts.RootOptions, root)
	if err != nil {
		return nil, loadFailure(formatter, err)
	}
	if cfg.Cache == "" {
		return nil, loadFailure(formatter, &LoadError{Code: ErrCodeCacheFailed, Message: "cache is disabled in configuration"})
	}
	st, err := store.Open(cfg.Cache)
	if err != nil {
		return nil, loadFailure(formatter, &LoadError{Code: ErrCodeCacheFailed, Message: err.Error()})
	}
	formatter.VerboseLog("Using cache %s", cfg.Cache)
	return st, nil
}

func runCacheStats(opts *CacheOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := openCache(opts, root, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read cache", err)
	}
	if opts.Format == "json" {
		return formatter.Success(stats)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Entries:      %d (%d stale)\n", stats.Entries, stats.Stale)
	fmt.Fprintf(w, "Output bytes: %d\n", stats.OutputBytes)
	fmt.Fprintf(w, "Runs:         %d\n", stats.Runs)
	fmt.Fprintf(w, "Tool version: %s\n", stats.ToolVersion)
	if stats.LastRun != nil {
		fmt.Fprintf(w, "Last run:     %s %s (%d files, %d failed)\n",
			stats.LastRun.ID, stats.LastRun.Command, stats.LastRun.Files, stats.LastRun.Failed)
	}
	return nil
}

func runCacheClear(opts *CacheOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := openCache(opts, root, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var removed int64
	if opts.Stale {
		removed, err = st.Prune(cmd.Context())
	} else {
		removed, err = st.Clear(cmd.Context())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to clear cache", err)
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]int64{"removed": removed})
	}
	fmt.Fprintf(formatter.Writer, "Removed %d cache entr%s\n", removed, pluralY(removed))
	return nil
}

func runCacheRuns(opts *CacheOptions, root string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	st, err := openCache(opts, root, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}
	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		status := "finished"
		if !r.Finished {
			status = "interrupted"
		}
		fmt.Fprintf(formatter.Writer, "%s  %-7s %s  files=%d expanded=%d failed=%d cached=%d  (%s)\n",
			r.ID, r.Command, r.ToolVersion, r.Files, r.Expanded, r.Failed, r.CacheHits, status)
	}
	return nil
}

func pluralY(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// Command symm expands #[symmetric] trait impls in Rust sources.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/symm/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "symm:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

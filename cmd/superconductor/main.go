// Command superconductor simulates a 2D superconductor with the
// time-dependent Ginzburg-Landau equation.
package main

import (
	"fmt"
	"os"

	"github.com/pmocz/superconductor-spectral/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

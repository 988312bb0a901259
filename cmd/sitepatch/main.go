// Command sitepatch applies a saved model response to a directory of pages
// without running the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitepatch",
	Short: "sitepatch - apply page patches offline",
	Long: `sitepatch replays a model response that uses the page patch format
against a directory of HTML pages.

Usage:
  sitepatch apply --pages <dir> --stream <file> [flags]`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

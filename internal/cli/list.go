/*
PURPOSE:
  Defines the 'list' subcommand.
  Shows every registered backend and benchmark name.

REQUIREMENTS:
  User-specified:
  - Sorted bullet lists under labeled headings, matching what the run
    selectors accept.

  Implementation-discovered:
  - Useful validation step before a full run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/registry

ERROR HANDLING:
  - None; the registry is static.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  burnbench list

RELATED FILES:
  - internal/registry/registry.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apertureless/burnbench/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered backends and benchmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Available Backends:")
		for _, name := range registry.Backends() {
			fmt.Printf("- %s\n", name)
		}
		fmt.Println()
		fmt.Println("Available Benchmarks:")
		for _, name := range registry.Benchmarks() {
			fmt.Printf("- %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

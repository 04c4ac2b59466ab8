/*
PURPOSE:
  Defines the root Cobra command for the burnbench CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Subcommands share config loading, so it lives here.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/burnbench/main.go
  - Calls: Child commands (run, list, auth, exec, functions)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

RELATED FILES:
  - cmd/burnbench/main.go

MAINTENANCE:
  - Update when adding new global configuration options.
*/

package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/apertureless/burnbench/internal/config"
	"github.com/apertureless/burnbench/internal/version"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	noColor bool

	rootCmd = &cobra.Command{
		Use:     "burnbench",
		Short:   "Benchmark tool comparing compute backends",
		Long:    `Runs the burnbench workload suite across compute backends and collects per-iteration timings. Use 'run --help' for benchmark options.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
)

// Execute runs the root command with ctx flowing to every subcommand.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the effective configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./burnbench.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

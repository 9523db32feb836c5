package main

import (
	"github.com/spf13/cobra"

	"github.com/allfeat/middsgen/internal/config"
	"github.com/allfeat/middsgen/internal/output"
)

var (
	flagConfig  string
	flagVerbose bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "middsgen",
		Short: "Dual-mode type generator for music metadata records",
		Long: `middsgen expands annotated Go type declarations into two parallel
families: an ergonomic host representation and a capacity-checked bounded
representation with a compact wire codec.

Declarations are triggered with //midds:dual and refined with
//midds:bound(N) and //midds:as_runtime_type directives.`,
		PersistentPreRun: func(*cobra.Command, []string) {
			output.SetupLogging(flagVerbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultName, "path to the project config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "increase output verbosity")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig resolves the project config for a command run.
func loadConfig() (config.Config, error) {
	return config.LoadOrDefault(flagConfig)
}

// resolveInputs expands the config globs, with explicit command-line
// arguments taking precedence.
func resolveInputs(cfg config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return cfg.Expand()
}

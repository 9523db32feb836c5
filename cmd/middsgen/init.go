package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/allfeat/middsgen/internal/config"
	"github.com/allfeat/middsgen/internal/output"
)

func newInitCmd() *cobra.Command {
	var flagForce bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project config file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(flagConfig); err == nil && !flagForce {
				return fmt.Errorf("init: %s already exists (use --force to overwrite)", flagConfig)
			}

			cfg := config.Default()

			var inputs string
			if err := survey.AskOne(&survey.Input{
				Message: "Input file globs (comma separated):",
				Default: strings.Join(cfg.Inputs, ","),
				Help:    "Annotated source files the generator reads, e.g. records/*.midds.go",
			}, &inputs); err != nil {
				return err
			}
			cfg.Inputs = splitList(inputs)

			if err := survey.AskOne(&survey.Input{
				Message: "Output directory (empty = next to each input):",
			}, &cfg.Output); err != nil {
				return err
			}

			var customTags bool
			if err := survey.AskOne(&survey.Confirm{
				Message: "Override the midds_host / midds_bounded build tags?",
			}, &customTags); err != nil {
				return err
			}
			if customTags {
				if err := survey.AskOne(&survey.Input{
					Message: "Host build tag:",
					Default: "midds_host",
				}, &cfg.Tags.Host); err != nil {
					return err
				}
				if err := survey.AskOne(&survey.Input{
					Message: "Bounded build tag:",
					Default: "midds_bounded",
				}, &cfg.Tags.Bounded); err != nil {
					return err
				}
			}

			if err := cfg.Save(flagConfig); err != nil {
				return err
			}
			output.Info("wrote config", "path", flagConfig)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing config file")
	return cmd
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allfeat/middsgen/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "middsgen "+version.String())
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allfeat/middsgen/internal/output"
	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/orchestrator"
	"github.com/allfeat/middsgen/pkg/source"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate annotated declarations without writing output",
		Long: `Check parses and plans every input but emits nothing, printing the
first diagnostic per file. Suitable as a CI gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inputs, err := resolveInputs(cfg, args)
			if err != nil {
				return err
			}

			o := orchestrator.New()
			failed := 0
			for _, input := range inputs {
				result, err := o.Check(cmd.Context(), orchestrator.Request{
					Source: source.FromFile(input),
				})
				if err != nil {
					var derr *diag.Error
					if errors.As(err, &derr) {
						fmt.Fprintln(cmd.ErrOrStderr(), derr.Error())
						failed++
						continue
					}
					return err
				}
				output.Debug("ok", "input", input, "declarations", result.Declarations)
			}

			if failed > 0 {
				return fmt.Errorf("check failed for %d of %d files", failed, len(inputs))
			}
			output.Info("check passed", "inputs", len(inputs))
			return nil
		},
	}
}

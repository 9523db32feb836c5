package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/allfeat/middsgen/internal/output"
	"github.com/allfeat/middsgen/pkg/emit"
	"github.com/allfeat/middsgen/pkg/orchestrator"
	"github.com/allfeat/middsgen/pkg/source"
)

func newGenerateCmd() *cobra.Command {
	var flagOut string

	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Expand annotated declarations into generated source files",
		Long: `Generate runs the full pipeline over the configured inputs (or the
files given as arguments) and writes the host, bounded, and shared output
files next to each input, or into --out when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inputs, err := resolveInputs(cfg, args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				output.Warn("no inputs matched", "globs", cfg.Inputs)
				return nil
			}

			emitter, err := emit.New(cfg.EmitterOptions()...)
			if err != nil {
				return err
			}
			o := orchestrator.New(orchestrator.WithEmitter(emitter))

			outDir := flagOut
			if outDir == "" {
				outDir = cfg.Output
			}

			total := 0
			for _, input := range inputs {
				result, err := o.Generate(cmd.Context(), orchestrator.Request{
					Source: source.FromFile(input),
				})
				if err != nil {
					return err
				}
				if result.Declarations == 0 {
					output.Debug("no annotated declarations", "input", input)
					continue
				}

				dir := outDir
				if dir == "" {
					dir = filepath.Dir(input)
				}
				for _, file := range result.Files {
					target := filepath.Join(dir, file.Name)
					if err := writeFile(target, file.Content); err != nil {
						return err
					}
					output.Debug("wrote", "file", target)
					total++
				}
				output.Info("generated",
					"input", input,
					"declarations", result.Declarations,
					"files", len(result.Files),
				)
			}
			output.Info("done", "inputs", len(inputs), "files", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "directory for generated files (default: next to each input)")
	return cmd
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

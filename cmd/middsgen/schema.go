package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/allfeat/middsgen/internal/config"
	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/dispatch"
	"github.com/allfeat/middsgen/pkg/schemaexport"
	"github.com/allfeat/middsgen/pkg/source"
)

func newSchemaCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "schema [files...]",
		Short: "Export the host representation as an OpenAPI components document",
		Long: `Schema describes the host family of every annotated declaration as an
OpenAPI 3 components document for web consumers, printed to stdout.`,
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
				return fmt.Errorf("schema: no inputs matched")
			}

			doc, err := exportSchemas(cmd.Context(), cfg, inputs)
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("schema: marshal document: %w", err)
			}

			switch flagFormat {
			case "json":
			case "yaml":
				var tree any
				if err := json.Unmarshal(raw, &tree); err != nil {
					return fmt.Errorf("schema: reshape document: %w", err)
				}
				if raw, err = yaml.Marshal(tree); err != nil {
					return fmt.Errorf("schema: marshal document: %w", err)
				}
			default:
				return fmt.Errorf("schema: unknown format %q (want json or yaml)", flagFormat)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// exportSchemas merges the declarations of every input into one components
// document.
func exportSchemas(ctx context.Context, cfg config.Config, inputs []string) (*openapi3.T, error) {
	loader := source.NewLoader()
	scanner := decl.NewScanner()
	dispatcher := dispatch.New()

	var options []schemaexport.Option
	if cfg.Schema.Title != "" {
		options = append(options, schemaexport.WithTitle(cfg.Schema.Title))
	}
	if cfg.Schema.Version != "" {
		options = append(options, schemaexport.WithVersion(cfg.Schema.Version))
	}
	exporter := schemaexport.New(options...)

	var doc *openapi3.T
	for _, input := range inputs {
		parsed, err := loader.Load(ctx, source.FromFile(input))
		if err != nil {
			return nil, err
		}
		scanned, err := scanner.ScanFile(parsed.Fset, parsed.File, parsed.Name)
		if err != nil {
			return nil, err
		}
		if len(scanned.Decls) == 0 {
			continue
		}
		plans, err := dispatcher.Dispatch(scanned)
		if err != nil {
			return nil, err
		}
		exported, err := exporter.Export(scanned, plans)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			doc = exported
			continue
		}
		for name, ref := range exported.Components.Schemas {
			doc.Components.Schemas[name] = ref
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("schema: no annotated declarations in inputs")
	}
	return doc, nil
}

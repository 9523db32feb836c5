package middsgen

import (
	"context"

	"github.com/allfeat/middsgen/pkg/derive"
	"github.com/allfeat/middsgen/pkg/emit"
	"github.com/allfeat/middsgen/pkg/orchestrator"
	"github.com/allfeat/middsgen/pkg/source"
)

// Request aliases the orchestrator request so callers can drive the pipeline
// without importing the orchestrator package directly.
type Request = orchestrator.Request

// Result aliases the orchestrator result.
type Result = orchestrator.Result

// File is one generated output file.
type File = emit.File

// New exposes the orchestrator constructor from the top-level module.
func New(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate loads the annotated Go source, runs the full transformation
// pipeline, and returns the generated host, bounded, and shared files. It is
// the simplest entry point for callers that just want output files.
func Generate(ctx context.Context, src source.Source, options ...orchestrator.Option) ([]emit.File, error) {
	gen := orchestrator.New(options...)
	result, err := gen.Generate(ctx, orchestrator.Request{Source: src})
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// GenerateFile is a convenience wrapper over Generate for a file on disk.
func GenerateFile(ctx context.Context, path string, options ...orchestrator.Option) ([]emit.File, error) {
	return Generate(ctx, source.FromFile(path), options...)
}

// Check runs the annotation and dispatch stages without emitting files,
// returning the diagnostics callers can surface to users.
func Check(ctx context.Context, src source.Source, options ...orchestrator.Option) error {
	gen := orchestrator.New(options...)
	_, err := gen.Check(ctx, orchestrator.Request{Source: src})
	return err
}

// DefaultDerivers exposes the built-in derive registry so callers can extend
// it with custom derivers before constructing an emitter.
func DefaultDerivers() (*derive.Registry, error) {
	engine, err := derive.NewEngine()
	if err != nil {
		return nil, err
	}
	return derive.DefaultRegistry(engine)
}

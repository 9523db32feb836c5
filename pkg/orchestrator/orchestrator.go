// Package orchestrator coordinates the full pipeline from annotated source
// file to generated output files. It applies sensible defaults (built-in
// scanner, dispatcher, emitter) while remaining open to dependency
// injection for advanced callers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/dispatch"
	"github.com/allfeat/middsgen/pkg/emit"
	"github.com/allfeat/middsgen/pkg/source"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom source loader.
func WithLoader(loader *source.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithScanner injects a custom declaration scanner.
func WithScanner(scanner *decl.Scanner) Option {
	return func(o *Orchestrator) {
		o.scanner = scanner
	}
}

// WithDispatcher injects a custom dispatcher.
func WithDispatcher(dispatcher *dispatch.Dispatcher) Option {
	return func(o *Orchestrator) {
		o.dispatcher = dispatcher
	}
}

// WithEmitter injects a configured emitter.
func WithEmitter(emitter *emit.Emitter) Option {
	return func(o *Orchestrator) {
		o.emitter = emitter
	}
}

// Orchestrator coordinates loader → scanner → dispatcher → emitter.
type Orchestrator struct {
	loader     *source.Loader
	scanner    *decl.Scanner
	dispatcher *dispatch.Dispatcher
	emitter    *emit.Emitter

	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	o.defaultsApplied = true
	if o.loader == nil {
		o.loader = source.NewLoader()
	}
	if o.scanner == nil {
		o.scanner = decl.NewScanner()
	}
	if o.dispatcher == nil {
		o.dispatcher = dispatch.New()
	}
	if o.emitter == nil {
		emitter, err := emit.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: initialise emitter: %w", err)
			return
		}
		o.emitter = emitter
	}
}

// Request describes the input for one generation run.
type Request struct {
	// Source identifies where the annotated file lives. Optional when Parsed
	// is supplied.
	Source source.Source

	// Parsed allows callers to bypass the loader when they already hold a
	// parsed file.
	Parsed *source.Parsed
}

// Result collects what one run produced.
type Result struct {
	// Input is the resolved input file name.
	Input string

	// Declarations is the number of annotated declarations found.
	Declarations int

	// Files holds the generated outputs. Empty when the input carries no
	// annotated declarations.
	Files []emit.File
}

// Generate executes the loader → scanner → dispatcher → emitter sequence.
// Inputs without annotated declarations succeed with an empty Result.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	scanned, err := o.prepare(ctx, req)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Input:        scanned.Name,
		Declarations: len(scanned.Decls),
	}
	if len(scanned.Decls) == 0 {
		return result, nil
	}

	plans, err := o.dispatcher.Dispatch(scanned)
	if err != nil {
		return Result{}, err
	}

	files, err := o.emitter.Emit(scanned, plans)
	if err != nil {
		return Result{}, err
	}

	result.Files = files
	return result, nil
}

// Check runs the pipeline up to planning and discards the plans, surfacing
// only diagnostics. Suitable for CI gates.
func (o *Orchestrator) Check(ctx context.Context, req Request) (Result, error) {
	scanned, err := o.prepare(ctx, req)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Input:        scanned.Name,
		Declarations: len(scanned.Decls),
	}
	if len(scanned.Decls) == 0 {
		return result, nil
	}

	if _, err := o.dispatcher.Dispatch(scanned); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (decl.File, error) {
	if ctx == nil {
		return decl.File{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return decl.File{}, err
	}
	if err := o.initialiseErr; err != nil {
		return decl.File{}, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
		if err := o.initialiseErr; err != nil {
			return decl.File{}, err
		}
	}

	parsed, err := o.resolveParsed(ctx, req)
	if err != nil {
		return decl.File{}, err
	}

	scanned, err := o.scanner.ScanFile(parsed.Fset, parsed.File, parsed.Name)
	if err != nil {
		return decl.File{}, err
	}
	return scanned, nil
}

func (o *Orchestrator) resolveParsed(ctx context.Context, req Request) (source.Parsed, error) {
	if req.Parsed != nil {
		return *req.Parsed, nil
	}
	if req.Source == nil {
		return source.Parsed{}, errors.New("orchestrator: source or parsed file is required")
	}
	parsed, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return source.Parsed{}, fmt.Errorf("orchestrator: load source: %w", err)
	}
	return parsed, nil
}

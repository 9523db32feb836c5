// Package emit turns emission plans into generated Go source files. Each
// input file yields up to three outputs: a host file, a bounded file, and a
// shared file for declarations identical in both representations, gated by
// build tags so a build sees exactly one representation.
package emit

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/derive"
	"github.com/allfeat/middsgen/pkg/dispatch"
	"github.com/allfeat/middsgen/pkg/marker"
	"github.com/allfeat/middsgen/pkg/rewrite"
)

// DefaultHostTag gates the host representation.
const DefaultHostTag = "midds_host"

// DefaultBoundedTag gates the bounded representation.
const DefaultBoundedTag = "midds_bounded"

// DefaultBoundedImport is the import path of the bounded container package
// generated code depends on.
const DefaultBoundedImport = "github.com/allfeat/middsgen/pkg/bounded"

// File is one generated output file.
type File struct {
	Name    string
	Content []byte
}

// Formatter normalises a generated file. The default passes source through
// goimports so outputs are gofmt-clean with pruned imports.
type Formatter func(name string, src []byte) ([]byte, error)

// Option configures an Emitter.
type Option func(*Emitter)

// WithRegistry overrides the derive registry.
func WithRegistry(registry *derive.Registry) Option {
	return func(e *Emitter) {
		e.registry = registry
	}
}

// WithHostTag overrides the host build tag.
func WithHostTag(tag string) Option {
	return func(e *Emitter) {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			e.hostTag = trimmed
		}
	}
}

// WithBoundedTag overrides the bounded build tag.
func WithBoundedTag(tag string) Option {
	return func(e *Emitter) {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			e.boundedTag = trimmed
		}
	}
}

// WithBoundedImport overrides the import path of the bounded container
// package. The package name is taken from the path's last element.
func WithBoundedImport(path string) Option {
	return func(e *Emitter) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			e.boundedImport = trimmed
		}
	}
}

// WithLeafImports maps as_runtime_type path hints to the import paths of the
// sibling packages holding the referenced runtime types.
func WithLeafImports(paths map[string]string) Option {
	return func(e *Emitter) {
		for alias, path := range paths {
			alias = strings.TrimSpace(alias)
			path = strings.TrimSpace(path)
			if alias == "" || path == "" {
				continue
			}
			e.leafImports[alias] = path
		}
	}
}

// WithFormatter overrides the output formatter.
func WithFormatter(format Formatter) Option {
	return func(e *Emitter) {
		if format != nil {
			e.format = format
		}
	}
}

// Emitter renders generated files from plans.
type Emitter struct {
	registry      *derive.Registry
	hostTag       string
	boundedTag    string
	boundedImport string
	leafImports   map[string]string
	format        Formatter
}

// New constructs an Emitter. Without WithRegistry it wires the default
// derive registry over the built-in templates.
func New(options ...Option) (*Emitter, error) {
	e := &Emitter{
		hostTag:       DefaultHostTag,
		boundedTag:    DefaultBoundedTag,
		boundedImport: DefaultBoundedImport,
		leafImports:   make(map[string]string),
		format:        goimportsFormat,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}

	if e.registry == nil {
		engine, err := derive.NewEngine()
		if err != nil {
			return nil, fmt.Errorf("emit: %w", err)
		}
		registry, err := derive.DefaultRegistry(engine)
		if err != nil {
			return nil, fmt.Errorf("emit: %w", err)
		}
		e.registry = registry
	}
	return e, nil
}

// section accumulates the pieces of one output file.
type section struct {
	decls   []string
	methods []string
}

func (s *section) empty() bool {
	return len(s.decls) == 0 && len(s.methods) == 0
}

// Emit renders the output files for one input file. Files with nothing to
// say are omitted.
func (e *Emitter) Emit(file decl.File, plans []dispatch.Plan) ([]File, error) {
	var host, bounded, shared section
	caps := capacitySet(plans)

	for _, plan := range plans {
		if plan.Transformed {
			host.decls = append(host.decls, e.renderDecl(file, plan, false))
			bounded.decls = append(bounded.decls, e.renderDecl(file, plan, true))

			if err := e.renderMethods(&host, file, plan, false, e.registry.ForMode(derive.ModeHost)); err != nil {
				return nil, err
			}
			if err := e.renderMethods(&bounded, file, plan, true, e.registry.ForMode(derive.ModeBounded)); err != nil {
				return nil, err
			}
			continue
		}

		// A shared declaration is visible under either tag, so its
		// mode-agnostic methods must live in the shared file too: splitting
		// them per tag would declare them twice in a build enabling both.
		shared.decls = append(shared.decls, e.renderDecl(file, plan, false))
		if err := e.renderMethods(&shared, file, plan, false, e.registry.ForMode(derive.ModeHost)); err != nil {
			return nil, err
		}
		if err := e.renderMethods(&bounded, file, plan, false, e.registry.ForModeOnly(derive.ModeBounded)); err != nil {
			return nil, err
		}
	}

	if len(caps) > 0 {
		markers := make([]string, 0, len(caps))
		for _, bound := range caps {
			markers = append(markers, renderCapacity(bound))
		}
		bounded.decls = append(markers, bounded.decls...)
	}

	base := outputBase(file.Name)
	var out []File
	for _, target := range []struct {
		suffix string
		tags   string
		sec    *section
	}{
		{"_host.gen.go", e.hostTag, &host},
		{"_bounded.gen.go", e.boundedTag, &bounded},
		{"_shared.gen.go", e.hostTag + " || " + e.boundedTag, &shared},
	} {
		if target.sec.empty() {
			continue
		}
		rendered, err := e.renderFile(file, base+target.suffix, target.tags, target.sec)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}
	return out, nil
}

func (e *Emitter) renderMethods(sec *section, file decl.File, plan dispatch.Plan, runtime bool, derivers []derive.Deriver) error {
	for _, model := range e.models(file, plan, runtime) {
		for _, d := range derivers {
			body, err := d.Render(model)
			if err != nil {
				return fmt.Errorf("emit: %s: %w", plan.Name, err)
			}
			if body == "" {
				continue
			}
			sec.methods = append(sec.methods, body)
		}
	}
	return nil
}

func (e *Emitter) renderFile(file decl.File, name, tags string, sec *section) (File, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by middsgen from %s. DO NOT EDIT.\n\n", filepath.Base(file.Name))
	fmt.Fprintf(&b, "//go:build %s\n\n", tags)
	fmt.Fprintf(&b, "package %s\n\n", file.Package)

	body := strings.Join(append(append([]string{}, sec.decls...), sec.methods...), "\n\n")

	if imports := e.imports(file, body); len(imports) > 0 {
		b.WriteString("import (\n")
		for _, spec := range imports {
			fmt.Fprintf(&b, "\t%s\n", spec)
		}
		b.WriteString(")\n\n")
	}

	b.WriteString(body)
	b.WriteString("\n")

	formatted, err := e.format(name, []byte(b.String()))
	if err != nil {
		return File{}, fmt.Errorf("emit: format %s: %w", name, err)
	}
	return File{Name: name, Content: formatted}, nil
}

// imports assembles the import block: the input file's imports carried over
// verbatim plus the support packages the rendered body references. The
// formatter prunes whatever ends up unused.
func (e *Emitter) imports(file decl.File, body string) []string {
	var specs []string
	for _, spec := range file.Imports {
		line := spec.Path.Value
		if spec.Name != nil {
			line = spec.Name.Name + " " + line
		}
		specs = append(specs, line)
	}

	boundedName := path.Base(e.boundedImport)
	if strings.Contains(body, boundedName+".") {
		specs = append(specs, fmt.Sprintf("%q", e.boundedImport))
	}
	if strings.Contains(body, "scale.") {
		specs = append(specs, fmt.Sprintf("%q", e.boundedImport+"/scale"))
	}
	if strings.Contains(body, "fmt.") {
		specs = append(specs, `"fmt"`)
	}

	aliases := make([]string, 0, len(e.leafImports))
	for alias := range e.leafImports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if strings.Contains(body, alias+".") {
			specs = append(specs, fmt.Sprintf("%s %q", alias, e.leafImports[alias]))
		}
	}
	return specs
}

// capacitySet deduplicates capacity markers across every plan of the file,
// keeping first-use order.
func capacitySet(plans []dispatch.Plan) []marker.Bound {
	seen := make(map[string]struct{})
	var out []marker.Bound
	for _, plan := range plans {
		for _, bound := range plan.Capacities {
			b := bound
			name := rewrite.CapacityName(&b)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, bound)
		}
	}
	return out
}

func renderCapacity(bound marker.Bound) string {
	b := bound
	name := rewrite.CapacityName(&b)
	return fmt.Sprintf("type %s struct{}\n\nfunc (%s) Bound() uint32 { return %d }", name, name, bound.Value)
}

// outputBase strips the extension, and a .midds convention suffix when
// present, from the input file name.
func outputBase(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".go")
	return strings.TrimSuffix(base, ".midds")
}

// Package derive renders the method sets attached to generated types. Each
// deriver owns one concern (equality, cloning, wire codec, size bounds)
// and renders it from a template, so the emitted bodies stay data-driven
// and easy to audit.
package derive

import (
	"fmt"
	"strings"
)

// Mode selects which representation a deriver applies to.
type Mode string

const (
	// ModeHost is the ergonomic representation built on plain Go types.
	ModeHost Mode = "host"
	// ModeBounded is the capacity-checked representation with a wire codec.
	ModeBounded Mode = "bounded"
)

// Deriver renders one derived concern for a model. An empty render means
// the concern does not apply to the model's kind.
type Deriver interface {
	Name() string
	Modes() []Mode
	Render(m *Model) (string, error)
}

type templateDeriver struct {
	name   string
	modes  []Mode
	engine *Engine
}

func (d *templateDeriver) Name() string  { return d.name }
func (d *templateDeriver) Modes() []Mode { return d.modes }

func (d *templateDeriver) Render(m *Model) (string, error) {
	if m == nil {
		return "", fmt.Errorf("derive: model is required")
	}
	out, err := d.engine.Render(d.name, m)
	if err != nil {
		return "", fmt.Errorf("derive: render %s for %s: %w", d.name, m.Type, err)
	}
	return strings.TrimSpace(out), nil
}

// NewTemplateDeriver builds a deriver rendering the template named name.
func NewTemplateDeriver(engine *Engine, name string, modes ...Mode) (Deriver, error) {
	if engine == nil {
		return nil, fmt.Errorf("derive: engine is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("derive: template name is required")
	}
	return &templateDeriver{name: name, modes: modes, engine: engine}, nil
}

// DefaultRegistry wires the built-in derivers: equality, cloning and debug
// strings for both representations, plus the wire codec, size bound and
// type metadata for the bounded one.
func DefaultRegistry(engine *Engine) (*Registry, error) {
	specs := []struct {
		name  string
		modes []Mode
	}{
		{"equal", []Mode{ModeHost, ModeBounded}},
		{"clone", []Mode{ModeHost, ModeBounded}},
		{"debug_string", []Mode{ModeHost, ModeBounded}},
		{"scale_encode", []Mode{ModeBounded}},
		{"scale_decode", []Mode{ModeBounded}},
		{"max_encoded_len", []Mode{ModeBounded}},
		{"type_info", []Mode{ModeBounded}},
	}

	registry := NewRegistry()
	for _, spec := range specs {
		d, err := NewTemplateDeriver(engine, spec.name, spec.modes...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

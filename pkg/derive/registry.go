package derive

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores derivers by name and serves them per mode in
// registration order, so method sets come out deterministic.
type Registry struct {
	mu       sync.RWMutex
	derivers map[string]Deriver
	order    []string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		derivers: make(map[string]Deriver),
	}
}

// Register adds a deriver by its Name(). Duplicate names return an error.
func (r *Registry) Register(d Deriver) error {
	if d == nil {
		return fmt.Errorf("derive: deriver is required")
	}
	name := d.Name()
	if name == "" {
		return fmt.Errorf("derive: deriver name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.derivers[name]; exists {
		return fmt.Errorf("derive: deriver %q already registered", name)
	}

	r.derivers[name] = d
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(d Deriver) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get retrieves a deriver by name.
func (r *Registry) Get(name string) (Deriver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.derivers[name]
	if !ok {
		return nil, fmt.Errorf("derive: deriver %q not found", name)
	}
	return d, nil
}

// Has reports whether a deriver is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.derivers[name]
	return ok
}

// List returns a sorted list of deriver names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.derivers))
	for name := range r.derivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForMode returns the derivers that apply to mode, in registration order.
func (r *Registry) ForMode(mode Mode) []Deriver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Deriver, 0, len(r.order))
	for _, name := range r.order {
		d := r.derivers[name]
		for _, m := range d.Modes() {
			if m == mode {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// ForModeOnly returns the derivers that apply to mode and to no other mode,
// in registration order. The emitter uses this for shared declarations,
// where the mode-agnostic method set lives in a file both build tags see
// and only the mode-exclusive remainder goes into the per-tag file.
func (r *Registry) ForModeOnly(mode Mode) []Deriver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Deriver, 0, len(r.order))
	for _, name := range r.order {
		d := r.derivers[name]
		modes := d.Modes()
		if len(modes) == 1 && modes[0] == mode {
			out = append(out, d)
		}
	}
	return out
}

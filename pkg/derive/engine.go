package derive

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

// EngineOption configures the template engine before construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	files     fs.FS
	extension string
}

// WithTemplateFS overrides the built-in template set, letting callers swap
// in their own method bodies.
func WithTemplateFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.files = files
	}
}

// WithTemplateExtension overrides the default template extension.
func WithTemplateExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGoTemplateOptions accepts go-template engine options for callers
// migrating from that engine. It is currently a no-op.
func WithGoTemplateOptions(_ ...gotemplatepkg.Option) EngineOption {
	return func(*engineConfig) {}
}

// Engine renders deriver templates from a pongo2-backed template set,
// caching compiled templates across renders.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
	ext   string
}

// NewEngine constructs an Engine over the built-in templates unless an
// fs.FS override is supplied.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{
		extension: ".tmpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.files == nil {
		sub, err := fs.Sub(builtinFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("derive: open built-in templates: %w", err)
		}
		cfg.files = sub
	}

	return &Engine{
		set:   pongo2.NewSet("derive", pongo2.NewFSLoader(cfg.files)),
		cache: make(map[string]*pongo2.Template),
		ext:   cfg.extension,
	}, nil
}

// Render executes the named template against m.
func (e *Engine) Render(name string, m *Model) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("derive: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context{"m": m}, &buf); err != nil {
		return "", fmt.Errorf("derive: execute template %q: %w", path, err)
	}
	return buf.String(), nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.cache[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("derive: load template %q: %w", path, err)
	}

	e.cache[path] = tmpl
	return tmpl, nil
}

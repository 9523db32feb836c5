// Package config loads the .middsgen.yaml project file driving CLI runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/allfeat/middsgen/pkg/emit"
)

// DefaultName is the config file the CLI looks for in the working
// directory.
const DefaultName = ".middsgen.yaml"

// Tags holds the build tag overrides for the two representations.
type Tags struct {
	Host    string `yaml:"host"`
	Bounded string `yaml:"bounded"`
}

// Schema holds the metadata of the exported components document.
type Schema struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

// Config is the parsed project file.
type Config struct {
	// Inputs are glob patterns selecting the annotated source files.
	Inputs []string `yaml:"inputs"`

	// Output is the directory generated files are written to. Empty means
	// next to each input.
	Output string `yaml:"output"`

	// BoundedImport overrides the import path of the bounded container
	// package.
	BoundedImport string `yaml:"bounded_import"`

	// LeafImports maps as_runtime_type path hints to import paths.
	LeafImports map[string]string `yaml:"leaf_imports"`

	Tags   Tags   `yaml:"tags"`
	Schema Schema `yaml:"schema"`
}

// Default returns the configuration used when no project file exists.
func Default() Config {
	return Config{
		Inputs: []string{"*.midds.go"},
	}
}

// Load reads and parses the named config file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the named file, falling back to defaults when it does
// not exist. Any other failure is surfaced.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Expand resolves the input globs to concrete file paths, deduplicated in
// glob order.
func (c Config) Expand() ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range c.Inputs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	return out, nil
}

// EmitterOptions translates the config into emitter options.
func (c Config) EmitterOptions() []emit.Option {
	var options []emit.Option
	if c.Tags.Host != "" {
		options = append(options, emit.WithHostTag(c.Tags.Host))
	}
	if c.Tags.Bounded != "" {
		options = append(options, emit.WithBoundedTag(c.Tags.Bounded))
	}
	if c.BoundedImport != "" {
		options = append(options, emit.WithBoundedImport(c.BoundedImport))
	}
	if len(c.LeafImports) > 0 {
		options = append(options, emit.WithLeafImports(c.LeafImports))
	}
	return options
}

// Save writes the config as YAML to path.
func (c Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/allfeat/middsgen/internal/config"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultName)
	raw := `inputs:
  - records/*.midds.go
output: gen
leaf_imports:
  leaf: github.com/allfeat/midds/leaf
tags:
  host: midds_std
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Config{
		Inputs:      []string{"records/*.midds.go"},
		Output:      "gen",
		LeafImports: map[string]string{"leaf": "github.com/allfeat/midds/leaf"},
		Tags:        config.Tags{Host: "midds_std"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultName)
	if err := os.WriteFile(path, []byte("inputs: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandDeduplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.midds.go", "b.midds.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("package records\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Config{Inputs: []string{
		filepath.Join(dir, "*.midds.go"),
		filepath.Join(dir, "a.midds.go"),
	}}
	files, err := cfg.Expand()
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.midds.go"),
		filepath.Join(dir, "b.midds.go"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultName)
	cfg := config.Config{
		Inputs: []string{"*.midds.go"},
		Output: "gen",
		Tags:   config.Tags{Host: "h", Bounded: "b"},
		Schema: config.Schema{Title: "records", Version: "2.0.0"},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

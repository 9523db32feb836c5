package source

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
)

// Parsed is a loaded and syntax-checked input file, ready for scanning.
type Parsed struct {
	Name string
	Fset *token.FileSet
	File *ast.File
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS supplies the fs.FS that KindFS sources resolve against.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// Loader reads declaration files and parses them with full comment fidelity;
// directives live in comments, so parsing without them would blind the whole
// pipeline.
type Loader struct {
	fsys fs.FS
}

// NewLoader constructs a Loader applying any provided options.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load resolves src, parses it, and returns the syntax tree. Parse errors
// are returned verbatim from go/parser so they keep their positions.
func (l *Loader) Load(ctx context.Context, src Source) (Parsed, error) {
	if ctx == nil {
		return Parsed{}, errors.New("source: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Parsed{}, err
	}
	if src == nil {
		return Parsed{}, errors.New("source: source is required")
	}

	var (
		name = src.Location()
		data any
	)

	switch src.Kind() {
	case KindFile:
		// go/parser reads the file itself when src is nil.
		data = nil
	case KindFS:
		if l.fsys == nil {
			return Parsed{}, fmt.Errorf("source: fs source %q requires WithFS", name)
		}
		raw, err := fs.ReadFile(l.fsys, name)
		if err != nil {
			return Parsed{}, fmt.Errorf("source: read %q: %w", name, err)
		}
		data = raw
	case KindBytes:
		raw, ok := Bytes(src)
		if !ok {
			return Parsed{}, fmt.Errorf("source: malformed bytes source %q", name)
		}
		data = raw
	default:
		return Parsed{}, fmt.Errorf("source: unsupported source kind %d", src.Kind())
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, data, parser.ParseComments)
	if err != nil {
		return Parsed{}, fmt.Errorf("source: parse %q: %w", name, err)
	}

	return Parsed{Name: filepath.ToSlash(name), Fset: fset, File: file}, nil
}

package rewrite

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"

	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/marker"
)

// registeredLeaves is the closed set of dual-mode record type names the
// rewriter is willing to rename under an as_runtime_type hint. Names outside
// this set always pass through, so plain aliases (identifiers of uint64 and
// friends) are never renamed by accident. Adding a new dual-mode record type
// means adding its name here.
var registeredLeaves = []string{
	"ISWC",
	"ISRC",
	"EAN",
	"MusicalWork",
	"MusicalWorkType",
	"ClassicalInfo",
	"Track",
	"TrackTitle",
	"TrackVersion",
	"ReleaseTitle",
	"CoverContributorName",
}

// RuntimePrefix is prepended to a declaration's identifier to name its
// bounded-family counterpart.
const RuntimePrefix = "Runtime"

// DefaultBoundedPackage qualifies the bounded container types in emitted
// code.
const DefaultBoundedPackage = "bounded"

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithBoundedPackage overrides the package qualifier used for the bounded
// container types in rewritten expressions.
func WithBoundedPackage(name string) Option {
	return func(r *Rewriter) {
		if name != "" {
			r.boundedPkg = name
		}
	}
}

// WithExtraLeaves widens the registered leaf set. Intended for tests and for
// consumers embedding the generator with additional dual-mode record types.
func WithExtraLeaves(names ...string) Option {
	return func(r *Rewriter) {
		for _, name := range names {
			if name != "" {
				r.leaves[name] = struct{}{}
			}
		}
	}
}

// Rewriter computes bounded-family counterparts of host type expressions.
// It is created per input file so diagnostics resolve against that file's
// position table.
type Rewriter struct {
	fset       *token.FileSet
	leaves     map[string]struct{}
	boundedPkg string
}

// New constructs a Rewriter for expressions positioned in fset.
func New(fset *token.FileSet, options ...Option) *Rewriter {
	r := &Rewriter{
		fset:       fset,
		leaves:     make(map[string]struct{}, len(registeredLeaves)),
		boundedPkg: DefaultBoundedPackage,
	}
	for _, name := range registeredLeaves {
		r.leaves[name] = struct{}{}
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// RequiresBound reports whether expr has no statically bounded counterpart
// without a bound(N) directive: owned text, byte slices, sequences, and
// optionals of those.
func (r *Rewriter) RequiresBound(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name == "string"
	case *ast.ArrayType:
		// Fixed-size arrays are already statically bounded.
		return t.Len == nil
	case *ast.StarExpr:
		return r.RequiresBound(t.X)
	default:
		return false
	}
}

// ValidateBound rejects a bound(N) directive attached to a type that has no
// bounded counterpart.
func (r *Rewriter) ValidateBound(expr ast.Expr, bound *marker.Bound) error {
	if bound == nil {
		return nil
	}
	if !r.RequiresBound(expr) {
		return diag.UnsupportedBoundType(r.position(expr), Print(r.fset, expr))
	}
	return nil
}

// Rewrite computes the bounded counterpart of expr under an optional bound
// and hint. The decision order matches the contract: owned text and byte
// slices first, sequences, then transparent optionals, then hint-driven leaf
// renames, then pass-through.
func (r *Rewriter) Rewrite(expr ast.Expr, bound *marker.Bound, hint *marker.RuntimeHint) (ast.Expr, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		if t.Name == "string" {
			if bound == nil {
				return nil, diag.MissingBound(r.position(expr), "string")
			}
			return r.boundedBytes(bound), nil
		}
		return r.rewriteLeaf(expr, hint)

	case *ast.ArrayType:
		if t.Len != nil {
			if f := firstFloat(t.Elt); f != nil {
				return nil, diag.UnencodableType(r.position(f), f.Name)
			}
			return expr, nil
		}
		if isByte(t.Elt) {
			if bound == nil {
				return nil, diag.MissingBound(r.position(expr), "[]byte")
			}
			return r.boundedBytes(bound), nil
		}
		if bound == nil {
			return nil, diag.MissingBound(r.position(expr), Print(r.fset, expr))
		}
		// The outer bound never propagates into the element type; only the
		// hint does.
		elem, err := r.rewriteLeaf(t.Elt, hint)
		if err != nil {
			return nil, err
		}
		return r.boundedVec(elem, bound), nil

	case *ast.StarExpr:
		inner, err := r.Rewrite(t.X, bound, hint)
		if err != nil {
			return nil, err
		}
		return &ast.StarExpr{X: inner}, nil

	default:
		return r.rewriteLeaf(expr, hint)
	}
}

// rewriteLeaf is the bound-free arm: it renames registered user-named leaves
// under a hint and recurses through optionals, but rejects anything that
// demands a bound of its own.
func (r *Rewriter) rewriteLeaf(expr ast.Expr, hint *marker.RuntimeHint) (ast.Expr, error) {
	switch t := expr.(type) {
	case *ast.StarExpr:
		inner, err := r.rewriteLeaf(t.X, hint)
		if err != nil {
			return nil, err
		}
		return &ast.StarExpr{X: inner}, nil

	case *ast.Ident:
		if t.Name == "string" {
			return nil, diag.MissingBound(r.position(expr), "string")
		}
		if isFloat(t) {
			return nil, diag.UnencodableType(r.position(expr), t.Name)
		}
		if hint == nil {
			return expr, nil
		}
		if _, ok := r.leaves[t.Name]; !ok {
			return expr, nil
		}
		runtime := ast.NewIdent(RuntimePrefix + t.Name)
		if hint.Path != "" {
			return &ast.SelectorExpr{X: ast.NewIdent(hint.Path), Sel: runtime}, nil
		}
		return runtime, nil

	case *ast.ArrayType:
		if t.Len == nil {
			return nil, diag.MissingBound(r.position(expr), Print(r.fset, expr))
		}
		if f := firstFloat(t.Elt); f != nil {
			return nil, diag.UnencodableType(r.position(f), f.Name)
		}
		return expr, nil

	default:
		return expr, nil
	}
}

func (r *Rewriter) boundedBytes(bound *marker.Bound) ast.Expr {
	return &ast.IndexExpr{
		X: &ast.SelectorExpr{
			X:   ast.NewIdent(r.boundedPkg),
			Sel: ast.NewIdent("Bytes"),
		},
		Index: ast.NewIdent(CapacityName(bound)),
	}
}

func (r *Rewriter) boundedVec(elem ast.Expr, bound *marker.Bound) ast.Expr {
	return &ast.IndexListExpr{
		X: &ast.SelectorExpr{
			X:   ast.NewIdent(r.boundedPkg),
			Sel: ast.NewIdent("Vec"),
		},
		Indices: []ast.Expr{elem, ast.NewIdent(CapacityName(bound))},
	}
}

func (r *Rewriter) position(expr ast.Expr) token.Position {
	if r.fset == nil {
		return token.Position{}
	}
	return r.fset.Position(expr.Pos())
}

func isByte(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == "byte"
}

func isFloat(ident *ast.Ident) bool {
	return ident.Name == "float32" || ident.Name == "float64"
}

// firstFloat returns the first floating-point identifier reachable through
// pointers, arrays and slices of expr. Floats have no wire encoding, so any
// position containing one is rejected before emission.
func firstFloat(expr ast.Expr) *ast.Ident {
	switch t := expr.(type) {
	case *ast.Ident:
		if isFloat(t) {
			return t
		}
	case *ast.StarExpr:
		return firstFloat(t.X)
	case *ast.ArrayType:
		return firstFloat(t.Elt)
	}
	return nil
}

// CapacityName derives the identifier of the zero-size capacity marker type
// emitted for a bound. The name embeds the user's literal (minus digit
// separators) so two fields sharing a bound share a marker.
func CapacityName(bound *marker.Bound) string {
	return "bound" + strings.ReplaceAll(bound.Literal, "_", "")
}

// Print formats a type expression for diagnostics and for the stringified
// transformation check.
func Print(fset *token.FileSet, expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	if fset == nil {
		fset = token.NewFileSet()
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return "<unprintable>"
	}
	return buf.String()
}

package rewrite

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/marker"
)

func parseType(t *testing.T, src string) (*token.FileSet, ast.Expr) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "input.go", "package p\n\ntype T "+src+"\n", 0)
	if err != nil {
		t.Fatalf("parse type %q: %v", src, err)
	}
	return fset, file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.TypeSpec).Type
}

func testBound(value uint32, literal string) *marker.Bound {
	return &marker.Bound{Value: value, Literal: literal}
}

func TestRewriteTable(t *testing.T) {
	hint := &marker.RuntimeHint{}
	pathHint := &marker.RuntimeHint{Path: "leaf"}

	tests := []struct {
		name  string
		typ   string
		bound *marker.Bound
		hint  *marker.RuntimeHint
		want  string
	}{
		{"owned text", "string", testBound(256, "256"), nil, "bounded.Bytes[bound256]"},
		{"byte slice", "[]byte", testBound(64, "64"), nil, "bounded.Bytes[bound64]"},
		{"sequence of primitive", "[]uint64", testBound(512, "512"), nil, "bounded.Vec[uint64, bound512]"},
		{"sequence of leaf with hint", "[]ISWC", testBound(16, "16"), pathHint, "bounded.Vec[leaf.RuntimeISWC, bound16]"},
		{"sequence of leaf without hint", "[]ISWC", testBound(16, "16"), nil, "bounded.Vec[ISWC, bound16]"},
		{"optional text", "*string", testBound(11, "11"), nil, "*bounded.Bytes[bound11]"},
		{"optional sequence", "*[]uint64", testBound(8, "8"), nil, "*bounded.Vec[uint64, bound8]"},
		{"leaf with bare hint", "ISWC", nil, hint, "RuntimeISWC"},
		{"leaf with path hint", "ISWC", nil, pathHint, "leaf.RuntimeISWC"},
		{"optional leaf with hint", "*MusicalWorkType", nil, hint, "*RuntimeMusicalWorkType"},
		{"unregistered name with hint", "MiddsID", nil, hint, "MiddsID"},
		{"primitive", "uint16", nil, nil, "uint16"},
		{"optional primitive", "*uint16", nil, nil, "*uint16"},
		{"fixed array", "[4]byte", nil, nil, "[4]byte"},
		{"qualified name with hint", "shared.Date", nil, hint, "shared.Date"},
		{"underscored literal", "string", testBound(1024, "1_024"), nil, "bounded.Bytes[bound1024]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fset, expr := parseType(t, tc.typ)
			r := New(fset)

			got, err := r.Rewrite(expr, tc.bound, tc.hint)
			if err != nil {
				t.Fatalf("rewrite: %v", err)
			}
			if printed := Print(fset, got); printed != tc.want {
				t.Errorf("rewrite(%s) = %s, want %s", tc.typ, printed, tc.want)
			}
		})
	}
}

func TestRewriteErrors(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		bound    *marker.Bound
		hint     *marker.RuntimeHint
		wantKind diag.Kind
	}{
		{"text without bound", "string", nil, nil, diag.KindMissingBound},
		{"byte slice without bound", "[]byte", nil, nil, diag.KindMissingBound},
		{"sequence without bound", "[]uint64", nil, nil, diag.KindMissingBound},
		{"optional text without bound", "*string", nil, nil, diag.KindMissingBound},
		{"nested sequence", "[][]uint64", testBound(4, "4"), nil, diag.KindMissingBound},
		{"sequence of text", "[]string", testBound(4, "4"), nil, diag.KindMissingBound},
		{"float", "float64", nil, nil, diag.KindUnsupportedBoundType},
		{"optional float", "*float32", nil, nil, diag.KindUnsupportedBoundType},
		{"sequence of floats", "[]float64", testBound(8, "8"), nil, diag.KindUnsupportedBoundType},
		{"fixed array of floats", "[4]float64", nil, nil, diag.KindUnsupportedBoundType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fset, expr := parseType(t, tc.typ)
			r := New(fset)

			_, err := r.Rewrite(expr, tc.bound, tc.hint)
			if err == nil {
				t.Fatalf("expected error, got none")
			}
			var derr *diag.Error
			if !errors.As(err, &derr) {
				t.Fatalf("expected *diag.Error, got %T", err)
			}
			if derr.Kind != tc.wantKind {
				t.Errorf("kind = %v, want %v", derr.Kind, tc.wantKind)
			}
			if !derr.Pos.IsValid() {
				t.Errorf("diagnostic carries no position: %v", derr)
			}
		})
	}
}

func TestValidateBound(t *testing.T) {
	fset, expr := parseType(t, "uint32")
	r := New(fset)

	err := r.ValidateBound(expr, testBound(100, "100"))
	var derr *diag.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *diag.Error, got %v", err)
	}
	if derr.Kind != diag.KindUnsupportedBoundType {
		t.Errorf("kind = %v, want %v", derr.Kind, diag.KindUnsupportedBoundType)
	}
}

func TestRequiresBound(t *testing.T) {
	tests := []struct {
		typ  string
		want bool
	}{
		{"string", true},
		{"[]byte", true},
		{"[]uint64", true},
		{"*string", true},
		{"*[]ISWC", true},
		{"uint64", false},
		{"*uint64", false},
		{"[8]byte", false},
		{"ISWC", false},
		{"map[string]uint64", false},
	}

	for _, tc := range tests {
		fset, expr := parseType(t, tc.typ)
		r := New(fset)
		if got := r.RequiresBound(expr); got != tc.want {
			t.Errorf("RequiresBound(%s) = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestWithExtraLeaves(t *testing.T) {
	fset, expr := parseType(t, "Remix")
	r := New(fset, WithExtraLeaves("Remix"))

	got, err := r.Rewrite(expr, nil, &marker.RuntimeHint{})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if printed := Print(fset, got); printed != "RuntimeRemix" {
		t.Errorf("rewrite(Remix) = %s, want RuntimeRemix", printed)
	}
}

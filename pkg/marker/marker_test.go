package marker

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/allfeat/middsgen/pkg/diag"
)

func parseFieldDoc(t *testing.T, doc string) (*token.FileSet, *ast.CommentGroup) {
	t.Helper()

	src := "package p\n\ntype T struct {\n" + doc + "\n\tTitle string\n}\n"
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "input.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	structType := file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.TypeSpec).Type.(*ast.StructType)
	return fset, structType.Fields.List[0].Doc
}

func TestParseBound(t *testing.T) {
	fset, doc := parseFieldDoc(t, "\t//midds:bound(256)")

	set, err := Parse(fset, doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Bound == nil {
		t.Fatalf("expected bound, got none")
	}
	if set.Bound.Value != 256 {
		t.Errorf("value = %d, want 256", set.Bound.Value)
	}
	if set.Bound.Literal != "256" {
		t.Errorf("literal = %q, want %q", set.Bound.Literal, "256")
	}
}

func TestParseBoundKeepsLiteralToken(t *testing.T) {
	fset, doc := parseFieldDoc(t, "\t//midds:bound(1_024)")

	set, err := Parse(fset, doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Bound.Literal != "1_024" {
		t.Errorf("literal = %q, want original token %q", set.Bound.Literal, "1_024")
	}
	if set.Bound.Value != 1024 {
		t.Errorf("value = %d, want 1024", set.Bound.Value)
	}
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		wantPath  string
	}{
		{"bare", "\t//midds:as_runtime_type", ""},
		{"with path", "\t//midds:as_runtime_type(path = \"iswc\")", "iswc"},
		{"tight spacing", "\t//midds:as_runtime_type(path=\"leaf\")", "leaf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fset, doc := parseFieldDoc(t, tc.directive)

			set, err := Parse(fset, doc)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if set.Hint == nil {
				t.Fatalf("expected hint, got none")
			}
			if set.Hint.Path != tc.wantPath {
				t.Errorf("path = %q, want %q", set.Hint.Path, tc.wantPath)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKind diag.Kind
	}{
		{"zero bound", "\t//midds:bound(0)", diag.KindInvalidBoundSyntax},
		{"non numeric bound", "\t//midds:bound(abc)", diag.KindInvalidBoundSyntax},
		{"overflowing bound", "\t//midds:bound(4294967296)", diag.KindInvalidBoundSyntax},
		{"missing parens", "\t//midds:bound 256", diag.KindInvalidBoundSyntax},
		{"unknown directive", "\t//midds:frobnicate", diag.KindInvalidBoundSyntax},
		{"malformed hint", "\t//midds:as_runtime_type(module = \"x\")", diag.KindInvalidBoundSyntax},
		{"duplicate bound", "\t//midds:bound(1)\n\t//midds:bound(2)", diag.KindConflictingAttributes},
		{"duplicate hint", "\t//midds:as_runtime_type\n\t//midds:as_runtime_type", diag.KindConflictingAttributes},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fset, doc := parseFieldDoc(t, tc.doc)

			_, err := Parse(fset, doc)
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
				t.Errorf("diagnostic has no position: %v", derr)
			}
		})
	}
}

func TestBoundErrorPointsAtLiteral(t *testing.T) {
	fset, doc := parseFieldDoc(t, "\t//midds:bound(0)")

	_, err := Parse(fset, doc)
	var derr *diag.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *diag.Error, got %v", err)
	}

	start := fset.Position(doc.List[0].Slash)
	litColumn := start.Column + len("//midds:bound(")
	if derr.Pos.Column != litColumn {
		t.Errorf("error column = %d, want %d (the digit token)", derr.Pos.Column, litColumn)
	}
}

func TestFilterStripsOnlyDirectives(t *testing.T) {
	fset, doc := parseFieldDoc(t, "\t// The work title.\n\t//midds:bound(256)\n\t// Trailing note.")
	_ = fset

	filtered := Filter(doc)
	if filtered == nil {
		t.Fatalf("expected surviving comments")
	}

	var got []string
	for _, comment := range filtered.List {
		got = append(got, comment.Text)
	}
	want := []string{"// The work title.", "// Trailing note."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("filtered = %v, want %v", got, want)
	}
}

func TestFilterAllDirectivesYieldsNil(t *testing.T) {
	_, doc := parseFieldDoc(t, "\t//midds:bound(256)")
	if filtered := Filter(doc); filtered != nil {
		t.Errorf("expected nil group, got %v", filtered)
	}
}

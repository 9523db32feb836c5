// Package testsupport carries the fixture helpers shared by the pipeline
// test suites.
package testsupport

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/allfeat/middsgen/pkg/decl"
)

// ScanSource parses src with comment fidelity and scans it for annotated
// declarations. Testing helpers fail fatally to keep the suites concise.
func ScanSource(t *testing.T, name, src string) decl.File {
	t.Helper()

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	scanned, err := decl.NewScanner().ScanFile(fset, parsed, name)
	if err != nil {
		t.Fatalf("scan fixture %s: %v", name, err)
	}
	return scanned
}

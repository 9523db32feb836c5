package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/orchestrator"
	"github.com/allfeat/middsgen/pkg/source"
)

const annotated = `package records

//midds:dual
type MusicalWork struct {
	//midds:bound(256)
	Title string

	//midds:bound(64)
	ContributorIDs []uint64
}
`

func TestGenerateEndToEnd(t *testing.T) {
	o := orchestrator.New()
	result, err := o.Generate(context.Background(), orchestrator.Request{
		Source: source.FromBytes("records.go", []byte(annotated)),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if result.Declarations != 1 {
		t.Errorf("Declarations = %d, want 1", result.Declarations)
	}
	if len(result.Files) != 2 {
		t.Fatalf("generated %d files, want host and bounded", len(result.Files))
	}

	byName := map[string]string{}
	for _, f := range result.Files {
		byName[f.Name] = string(f.Content)
	}
	host, ok := byName["records_host.gen.go"]
	if !ok {
		t.Fatal("missing host output")
	}
	if !strings.Contains(host, "Title string") {
		t.Errorf("host output lost the original field type:\n%s", host)
	}
	bounded, ok := byName["records_bounded.gen.go"]
	if !ok {
		t.Fatal("missing bounded output")
	}
	for _, want := range []string{
		"type RuntimeMusicalWork struct",
		"bounded.Bytes[bound256]",
		"bounded.Vec[uint64, bound64]",
	} {
		if !strings.Contains(bounded, want) {
			t.Errorf("bounded output missing %q:\n%s", want, bounded)
		}
	}
}

func TestGenerateWithoutAnnotationsSucceedsEmpty(t *testing.T) {
	o := orchestrator.New()
	result, err := o.Generate(context.Background(), orchestrator.Request{
		Source: source.FromBytes("plain.go", []byte("package records\n\ntype Plain struct{ N int }\n")),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Declarations != 0 || len(result.Files) != 0 {
		t.Errorf("expected empty result, got %d decls, %d files", result.Declarations, len(result.Files))
	}
}

func TestGenerateSurfacesDiagnostics(t *testing.T) {
	o := orchestrator.New()
	_, err := o.Generate(context.Background(), orchestrator.Request{
		Source: source.FromBytes("bad.go", []byte("package records\n\n//midds:dual\ntype E struct {\n\tName string\n}\n")),
	})
	var derr *diag.Error
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *diag.Error", err)
	}
	if derr.Kind != diag.KindMissingBound {
		t.Errorf("kind = %v, want missing bound", derr.Kind)
	}
}

func TestCheckReportsWithoutEmitting(t *testing.T) {
	o := orchestrator.New()
	result, err := o.Check(context.Background(), orchestrator.Request{
		Source: source.FromBytes("records.go", []byte(annotated)),
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Declarations != 1 {
		t.Errorf("Declarations = %d, want 1", result.Declarations)
	}
	if len(result.Files) != 0 {
		t.Errorf("Check emitted %d files, want none", len(result.Files))
	}
}

func TestGenerateRequiresContext(t *testing.T) {
	o := orchestrator.New()
	if _, err := o.Generate(nil, orchestrator.Request{}); err == nil { //nolint:staticcheck
		t.Fatal("expected error for nil context")
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := orchestrator.New()
	_, err := o.Generate(ctx, orchestrator.Request{
		Source: source.FromBytes("records.go", []byte(annotated)),
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestGenerateRequiresSource(t *testing.T) {
	o := orchestrator.New()
	if _, err := o.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

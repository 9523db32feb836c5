package dispatch

import (
	"errors"
	"testing"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/rewrite"
	"github.com/allfeat/middsgen/pkg/testsupport"
)

func dispatchSource(t *testing.T, src string) ([]Plan, error) {
	t.Helper()

	scanned := testsupport.ScanSource(t, "input.go", "package records\n\n"+src)
	return New().Dispatch(scanned)
}

func mustDispatch(t *testing.T, src string) []Plan {
	t.Helper()
	plans, err := dispatchSource(t, src)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	return plans
}

func printPlanType(t *testing.T, plan Plan, field int) (host, bounded string) {
	t.Helper()
	fp := plan.Fields[field]
	return rewrite.Print(nil, fp.Host), rewrite.Print(nil, fp.Bounded)
}

func TestDispatchNamedRecord(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type M struct {
	//midds:bound(256)
	Title string

	CreationYear *uint16
}
`)

	if len(plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(plans))
	}
	plan := plans[0]
	if !plan.Transformed {
		t.Errorf("expected transformed plan")
	}

	host, bounded := printPlanType(t, plan, 0)
	if host != "string" {
		t.Errorf("host type = %s, want string (byte-identical preservation)", host)
	}
	if bounded != "bounded.Bytes[bound256]" {
		t.Errorf("bounded type = %s, want bounded.Bytes[bound256]", bounded)
	}

	host, bounded = printPlanType(t, plan, 1)
	if host != bounded {
		t.Errorf("untouched field diverged: %s vs %s", host, bounded)
	}
	if plan.Fields[1].Transformed {
		t.Errorf("primitive field marked transformed")
	}

	if len(plan.Capacities) != 1 || plan.Capacities[0].Literal != "256" {
		t.Errorf("capacities = %+v, want single 256", plan.Capacities)
	}
}

func TestDispatchSequenceOfLeafWithPathHint(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type R struct {
	//midds:bound(16)
	//midds:as_runtime_type(path = "leaf")
	Items []ISWC
}
`)

	_, bounded := printPlanType(t, plans[0], 0)
	if bounded != "bounded.Vec[leaf.RuntimeISWC, bound16]" {
		t.Errorf("bounded type = %s, want bounded.Vec[leaf.RuntimeISWC, bound16]", bounded)
	}
}

func TestDispatchHintDoesNotLeakAcrossFields(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type R struct {
	//midds:as_runtime_type
	Work MusicalWorkType

	Other MusicalWorkType
}
`)

	plan := plans[0]
	if got := rewrite.Print(nil, plan.Fields[0].Bounded); got != "RuntimeMusicalWorkType" {
		t.Errorf("hinted field = %s, want RuntimeMusicalWorkType", got)
	}
	if got := rewrite.Print(nil, plan.Fields[1].Bounded); got != "MusicalWorkType" {
		t.Errorf("sibling field = %s, want untouched MusicalWorkType", got)
	}
}

func TestDispatchOptionalText(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type C struct {
	//midds:bound(11)
	Code *string
}
`)

	_, bounded := printPlanType(t, plans[0], 0)
	if bounded != "*bounded.Bytes[bound11]" {
		t.Errorf("bounded type = %s, want *bounded.Bytes[bound11]", bounded)
	}
}

func TestDispatchPositionalRecord(t *testing.T) {
	plans := mustDispatch(t, `
// ISWC is the work identifier.
//
//midds:dual
//midds:bound(15)
type ISWC string
`)

	plan := plans[0]
	if plan.Shape != decl.RecordPositional {
		t.Fatalf("shape = %v, want record-positional", plan.Shape)
	}
	if !plan.Transformed {
		t.Errorf("expected transformed plan")
	}
	if got := rewrite.Print(nil, plan.Payload.Bounded); got != "bounded.Bytes[bound15]" {
		t.Errorf("payload = %s, want bounded.Bytes[bound15]", got)
	}
}

func TestDispatchUnitRecord(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type U struct{}
`)

	plan := plans[0]
	if plan.Shape != decl.RecordUnit {
		t.Fatalf("shape = %v, want record-unit", plan.Shape)
	}
	if plan.Transformed {
		t.Errorf("unit record must not transform")
	}
}

func TestDispatchSumType(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type W interface {
	Plain()

	//midds:bound(512)
	Medley(ids []uint64)
}
`)

	plan := plans[0]
	if plan.Shape != decl.Sum {
		t.Fatalf("shape = %v, want sum-type", plan.Shape)
	}
	if !plan.Transformed {
		t.Errorf("expected transformed plan")
	}

	if plan.Variants[0].Kind != decl.VariantUnit || plan.Variants[0].Transformed {
		t.Errorf("unit variant must stay untouched: %+v", plan.Variants[0])
	}

	medley := plan.Variants[1]
	if got := rewrite.Print(nil, medley.Payload[0].Bounded); got != "bounded.Vec[uint64, bound512]" {
		t.Errorf("medley payload = %s, want bounded.Vec[uint64, bound512]", got)
	}
	if len(plan.Capacities) != 1 || plan.Capacities[0].Literal != "512" {
		t.Errorf("capacities = %+v, want single 512", plan.Capacities)
	}
}

func TestDispatchUnitOnlySumStaysUntransformed(t *testing.T) {
	plans := mustDispatch(t, `
//midds:dual
type Kind interface {
	Original()
	Adaptation()
}
`)

	if plans[0].Transformed {
		t.Errorf("unit-only sum must not transform")
	}
}

func TestDispatchErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind diag.Kind
	}{
		{
			"missing bound on text field",
			"//midds:dual\ntype E struct {\n\tName string\n}\n",
			diag.KindMissingBound,
		},
		{
			"missing bound on variant payload",
			"//midds:dual\ntype W interface {\n\tMedley(ids []uint64)\n}\n",
			diag.KindMissingBound,
		},
		{
			"bound on primitive",
			"//midds:dual\ntype E struct {\n\t//midds:bound(4)\n\tYear uint16\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"duplicate bound",
			"//midds:dual\ntype E struct {\n\t//midds:bound(4)\n\t//midds:bound(8)\n\tName string\n}\n",
			diag.KindConflictingAttributes,
		},
		{
			"alias declaration",
			"//midds:dual\ntype E = string\n",
			diag.KindUnsupportedShape,
		},
		{
			"named variant payload requiring bound",
			"//midds:dual\ntype W interface {\n\tDetailed(title string)\n}\n",
			diag.KindMissingBound,
		},
		{
			"float field",
			"//midds:dual\ntype E struct {\n\tTempo float64\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"float sequence under bound",
			"//midds:dual\ntype E struct {\n\t//midds:bound(8)\n\tSamples []float32\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on named record declaration",
			"//midds:dual\n//midds:bound(4)\ntype E struct {\n\tYear uint16\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on unit record declaration",
			"//midds:dual\n//midds:bound(4)\ntype E struct{}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on sum declaration",
			"//midds:dual\n//midds:bound(4)\ntype W interface {\n\tPlain()\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on unit variant",
			"//midds:dual\ntype W interface {\n\t//midds:bound(4)\n\tPlain()\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on variant with no consuming position",
			"//midds:dual\ntype W interface {\n\t//midds:bound(4)\n\tScored(uint32)\n}\n",
			diag.KindUnsupportedBoundType,
		},
		{
			"bound on named-field variant",
			"//midds:dual\ntype W interface {\n\t//midds:bound(4)\n\tScored(points uint32)\n}\n",
			diag.KindUnsupportedBoundType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dispatchSource(t, tc.src)
			if err == nil {
				t.Fatalf("expected error, got none")
			}
			var derr *diag.Error
			if !errors.As(err, &derr) {
				t.Fatalf("expected *diag.Error, got %T: %v", err, err)
			}
			if derr.Kind != tc.wantKind {
				t.Errorf("kind = %v, want %v", derr.Kind, tc.wantKind)
			}
		})
	}
}

func TestDispatchFirstErrorWins(t *testing.T) {
	_, err := dispatchSource(t, `
//midds:dual
type E struct {
	First string

	Second []uint64
}
`)

	var derr *diag.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *diag.Error, got %v", err)
	}
	// The diagnostic must point at the first offending field.
	if derr.Pos.Line != 6 {
		t.Errorf("error line = %d, want 6 (field First)", derr.Pos.Line)
	}
}

package dispatch

import (
	"go/ast"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/marker"
	"github.com/allfeat/middsgen/pkg/rewrite"
)

// FieldPlan carries one field through to emission: the host type exactly as
// written, the bounded counterpart, and the doc comment with directives
// stripped.
type FieldPlan struct {
	Name        string
	Doc         *ast.CommentGroup
	Tag         *ast.BasicLit
	Host        ast.Expr
	Bounded     ast.Expr
	Transformed bool
}

// VariantFieldPlan is a single payload position of a sum-type variant.
type VariantFieldPlan struct {
	Name        string
	Host        ast.Expr
	Bounded     ast.Expr
	Transformed bool
}

// VariantPlan carries one sum-type variant through to emission. UsesBound
// records whether any payload position consumed the variant-level bound, so
// the capacity marker is only emitted when referenced.
type VariantPlan struct {
	Name        string
	Kind        decl.VariantKind
	Doc         *ast.CommentGroup
	Payload     []VariantFieldPlan
	Transformed bool
	UsesBound   bool
}

// Plan is the emission plan for one declaration. Exactly one of Fields,
// Payload or Variants is populated, mirroring decl.Decl.
type Plan struct {
	Name       string
	Shape      decl.Shape
	Doc        *ast.CommentGroup
	TypeParams *ast.FieldList

	Fields   []FieldPlan
	Payload  *FieldPlan
	Variants []VariantPlan

	// Transformed selects the emitter path: two parallel declarations when
	// true, a single shared declaration when false.
	Transformed bool

	// Capacities lists the bounds whose marker types the emitter must
	// provide, deduplicated by marker name in first-use order.
	Capacities []marker.Bound
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRewriterOptions forwards options to the per-file rewriters the
// dispatcher creates.
func WithRewriterOptions(options ...rewrite.Option) Option {
	return func(d *Dispatcher) {
		d.rewriterOptions = append(d.rewriterOptions, options...)
	}
}

// Dispatcher drives the rewriter across every position of every scanned
// declaration and assembles emission plans. The first error aborts the file;
// later errors are not coalesced, keeping diagnostics focused on one fix at
// a time.
type Dispatcher struct {
	rewriterOptions []rewrite.Option
}

// New constructs a Dispatcher applying any provided options.
func New(options ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Dispatch plans every declaration in file, in source order.
func (d *Dispatcher) Dispatch(file decl.File) ([]Plan, error) {
	rewriter := rewrite.New(file.Fset, d.rewriterOptions...)

	plans := make([]Plan, 0, len(file.Decls))
	for _, dc := range file.Decls {
		plan, err := d.dispatchDecl(rewriter, file, dc)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (d *Dispatcher) dispatchDecl(r *rewrite.Rewriter, file decl.File, dc decl.Decl) (Plan, error) {
	plan := Plan{
		Name:       dc.Name,
		Shape:      dc.Shape,
		Doc:        marker.Filter(dc.Doc),
		TypeParams: dc.TypeParams,
	}

	// Only a newtype consumes a declaration-level bound: its underlying type
	// is the payload. On every other shape nothing reads it, so letting it
	// through would silently drop the user's capacity.
	if dc.Markers.Bound != nil && dc.Shape != decl.RecordPositional {
		return Plan{}, diag.UnusedBound(dc.Markers.Bound.Pos, "a "+dc.Shape.String()+" declaration")
	}

	var caps capacitySet

	switch dc.Shape {
	case decl.RecordUnit:
		return plan, nil

	case decl.RecordNamed:
		for _, field := range dc.Fields {
			fp, err := d.planField(r, file, field)
			if err != nil {
				return Plan{}, err
			}
			if fp.Transformed {
				plan.Transformed = true
				caps.add(field.Markers.Bound)
			}
			plan.Fields = append(plan.Fields, fp)
		}

	case decl.RecordPositional:
		fp, err := d.planField(r, file, *dc.Payload)
		if err != nil {
			return Plan{}, err
		}
		if fp.Transformed {
			plan.Transformed = true
			caps.add(dc.Payload.Markers.Bound)
		}
		plan.Payload = &fp

	case decl.Sum:
		for _, variant := range dc.Variants {
			vp, err := d.planVariant(r, file, variant)
			if err != nil {
				return Plan{}, err
			}
			if vp.Transformed {
				plan.Transformed = true
			}
			if vp.UsesBound {
				caps.add(variant.Markers.Bound)
			}
			plan.Variants = append(plan.Variants, vp)
		}

	default:
		return Plan{}, diag.UnsupportedShape(dc.Pos, dc.Shape.String())
	}

	plan.Capacities = caps.bounds
	return plan, nil
}

func (d *Dispatcher) planField(r *rewrite.Rewriter, file decl.File, field decl.Field) (FieldPlan, error) {
	if err := r.ValidateBound(field.Type, field.Markers.Bound); err != nil {
		return FieldPlan{}, err
	}

	bounded, err := r.Rewrite(field.Type, field.Markers.Bound, field.Markers.Hint)
	if err != nil {
		return FieldPlan{}, err
	}

	host := rewrite.Print(file.Fset, field.Type)
	return FieldPlan{
		Name:        field.Name,
		Doc:         marker.Filter(field.Doc),
		Tag:         field.Tag,
		Host:        field.Type,
		Bounded:     bounded,
		Transformed: host != rewrite.Print(file.Fset, bounded),
	}, nil
}

func (d *Dispatcher) planVariant(r *rewrite.Rewriter, file decl.File, variant decl.Variant) (VariantPlan, error) {
	vp := VariantPlan{
		Name: variant.Name,
		Kind: variant.Kind,
		Doc:  marker.Filter(variant.Doc),
	}

	switch variant.Kind {
	case decl.VariantUnit:
		if variant.Markers.Bound != nil {
			return VariantPlan{}, diag.UnusedBound(variant.Markers.Bound.Pos, "a unit variant")
		}
		return vp, nil

	case decl.VariantPositional:
		// The variant-level bound applies uniformly to every payload
		// position that needs one; the hint propagates the same way.
		for _, payload := range variant.Payload {
			var (
				bounded ast.Expr
				err     error
			)
			if r.RequiresBound(payload.Type) {
				if variant.Markers.Bound == nil {
					return VariantPlan{}, diag.MissingBound(payload.Pos, rewrite.Print(file.Fset, payload.Type))
				}
				vp.UsesBound = true
				bounded, err = r.Rewrite(payload.Type, variant.Markers.Bound, variant.Markers.Hint)
			} else {
				bounded, err = r.Rewrite(payload.Type, nil, variant.Markers.Hint)
			}
			if err != nil {
				return VariantPlan{}, err
			}

			host := rewrite.Print(file.Fset, payload.Type)
			transformed := host != rewrite.Print(file.Fset, bounded)
			if transformed {
				vp.Transformed = true
			}
			vp.Payload = append(vp.Payload, VariantFieldPlan{
				Name:        payload.Name,
				Host:        payload.Type,
				Bounded:     bounded,
				Transformed: transformed,
			})
		}
		if variant.Markers.Bound != nil && !vp.UsesBound {
			return VariantPlan{}, diag.UnusedBound(variant.Markers.Bound.Pos, "variant "+variant.Name+" (no payload position requires one)")
		}
		return vp, nil

	case decl.VariantNamed:
		// Named-field variants are not rewritten at the field level yet.
		// Payloads that would need a bound are rejected rather than let an
		// unbounded type slip into the bounded family, and a bound on the
		// variant itself has nothing to consume it.
		if variant.Markers.Bound != nil {
			return VariantPlan{}, diag.UnusedBound(variant.Markers.Bound.Pos, "a named-field variant")
		}
		for _, payload := range variant.Payload {
			if r.RequiresBound(payload.Type) {
				return VariantPlan{}, diag.MissingBound(payload.Pos, rewrite.Print(file.Fset, payload.Type))
			}
			vp.Payload = append(vp.Payload, VariantFieldPlan{
				Name:    payload.Name,
				Host:    payload.Type,
				Bounded: payload.Type,
			})
		}
		return vp, nil

	default:
		return VariantPlan{}, diag.UnsupportedShape(variant.Pos, "variant kind "+variant.Kind.String())
	}
}

// capacitySet deduplicates capacity markers by generated name while keeping
// first-use order stable.
type capacitySet struct {
	seen   map[string]struct{}
	bounds []marker.Bound
}

func (s *capacitySet) add(bound *marker.Bound) {
	if bound == nil {
		return
	}
	name := rewrite.CapacityName(bound)
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.bounds = append(s.bounds, *bound)
}

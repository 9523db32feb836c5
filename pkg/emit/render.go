package emit

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/derive"
	"github.com/allfeat/middsgen/pkg/dispatch"
	"github.com/allfeat/middsgen/pkg/rewrite"
)

func typeName(plan dispatch.Plan, runtime bool) string {
	if runtime {
		return rewrite.RuntimePrefix + plan.Name
	}
	return plan.Name
}

func variantTypeName(plan dispatch.Plan, variant dispatch.VariantPlan, runtime bool) string {
	return typeName(plan, runtime) + variant.Name
}

func fieldType(file decl.File, fp dispatch.FieldPlan, runtime bool) string {
	if runtime {
		return rewrite.Print(file.Fset, fp.Bounded)
	}
	return rewrite.Print(file.Fset, fp.Host)
}

func variantFieldType(file decl.File, fp dispatch.VariantFieldPlan, runtime bool) string {
	if runtime {
		return rewrite.Print(file.Fset, fp.Bounded)
	}
	return rewrite.Print(file.Fset, fp.Host)
}

func variantFieldName(fp dispatch.VariantFieldPlan, i int) string {
	if fp.Name != "" {
		return fp.Name
	}
	return fmt.Sprintf("V%d", i)
}

// renderDecl renders the type declaration of one plan for the selected
// representation: host spellings when runtime is false, Runtime names and
// bounded spellings when true.
func (e *Emitter) renderDecl(file decl.File, plan dispatch.Plan, runtime bool) string {
	var b strings.Builder
	writeDoc(&b, plan.Doc, "")

	name := typeName(plan, runtime)
	params := typeParamsDecl(file, plan.TypeParams)

	switch plan.Shape {
	case decl.RecordUnit:
		fmt.Fprintf(&b, "type %s%s struct{}", name, params)

	case decl.RecordPositional:
		fmt.Fprintf(&b, "type %s%s %s", name, params, fieldType(file, *plan.Payload, runtime))

	case decl.RecordNamed:
		fmt.Fprintf(&b, "type %s%s struct {\n", name, params)
		for _, fp := range plan.Fields {
			writeDoc(&b, fp.Doc, "\t")
			fmt.Fprintf(&b, "\t%s %s", fp.Name, fieldType(file, fp, runtime))
			if fp.Tag != nil {
				fmt.Fprintf(&b, " %s", fp.Tag.Value)
			}
			b.WriteString("\n")
		}
		b.WriteString("}")

	case decl.Sum:
		marker := sumMarkerMethod(name)
		fmt.Fprintf(&b, "type %s%s interface {\n\t%s()\n}", name, params, marker)
		for _, variant := range plan.Variants {
			b.WriteString("\n\n")
			writeDoc(&b, variant.Doc, "")
			vname := variantTypeName(plan, variant, runtime)
			if len(variant.Payload) == 0 {
				fmt.Fprintf(&b, "type %s%s struct{}", vname, params)
			} else {
				fmt.Fprintf(&b, "type %s%s struct {\n", vname, params)
				for i, fp := range variant.Payload {
					fmt.Fprintf(&b, "\t%s %s\n", variantFieldName(fp, i), variantFieldType(file, fp, runtime))
				}
				b.WriteString("}")
			}
			fmt.Fprintf(&b, "\n\nfunc (%s%s) %s() {}", vname, typeParamsUse(plan.TypeParams), marker)
		}
	}

	return b.String()
}

func sumMarkerMethod(name string) string {
	return "is" + name
}

// models builds the derive models for one plan. Sum plans yield one model
// per variant plus the sum dispatcher model; generic sums skip the
// dispatcher, whose package-level functions cannot carry the type
// parameters.
func (e *Emitter) models(file decl.File, plan dispatch.Plan, runtime bool) []*derive.Model {
	name := typeName(plan, runtime)
	use := typeParamsUse(plan.TypeParams)

	switch plan.Shape {
	case decl.RecordUnit:
		return []*derive.Model{{
			Type:     name + use,
			Receiver: derive.ReceiverFor(name),
			Kind:     derive.KindUnit,
		}}

	case decl.RecordPositional:
		return []*derive.Model{{
			Type:       name + use,
			Receiver:   derive.ReceiverFor(name),
			Kind:       derive.KindNewtype,
			Underlying: fieldType(file, *plan.Payload, runtime),
		}}

	case decl.RecordNamed:
		m := &derive.Model{
			Type:     name + use,
			Receiver: derive.ReceiverFor(name),
			Kind:     derive.KindStruct,
		}
		for _, fp := range plan.Fields {
			m.Fields = append(m.Fields, derive.Field{
				Name: fp.Name,
				Type: fieldType(file, fp, runtime),
			})
		}
		return []*derive.Model{m}

	case decl.Sum:
		var out []*derive.Model
		sum := &derive.Model{
			Type: name + use,
			Kind: derive.KindSum,
		}
		for i, variant := range plan.Variants {
			vname := variantTypeName(plan, variant, runtime)
			sum.Variants = append(sum.Variants, derive.Variant{
				Type:  vname + use,
				Index: i,
			})

			vm := &derive.Model{
				Type:     vname + use,
				Receiver: derive.ReceiverFor(vname),
			}
			if len(variant.Payload) == 0 {
				vm.Kind = derive.KindUnit
			} else {
				vm.Kind = derive.KindStruct
				for j, fp := range variant.Payload {
					vm.Fields = append(vm.Fields, derive.Field{
						Name: variantFieldName(fp, j),
						Type: variantFieldType(file, fp, runtime),
					})
				}
			}
			out = append(out, vm)
		}
		if plan.TypeParams == nil {
			out = append(out, sum)
		}
		return out
	}

	return nil
}

func writeDoc(b *strings.Builder, doc *ast.CommentGroup, indent string) {
	if doc == nil {
		return
	}
	for _, c := range doc.List {
		b.WriteString(indent)
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
}

// typeParamsDecl renders a declaration-site type parameter list,
// "[T any, U comparable]" style.
func typeParamsDecl(file decl.File, params *ast.FieldList) string {
	if params == nil || len(params.List) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params.List))
	for _, field := range params.List {
		names := make([]string, 0, len(field.Names))
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
		parts = append(parts, strings.Join(names, ", ")+" "+rewrite.Print(file.Fset, field.Type))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// typeParamsUse renders a use-site type argument list, "[T, U]" style.
func typeParamsUse(params *ast.FieldList) string {
	if params == nil || len(params.List) == 0 {
		return ""
	}
	var names []string
	for _, field := range params.List {
		for _, n := range field.Names {
			names = append(names, n.Name)
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

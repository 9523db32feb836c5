// Package schemaexport renders the host representation of annotated
// declarations as an OpenAPI 3 components document, giving web consumers a
// machine-readable description of the record types without importing Go.
package schemaexport

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/allfeat/middsgen/pkg/decl"
	"github.com/allfeat/middsgen/pkg/dispatch"
	"github.com/allfeat/middsgen/pkg/rewrite"
)

// Option configures an Exporter.
type Option func(*Exporter)

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(e *Exporter) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			e.title = trimmed
		}
	}
}

// WithVersion sets the document version.
func WithVersion(version string) Option {
	return func(e *Exporter) {
		if trimmed := strings.TrimSpace(version); trimmed != "" {
			e.version = trimmed
		}
	}
}

// Exporter builds components documents from emission plans.
type Exporter struct {
	title   string
	version string
}

// New constructs an Exporter applying any provided options.
func New(options ...Option) *Exporter {
	e := &Exporter{
		title:   "midds records",
		version: "1.0.0",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Export describes the host family of every plan as a named schema.
func (e *Exporter) Export(file decl.File, plans []dispatch.Plan) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   e.title,
			Version: e.version,
		},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	for _, plan := range plans {
		ref, err := e.schemaFor(file, plan)
		if err != nil {
			return nil, fmt.Errorf("schemaexport: %s: %w", plan.Name, err)
		}
		doc.Components.Schemas[plan.Name] = ref
	}
	return doc, nil
}

func (e *Exporter) schemaFor(file decl.File, plan dispatch.Plan) (*openapi3.SchemaRef, error) {
	description := docText(plan.Doc)

	switch plan.Shape {
	case decl.RecordUnit:
		schema := objectSchema(description)
		return openapi3.NewSchemaRef("", schema), nil

	case decl.RecordPositional:
		ref, err := typeSchema(file, plan.Payload.Host)
		if err != nil {
			return nil, err
		}
		if ref.Value != nil && description != "" {
			ref.Value.Description = description
		}
		return ref, nil

	case decl.RecordNamed:
		schema := objectSchema(description)
		for _, fp := range plan.Fields {
			ref, err := typeSchema(file, fp.Host)
			if err != nil {
				return nil, err
			}
			schema.Properties[fp.Name] = ref
			if _, optional := fp.Host.(*ast.StarExpr); !optional {
				schema.Required = append(schema.Required, fp.Name)
			}
		}
		return openapi3.NewSchemaRef("", schema), nil

	case decl.Sum:
		schema := &openapi3.Schema{Description: description}
		for _, variant := range plan.Variants {
			vs := objectSchema("")
			vs.Title = variant.Name
			for i, fp := range variant.Payload {
				name := fp.Name
				if name == "" {
					name = fmt.Sprintf("V%d", i)
				}
				ref, err := typeSchema(file, fp.Host)
				if err != nil {
					return nil, err
				}
				vs.Properties[name] = ref
				vs.Required = append(vs.Required, name)
			}
			schema.OneOf = append(schema.OneOf, openapi3.NewSchemaRef("", vs))
		}
		return openapi3.NewSchemaRef("", schema), nil
	}

	return nil, fmt.Errorf("unsupported shape %s", plan.Shape)
}

func objectSchema(description string) *openapi3.Schema {
	return &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeObject},
		Description: description,
		Properties:  openapi3.Schemas{},
	}
}

func typeSchema(file decl.File, expr ast.Expr) (*openapi3.SchemaRef, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return identSchema(t.Name), nil

	case *ast.SelectorExpr:
		return componentRef(t.Sel.Name), nil

	case *ast.StarExpr:
		ref, err := typeSchema(file, t.X)
		if err != nil {
			return nil, err
		}
		if ref.Value != nil {
			ref.Value.Nullable = true
		}
		return ref, nil

	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok && ident.Name == "byte" {
			schema := &openapi3.Schema{
				Type:   &openapi3.Types{openapi3.TypeString},
				Format: "byte",
			}
			return openapi3.NewSchemaRef("", schema), nil
		}
		items, err := typeSchema(file, t.Elt)
		if err != nil {
			return nil, err
		}
		schema := &openapi3.Schema{
			Type:  &openapi3.Types{openapi3.TypeArray},
			Items: items,
		}
		return openapi3.NewSchemaRef("", schema), nil

	default:
		return nil, fmt.Errorf("no schema mapping for %s", rewrite.Print(file.Fset, expr))
	}
}

func identSchema(name string) *openapi3.SchemaRef {
	simple := func(kind, format string) *openapi3.SchemaRef {
		return openapi3.NewSchemaRef("", &openapi3.Schema{
			Type:   &openapi3.Types{kind},
			Format: format,
		})
	}

	switch name {
	case "string":
		return simple(openapi3.TypeString, "")
	case "bool":
		return simple(openapi3.TypeBoolean, "")
	case "int8", "int16", "int32", "uint8", "uint16", "byte", "rune":
		return simple(openapi3.TypeInteger, "int32")
	case "int", "int64", "uint", "uint32", "uint64", "uintptr":
		return simple(openapi3.TypeInteger, "int64")
	case "float32":
		return simple(openapi3.TypeNumber, "float")
	case "float64":
		return simple(openapi3.TypeNumber, "double")
	default:
		return componentRef(name)
	}
}

func componentRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

package decl

import (
	"go/ast"
	"go/token"

	"github.com/allfeat/middsgen/pkg/diag"
	"github.com/allfeat/middsgen/pkg/marker"
)

// Scanner walks parsed Go files and collects the declarations annotated with
// the //midds:dual trigger. Declarations without the trigger are left alone;
// the generator shares input files with ordinary hand-written helpers.
type Scanner struct{}

// NewScanner returns a Scanner. It is stateless; one instance can scan many
// files.
func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanFile extracts every triggered declaration from file. The first invalid
// declaration aborts the scan.
func (s *Scanner) ScanFile(fset *token.FileSet, file *ast.File, name string) (File, error) {
	out := File{
		Name:    name,
		Package: file.Name.Name,
		Fset:    fset,
		Imports: file.Imports,
	}

	for _, raw := range file.Decls {
		gen, ok := raw.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			set, err := marker.Parse(fset, gen.Doc, ts.Doc)
			if err != nil {
				return File{}, err
			}
			if !set.Dual {
				continue
			}

			decl, err := s.scanType(fset, gen, ts, set)
			if err != nil {
				return File{}, err
			}
			out.Decls = append(out.Decls, decl)
		}
	}

	return out, nil
}

func (s *Scanner) scanType(fset *token.FileSet, gen *ast.GenDecl, ts *ast.TypeSpec, set marker.Set) (Decl, error) {
	pos := fset.Position(ts.Name.Pos())

	if ts.Assign.IsValid() {
		return Decl{}, diag.UnsupportedShape(pos, "type aliases")
	}

	// The declaration's doc can live on the GenDecl (single-spec form) or on
	// the TypeSpec (grouped form); prefer whichever is present.
	doc := ts.Doc
	if doc == nil {
		doc = gen.Doc
	}

	d := Decl{
		Name:       ts.Name.Name,
		Doc:        doc,
		TypeParams: ts.TypeParams,
		Markers:    set,
		Pos:        pos,
	}

	switch t := ts.Type.(type) {
	case *ast.StructType:
		if t.Fields == nil || len(t.Fields.List) == 0 {
			d.Shape = RecordUnit
			return d, nil
		}
		fields, err := s.scanStructFields(fset, t)
		if err != nil {
			return Decl{}, err
		}
		d.Shape = RecordNamed
		d.Fields = fields
		return d, nil

	case *ast.InterfaceType:
		variants, err := s.scanVariants(fset, t)
		if err != nil {
			return Decl{}, err
		}
		d.Shape = Sum
		d.Variants = variants
		return d, nil

	default:
		// Everything else is a newtype: the underlying type is the single
		// positional payload, and the declaration-level markers attach to it.
		d.Shape = RecordPositional
		d.Payload = &Field{
			Type:    ts.Type,
			Markers: set,
			Pos:     fset.Position(ts.Type.Pos()),
		}
		return d, nil
	}
}

func (s *Scanner) scanStructFields(fset *token.FileSet, t *ast.StructType) ([]Field, error) {
	var fields []Field
	for _, f := range t.Fields.List {
		if len(f.Names) == 0 {
			return nil, diag.UnsupportedShape(fset.Position(f.Type.Pos()), "embedded fields")
		}

		set, err := marker.Parse(fset, f.Doc)
		if err != nil {
			return nil, err
		}

		for _, name := range f.Names {
			fields = append(fields, Field{
				Name:    name.Name,
				Type:    f.Type,
				Tag:     f.Tag,
				Doc:     f.Doc,
				Markers: set,
				Pos:     fset.Position(name.Pos()),
			})
		}
	}
	return fields, nil
}

func (s *Scanner) scanVariants(fset *token.FileSet, t *ast.InterfaceType) ([]Variant, error) {
	var variants []Variant
	if t.Methods == nil {
		return nil, nil
	}
	for _, m := range t.Methods.List {
		if len(m.Names) == 0 {
			return nil, diag.UnsupportedShape(fset.Position(m.Type.Pos()), "embedded interfaces in sum types")
		}
		fn, ok := m.Type.(*ast.FuncType)
		if !ok {
			return nil, diag.UnsupportedShape(fset.Position(m.Type.Pos()), "non-method elements in sum types")
		}
		if fn.Results != nil && len(fn.Results.List) > 0 {
			return nil, diag.UnsupportedShape(fset.Position(fn.Results.Pos()), "variant methods with results")
		}

		set, err := marker.Parse(fset, m.Doc)
		if err != nil {
			return nil, err
		}

		variant := Variant{
			Name:    m.Names[0].Name,
			Kind:    VariantUnit,
			Doc:     m.Doc,
			Markers: set,
			Pos:     fset.Position(m.Names[0].Pos()),
		}

		if fn.Params != nil {
			for _, param := range fn.Params.List {
				if len(param.Names) == 0 {
					variant.Kind = VariantPositional
					variant.Payload = append(variant.Payload, Field{
						Type: param.Type,
						Pos:  fset.Position(param.Type.Pos()),
					})
					continue
				}
				variant.Kind = VariantNamed
				for _, name := range param.Names {
					variant.Payload = append(variant.Payload, Field{
						Name: name.Name,
						Type: param.Type,
						Pos:  fset.Position(name.Pos()),
					})
				}
			}
		}

		variants = append(variants, variant)
	}
	return variants, nil
}

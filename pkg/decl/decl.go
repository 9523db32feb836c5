package decl

import (
	"go/ast"
	"go/token"

	"github.com/allfeat/middsgen/pkg/marker"
)

// Shape classifies the top level of an annotated declaration.
type Shape int

const (
	// RecordNamed is a struct type with named fields.
	RecordNamed Shape = iota

	// RecordPositional is a defined type over a non-struct underlying type;
	// the underlying type is its single positional payload.
	RecordPositional

	// RecordUnit is an empty struct type.
	RecordUnit

	// Sum is an interface type whose methods declare the variants.
	Sum
)

func (s Shape) String() string {
	switch s {
	case RecordNamed:
		return "record-named"
	case RecordPositional:
		return "record-positional"
	case RecordUnit:
		return "record-unit"
	case Sum:
		return "sum-type"
	default:
		return "unknown"
	}
}

// VariantKind classifies a sum-type variant.
type VariantKind int

const (
	// VariantUnit has no payload (a niladic variant method).
	VariantUnit VariantKind = iota

	// VariantPositional carries unnamed payload positions.
	VariantPositional

	// VariantNamed carries named payload fields.
	VariantNamed
)

func (k VariantKind) String() string {
	switch k {
	case VariantUnit:
		return "unit"
	case VariantPositional:
		return "positional"
	case VariantNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Field is a single record field or variant payload position. Name is empty
// for positional payloads. Doc holds the original comment group including
// directives; Markers holds the directives already parsed out of it.
type Field struct {
	Name    string
	Type    ast.Expr
	Tag     *ast.BasicLit
	Doc     *ast.CommentGroup
	Markers marker.Set
	Pos     token.Position
}

// Variant is one alternative of a sum type. Markers apply uniformly to every
// payload position.
type Variant struct {
	Name    string
	Kind    VariantKind
	Payload []Field
	Doc     *ast.CommentGroup
	Markers marker.Set
	Pos     token.Position
}

// Decl is one annotated type declaration, normalised so the dispatcher never
// touches go/ast node kinds directly. Exactly one of Fields, Payload or
// Variants is populated, according to Shape.
type Decl struct {
	Name       string
	Shape      Shape
	Doc        *ast.CommentGroup
	TypeParams *ast.FieldList
	Fields     []Field
	Payload    *Field
	Variants   []Variant
	Markers    marker.Set
	Pos        token.Position
}

// File couples the declarations scanned from one source file with the
// position information needed for diagnostics and emission.
type File struct {
	Name    string
	Package string
	Fset    *token.FileSet
	Imports []*ast.ImportSpec
	Decls   []Decl
}

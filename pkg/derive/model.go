package derive

import (
	"strings"
	"unicode"
)

// Model kinds. Each emitted concrete type maps to exactly one.
const (
	KindStruct  = "struct"
	KindNewtype = "newtype"
	KindUnit    = "unit"
	KindSum     = "sum"
)

// Model describes one emitted type for method rendering. Struct, newtype
// and unit models produce methods; sum models produce package-level
// variant dispatch functions.
type Model struct {
	Type       string
	Receiver   string
	Kind       string
	Underlying string
	Fields     []Field
	Variants   []Variant
}

// Field is one struct field the derived methods walk.
type Field struct {
	Name string
	Type string
}

// Variant is one concrete variant type of a sum model, with its stable
// wire tag.
type Variant struct {
	Type  string
	Index int
}

// ReceiverFor picks the conventional receiver identifier for a type name.
func ReceiverFor(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return strings.ToLower(string(r))
		}
	}
	return "v"
}

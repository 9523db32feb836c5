package diag

import (
	"fmt"
	"go/token"
)

// Kind identifies a diagnostic category. The set is closed and its string
// forms are part of the user-visible contract: tooling downstream matches on
// them, so renaming a kind is a breaking change.
type Kind int

const (
	// KindUnsupportedShape reports a declaration that is neither a record
	// nor a sum type.
	KindUnsupportedShape Kind = iota

	// KindMissingBound reports a field or variant position whose type
	// requires a capacity bound but carries none.
	KindMissingBound

	// KindInvalidBoundSyntax reports a malformed bound(N) directive.
	KindInvalidBoundSyntax

	// KindUnsupportedBoundType reports a type position the bounded family
	// cannot represent: a bound(N) directive attached to a type that has no
	// bounded counterpart, a bound(N) no position consumes, or a type the
	// wire codec does not encode.
	KindUnsupportedBoundType

	// KindConflictingAttributes reports duplicated or contradictory
	// directives on the same position.
	KindConflictingAttributes
)

// String returns the stable identifier of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnsupportedShape:
		return "unsupported data shape"
	case KindMissingBound:
		return "missing bound"
	case KindInvalidBoundSyntax:
		return "invalid bound syntax"
	case KindUnsupportedBoundType:
		return "unsupported bound type"
	case KindConflictingAttributes:
		return "conflicting attributes"
	default:
		return fmt.Sprintf("diag.Kind(%d)", int(k))
	}
}

// Error is the single diagnostic sum returned by every pipeline stage. It
// carries the position of the offending token so editors can jump straight
// to the user's source.
type Error struct {
	Kind Kind
	Pos  token.Position
	Msg  string
}

// Error renders the diagnostic in file:line:col form.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// UnsupportedShape builds a diagnostic for declarations outside the
// record/sum family.
func UnsupportedShape(pos token.Position, attempted string) *Error {
	return &Error{
		Kind: KindUnsupportedShape,
		Pos:  pos,
		Msg:  fmt.Sprintf("middsgen does not support %s; only records and sum types are supported", attempted),
	}
}

// MissingBound builds a diagnostic for a bounded-requiring type with no
// bound(N) directive.
func MissingBound(pos token.Position, typeExpr string) *Error {
	return &Error{
		Kind: KindMissingBound,
		Pos:  pos,
		Msg:  fmt.Sprintf("type %s requires a bound(N) directive to fix its maximum size in bounded mode", typeExpr),
	}
}

// InvalidBoundSyntax builds a diagnostic for malformed directives.
func InvalidBoundSyntax(pos token.Position, reason string) *Error {
	return &Error{
		Kind: KindInvalidBoundSyntax,
		Pos:  pos,
		Msg:  fmt.Sprintf("%s; expected bound(N) where N is a positive integer literal", reason),
	}
}

// UnsupportedBoundType builds a diagnostic for a bound placed on a type that
// has no bounded counterpart.
func UnsupportedBoundType(pos token.Position, typeExpr string) *Error {
	return &Error{
		Kind: KindUnsupportedBoundType,
		Pos:  pos,
		Msg:  fmt.Sprintf("type %s does not take a bound(N) directive; only string, []byte, []T and optionals of those do", typeExpr),
	}
}

// UnencodableType builds a diagnostic for a type the bounded family's wire
// codec cannot represent at all.
func UnencodableType(pos token.Position, typeExpr string) *Error {
	return &Error{
		Kind: KindUnsupportedBoundType,
		Pos:  pos,
		Msg:  fmt.Sprintf("type %s has no bounded-family encoding; the wire codec does not encode floating-point values", typeExpr),
	}
}

// UnusedBound builds a diagnostic for a bound(N) directive that no type
// position consumes.
func UnusedBound(pos token.Position, subject string) *Error {
	return &Error{
		Kind: KindUnsupportedBoundType,
		Pos:  pos,
		Msg:  fmt.Sprintf("bound(N) on %s is never consumed; only string, []byte, []T and optionals of those take a bound", subject),
	}
}

// ConflictingAttributes builds a diagnostic for repeated or contradictory
// directives.
func ConflictingAttributes(pos token.Position, conflict string) *Error {
	return &Error{
		Kind: KindConflictingAttributes,
		Pos:  pos,
		Msg:  conflict,
	}
}

package marker

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"github.com/allfeat/middsgen/pkg/diag"
)

// Namespace is the comment prefix the generator claims. Every directive is a
// line comment of the form //midds:<directive>; anything else under the
// prefix is rejected so typos never silently pass through.
const Namespace = "//midds:"

const (
	directiveDual = "dual"
	directiveName = "bound"
	hintName      = "as_runtime_type"
)

var (
	boundRe = regexp.MustCompile(`^bound\(\s*([0-9][0-9_]*)\s*\)$`)
	hintRe  = regexp.MustCompile(`^as_runtime_type\(\s*path\s*=\s*"([A-Za-z_][A-Za-z0-9_]*)"\s*\)$`)
)

// Bound is a parsed bound(N) directive. Literal keeps the user's original
// digit token so capacity expressions in generated code point back at it.
type Bound struct {
	Value   uint32
	Literal string
	Pos     token.Position
}

// RuntimeHint is a parsed as_runtime_type directive. Path is empty for the
// unqualified form; otherwise it names a sibling package in the emitter's
// output scope.
type RuntimeHint struct {
	Path string
	Pos  token.Position
}

// Set holds every recognised directive found on one position.
type Set struct {
	// Dual is true when the position carries the //midds:dual trigger.
	Dual    bool
	DualPos token.Position

	Bound *Bound
	Hint  *RuntimeHint
}

// Parse scans the supplied comment groups for midds: directives and
// validates them. Groups may be nil; the first error wins.
func Parse(fset *token.FileSet, groups ...*ast.CommentGroup) (Set, error) {
	var set Set
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			if !strings.HasPrefix(comment.Text, Namespace) {
				continue
			}
			directive := strings.TrimRight(comment.Text[len(Namespace):], " \t")
			pos := fset.Position(comment.Slash)
			if err := set.apply(directive, pos); err != nil {
				return Set{}, err
			}
		}
	}
	return set, nil
}

func (s *Set) apply(directive string, pos token.Position) error {
	switch {
	case directive == directiveDual:
		s.Dual = true
		s.DualPos = pos
		return nil

	case strings.HasPrefix(directive, directiveName):
		bound, err := parseBound(directive, pos)
		if err != nil {
			return err
		}
		if s.Bound != nil {
			return diag.ConflictingAttributes(bound.Pos, "multiple bound(N) directives on the same position")
		}
		s.Bound = bound
		return nil

	case strings.HasPrefix(directive, hintName):
		hint, err := parseHint(directive, pos)
		if err != nil {
			return err
		}
		if s.Hint != nil {
			return diag.ConflictingAttributes(hint.Pos, "multiple as_runtime_type directives on the same position")
		}
		s.Hint = hint
		return nil

	default:
		return diag.InvalidBoundSyntax(pos, "unrecognized directive "+strconv.Quote(directive))
	}
}

func parseBound(directive string, pos token.Position) (*Bound, error) {
	match := boundRe.FindStringSubmatch(directive)
	if match == nil {
		return nil, diag.InvalidBoundSyntax(pos, "malformed bound directive "+strconv.Quote(directive))
	}
	literal := match[1]
	litPos := advance(pos, strings.Index(directive, literal)+len(Namespace))

	value, err := strconv.ParseUint(strings.ReplaceAll(literal, "_", ""), 10, 32)
	if err != nil {
		return nil, diag.InvalidBoundSyntax(litPos, "bound "+literal+" does not fit in 32 bits")
	}
	if value == 0 {
		return nil, diag.InvalidBoundSyntax(litPos, "bound must be greater than zero")
	}

	return &Bound{Value: uint32(value), Literal: literal, Pos: litPos}, nil
}

func parseHint(directive string, pos token.Position) (*RuntimeHint, error) {
	if directive == hintName {
		return &RuntimeHint{Pos: pos}, nil
	}
	match := hintRe.FindStringSubmatch(directive)
	if match == nil {
		return nil, diag.InvalidBoundSyntax(pos, `malformed as_runtime_type directive; expected as_runtime_type or as_runtime_type(path = "pkg")`)
	}
	return &RuntimeHint{Path: match[1], Pos: pos}, nil
}

// advance offsets a position within a single comment line.
func advance(pos token.Position, byColumns int) token.Position {
	pos.Column += byColumns
	pos.Offset += byColumns
	return pos
}

// Filter returns doc with every midds: directive removed, preserving the
// order and content of all other comment lines. It returns nil when nothing
// is left so emitted declarations do not carry empty comment groups.
func Filter(doc *ast.CommentGroup) *ast.CommentGroup {
	if doc == nil {
		return nil
	}
	kept := make([]*ast.Comment, 0, len(doc.List))
	for _, comment := range doc.List {
		if strings.HasPrefix(comment.Text, Namespace) {
			continue
		}
		kept = append(kept, comment)
	}
	if len(kept) == 0 {
		return nil
	}
	return &ast.CommentGroup{List: kept}
}

// Contains reports whether the group carries at least one midds: directive.
func Contains(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		if strings.HasPrefix(comment.Text, Namespace) {
			return true
		}
	}
	return false
}

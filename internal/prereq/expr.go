package prereq

import (
	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

// Resolver maps informal or canonical course codes to canonical ids.
// Satisfied by catalog.Catalog.
type Resolver interface {
	Resolve(code string) (string, bool)
}

// Expr is one node of a compiled prerequisite expression. The variant set
// is closed: evaluation is an exhaustive switch, so a new rule kind cannot
// be added without an explicit decision here.
type Expr interface {
	isExpr()
}

// Ref requires a single course completed at or above Min.
type Ref struct {
	Course string
	Min    model.Grade
}

// AllOf requires every child expression to hold.
type AllOf struct {
	Kids []Expr
}

// OneOf requires at least one child expression to hold.
type OneOf struct {
	Kids []Expr
}

// Coreq requires every listed course to be completed, or scheduled in the
// same term as the dependent course.
type Coreq struct {
	Courses []string
}

func (Ref) isExpr()   {}
func (AllOf) isExpr() {}
func (OneOf) isExpr() {}
func (Coreq) isExpr() {}

// compileNode turns the loosely-typed wire shape into a closed expression,
// resolving aliases to canonical ids and rejecting malformed shapes. This
// runs once at snapshot build time.
func compileNode(cat Resolver, dest string, node model.RuleNode, defaultMin model.Grade) (Expr, error) {
	if !node.Kind.Valid() {
		return nil, apperrors.NewConfigError("rule for %s: unknown kind %q", dest, node.Kind)
	}

	min := node.MinGrade
	if min == "" {
		min = defaultMin
	}
	if !min.Valid() {
		return nil, apperrors.NewConfigError("rule for %s: invalid min grade %q", dest, node.MinGrade)
	}

	resolved := make([]string, 0, len(node.Courses))
	for _, code := range node.Courses {
		id, ok := cat.Resolve(code)
		if !ok {
			return nil, apperrors.NewConfigError("rule for %s references unknown course %q", dest, code)
		}
		resolved = append(resolved, id)
	}

	switch node.Kind {
	case model.RuleCoreq:
		if len(node.Children) > 0 {
			return nil, apperrors.NewConfigError("rule for %s: coreq cannot nest", dest)
		}
		if len(resolved) == 0 {
			return nil, apperrors.NewConfigError("rule for %s: empty coreq", dest)
		}
		return Coreq{Courses: resolved}, nil

	case model.RuleAllOf, model.RuleOneOf:
		kids := make([]Expr, 0, len(resolved)+len(node.Children))
		for _, id := range resolved {
			kids = append(kids, Ref{Course: id, Min: min})
		}
		for _, child := range node.Children {
			sub, err := compileNode(cat, dest, child, defaultMin)
			if err != nil {
				return nil, err
			}
			kids = append(kids, sub)
		}
		if len(kids) == 0 {
			return nil, apperrors.NewConfigError("rule for %s: empty %s expression", dest, node.Kind)
		}
		if node.Kind == model.RuleAllOf {
			return AllOf{Kids: kids}, nil
		}
		return OneOf{Kids: kids}, nil

	default:
		return nil, apperrors.NewConfigError("rule for %s: unhandled kind %q", dest, node.Kind)
	}
}

// refs collects every course id referenced by an expression. hardOnly
// skips Coreq edges, which may legitimately be mutual.
// coreqRefs collects the courses named by corequisite clauses anywhere in
// the tree.
func coreqRefs(e Expr) []string {
	switch n := e.(type) {
	case Coreq:
		return append([]string(nil), n.Courses...)
	case AllOf:
		var out []string
		for _, k := range n.Kids {
			out = append(out, coreqRefs(k)...)
		}
		return out
	case OneOf:
		var out []string
		for _, k := range n.Kids {
			out = append(out, coreqRefs(k)...)
		}
		return out
	default:
		return nil
	}
}

func refs(e Expr, hardOnly bool) []string {
	switch n := e.(type) {
	case Ref:
		return []string{n.Course}
	case Coreq:
		if hardOnly {
			return nil
		}
		return n.Courses
	case AllOf:
		var out []string
		for _, k := range n.Kids {
			out = append(out, refs(k, hardOnly)...)
		}
		return out
	case OneOf:
		var out []string
		for _, k := range n.Kids {
			out = append(out, refs(k, hardOnly)...)
		}
		return out
	default:
		return nil
	}
}

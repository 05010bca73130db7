// Package prereq builds and evaluates the prerequisite graph. The graph is
// compiled once per snapshot; a cycle or a dangling course reference is a
// configuration error that rejects the whole snapshot.
package prereq

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

// Graph holds the compiled prerequisite rule set for one snapshot.
type Graph struct {
	rules      map[string]Expr
	direct     map[string][]string
	dependents map[string][]string
}

// Build compiles the rule rows into a closed expression tree per course and
// runs cycle detection over the hard (non-coreq) edges. Mutual corequisites
// are legal; a hard prerequisite cycle is not.
func Build(cat Resolver, rules []model.PrereqRule, defaultMin model.Grade) (*Graph, error) {
	if defaultMin == "" {
		defaultMin = model.GradeDMinus
	}

	g := &Graph{
		rules:      make(map[string]Expr, len(rules)),
		direct:     make(map[string][]string, len(rules)),
		dependents: make(map[string][]string),
	}

	for _, rule := range rules {
		dest, ok := cat.Resolve(rule.CourseID)
		if !ok {
			return nil, apperrors.NewConfigError("rule targets unknown course %q", rule.CourseID)
		}
		if _, dup := g.rules[dest]; dup {
			return nil, apperrors.NewConfigError("duplicate rule set for course %s", dest)
		}
		expr, err := compileNode(cat, dest, rule.Root, defaultMin)
		if err != nil {
			return nil, err
		}
		g.rules[dest] = expr
		g.direct[dest] = dedupeSorted(refs(expr, false))
	}

	for dest, prereqs := range g.direct {
		for _, p := range prereqs {
			g.dependents[p] = append(g.dependents[p], dest)
		}
	}
	for p := range g.dependents {
		sort.Strings(g.dependents[p])
	}

	if err := g.detectCycle(); err != nil {
		return nil, err
	}
	return g, nil
}

// DirectPrereqs returns the deduplicated course ids referenced anywhere in
// the rule tree of courseID, ascending.
func (g *Graph) DirectPrereqs(courseID string) []string {
	return g.direct[courseID]
}

// Dependents returns the courses whose rules reference courseID, ascending.
func (g *Graph) Dependents(courseID string) []string {
	return g.dependents[courseID]
}

// CoreqMembers returns the deduplicated course ids named by corequisite
// clauses anywhere in courseID's rule tree, ascending. Empty when the
// course has no corequisites.
func (g *Graph) CoreqMembers(courseID string) []string {
	expr, ok := g.rules[courseID]
	if !ok {
		return nil
	}
	return dedupeSorted(coreqRefs(expr))
}

// Rule returns the compiled expression for a course, nil if the course has
// no prerequisites.
func (g *Graph) Rule(courseID string) Expr {
	return g.rules[courseID]
}

// detectCycle runs a three-color DFS over hard prerequisite edges,
// visiting course ids in ascending order so a given rule set always fails
// with the same cycle report.
func (g *Graph) detectCycle() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.rules))

	roots := make([]string, 0, len(g.rules))
	for id := range g.rules {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	var stack []string
	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		stack = append(stack, id)

		if expr, ok := g.rules[id]; ok {
			for _, next := range dedupeSorted(refs(expr, true)) {
				switch color[next] {
				case gray:
					// Trim the stack to the cycle entry point for the report.
					i := 0
					for ; i < len(stack); i++ {
						if stack[i] == next {
							break
						}
					}
					cycle := append(append([]string{}, stack[i:]...), next)
					return apperrors.NewConfigError("prerequisite cycle: %s", strings.Join(cycle, " -> "))
				case white:
					if err := visit(next); err != nil {
						return err
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range roots {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func dedupeSorted(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// String renders a compiled expression for diagnostics.
func String(e Expr) string {
	switch n := e.(type) {
	case Ref:
		return fmt.Sprintf("%s>=%s", n.Course, n.Min)
	case Coreq:
		return "coreq(" + strings.Join(n.Courses, ",") + ")"
	case AllOf:
		parts := make([]string, len(n.Kids))
		for i, k := range n.Kids {
			parts[i] = String(k)
		}
		return "all(" + strings.Join(parts, " ") + ")"
	case OneOf:
		parts := make([]string, len(n.Kids))
		for i, k := range n.Kids {
			parts[i] = String(k)
		}
		return "one(" + strings.Join(parts, " ") + ")"
	default:
		return "?"
	}
}

package prereq

import "github.com/campusflow/compass-backend/internal/model"

// Record is one course a student has finished or is assumed to finish
// before the term under evaluation. Planned records come from courses the
// scheduler has already placed; they carry no grade and satisfy any
// threshold.
type Record struct {
	Grade   model.Grade
	Planned bool
}

// CompletedRecords converts a transcript's completed map into eligibility
// records.
func CompletedRecords(completed map[string]model.CourseResult) map[string]Record {
	out := make(map[string]Record, len(completed))
	for id, res := range completed {
		out[id] = Record{Grade: res.Grade}
	}
	return out
}

// Eligible reports whether courseID's prerequisite rule holds given the
// records completed strictly before the term under evaluation and the set
// of courses taken concurrently in that term. A course with no rule is
// always eligible.
func (g *Graph) Eligible(courseID string, records map[string]Record, sameTerm map[string]bool) bool {
	expr, ok := g.rules[courseID]
	if !ok {
		return true
	}
	return eval(expr, records, sameTerm)
}

// eval is an exhaustive walk over the closed expression set.
func eval(e Expr, records map[string]Record, sameTerm map[string]bool) bool {
	switch n := e.(type) {
	case Ref:
		rec, ok := records[n.Course]
		if !ok {
			return false
		}
		if rec.Planned {
			return true
		}
		return rec.Grade.AtLeast(n.Min)

	case Coreq:
		for _, id := range n.Courses {
			rec, done := records[id]
			concurrent := sameTerm[id]
			if !concurrent && !done {
				return false
			}
			// A completed coreq still fails on an incomplete grade.
			if done && !rec.Planned && rec.Grade.Incomplete() && !concurrent {
				return false
			}
		}
		return true

	case AllOf:
		for _, k := range n.Kids {
			if !eval(k, records, sameTerm) {
				return false
			}
		}
		return true

	case OneOf:
		for _, k := range n.Kids {
			if eval(k, records, sameTerm) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

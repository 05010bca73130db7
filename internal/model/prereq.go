package model

// RuleKind enumerates the prerequisite rule variants.
type RuleKind string

const (
	RuleAllOf RuleKind = "allof"
	RuleOneOf RuleKind = "oneof"
	RuleCoreq RuleKind = "coreq"
)

// Valid reports whether k is a known rule kind.
func (k RuleKind) Valid() bool {
	return k == RuleAllOf || k == RuleOneOf || k == RuleCoreq
}

// RuleNode is the loosely-typed wire shape of one prerequisite expression
// node as stored by the ingest boundary. It is compiled into a closed
// expression tree at snapshot build time; malformed shapes are rejected
// there, never during evaluation.
type RuleNode struct {
	Kind     RuleKind   `json:"kind"`
	Courses  []string   `json:"courses,omitempty"`
	Children []RuleNode `json:"children,omitempty"`
	MinGrade Grade      `json:"min_grade,omitempty"`
}

// PrereqRule is the full rule set for one destination course.
type PrereqRule struct {
	CourseID string   `json:"course_id"`
	Root     RuleNode `json:"rule"`
}

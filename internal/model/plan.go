package model

import "github.com/google/uuid"

// AdvisorySeverity grades how serious an advisory is.
type AdvisorySeverity string

const (
	SeverityInfo    AdvisorySeverity = "info"
	SeverityWarning AdvisorySeverity = "warning"
	SeverityFatal   AdvisorySeverity = "fatal"
)

// AdvisoryKind identifies the class of diagnostic attached to a plan.
type AdvisoryKind string

const (
	AdvisoryTrackUndeclared AdvisoryKind = "TRACK_UNDECLARED"
	AdvisoryOffTarget       AdvisoryKind = "OFF_TARGET"
	AdvisoryStuck           AdvisoryKind = "STUCK"
	AdvisoryOverload        AdvisoryKind = "OVERLOAD"
	AdvisoryPrereqViolation AdvisoryKind = "PREREQ_VIOLATION"
	AdvisoryDuplicateCourse AdvisoryKind = "DUPLICATE_COURSE"
	AdvisoryUnknownCourse   AdvisoryKind = "UNKNOWN_COURSE"
)

// Advisory is a non-fatal diagnostic attached to a Plan. Advisories are
// data, never errors: the scheduler always returns a best-effort plan
// together with the complete advisory list.
type Advisory struct {
	Kind     AdvisoryKind     `json:"kind"`
	Message  string           `json:"message"`
	Severity AdvisorySeverity `json:"severity"`
}

// TermAssignment is the set of courses placed in one term.
type TermAssignment struct {
	Term    Term     `json:"term"`
	Courses []string `json:"courses"`
	Credits int      `json:"credits"`
}

// Plan is an ordered multi-term schedule. A course id appears at most once
// across all term assignments.
type Plan struct {
	ID              uuid.UUID        `json:"id"`
	SnapshotVersion int64            `json:"snapshot_version"`
	Terms           []TermAssignment `json:"terms"`
	TotalCredits    int              `json:"total_credits"`
}

// Courses returns every scheduled course id in term order.
func (p Plan) Courses() []string {
	var out []string
	for _, ta := range p.Terms {
		out = append(out, ta.Courses...)
	}
	return out
}

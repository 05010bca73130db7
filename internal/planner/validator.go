package planner

import (
	"fmt"
	"sort"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/prereq"
)

// Validate checks a candidate term assignment — scheduler output or an
// externally proposed plan — against the snapshot's graph and policy.
// Violations come back as advisories so callers can render all of them at
// once instead of failing on the first.
func Validate(snap *catalog.Snapshot, profile model.StudentProfile, terms []model.TermAssignment) []model.Advisory {
	var advisories []model.Advisory

	records := prereq.CompletedRecords(profile.Completed)
	for _, id := range profile.InProgress {
		records[id] = prereq.Record{Planned: true}
	}

	seen := make(map[string]bool)
	for id := range profile.Completed {
		seen[id] = true
	}
	for _, id := range profile.InProgress {
		seen[id] = true
	}

	ordered := append([]model.TermAssignment(nil), terms...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Term.Before(ordered[j].Term)
	})

	for _, ta := range ordered {
		sameTerm := make(map[string]bool, len(ta.Courses))
		credits := 0

		for _, id := range ta.Courses {
			course, known := snap.Catalog.Course(id)
			if !known {
				advisories = append(advisories, model.Advisory{
					Kind:     model.AdvisoryUnknownCourse,
					Severity: model.SeverityFatal,
					Message:  fmt.Sprintf("%s: unknown course %s", ta.Term.Code(), id),
				})
				continue
			}
			if seen[id] || sameTerm[id] {
				advisories = append(advisories, model.Advisory{
					Kind:     model.AdvisoryDuplicateCourse,
					Severity: model.SeverityFatal,
					Message:  fmt.Sprintf("%s: course %s is already taken or scheduled", ta.Term.Code(), id),
				})
				continue
			}
			sameTerm[id] = true
			credits += course.Credits
		}

		for _, id := range ta.Courses {
			if !sameTerm[id] {
				continue
			}
			if !snap.Graph.Eligible(id, records, sameTerm) {
				advisories = append(advisories, model.Advisory{
					Kind:     model.AdvisoryPrereqViolation,
					Severity: model.SeverityFatal,
					Message:  fmt.Sprintf("%s: prerequisites not satisfied for %s", ta.Term.Code(), id),
				})
			}
		}

		if credits > snap.Policy.MaxCreditsPerTerm {
			severity := model.SeverityWarning
			msg := fmt.Sprintf("%s: %d credits exceeds the %d-credit ceiling",
				ta.Term.Code(), credits, snap.Policy.MaxCreditsPerTerm)
			if snap.Policy.OverloadRequiresApproval {
				msg += " and requires overload approval"
			}
			advisories = append(advisories, model.Advisory{
				Kind:     model.AdvisoryOverload,
				Severity: severity,
				Message:  msg,
			})
		}

		// Courses validated in this term satisfy later terms' prerequisites.
		for id := range sameTerm {
			records[id] = prereq.Record{Planned: true}
			seen[id] = true
		}
	}

	return advisories
}

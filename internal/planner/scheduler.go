// Package planner contains the multi-term scheduler and the plan
// validator. Both are pure functions over an immutable snapshot: same
// inputs always produce byte-identical output, so any number of requests
// may run concurrently without locking.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/prereq"
	"github.com/campusflow/compass-backend/internal/track"
)

const (
	// maxHorizonTerms bounds how far the scheduler will look ahead when no
	// target graduation term is given.
	maxHorizonTerms = 30

	// maxEmptyTerms is how many consecutive terms may pass with zero
	// selections (season-blocked outstanding work) before the plan is
	// declared stuck.
	maxEmptyTerms = 3
)

// slotKind says which requirement bucket a candidate course would fill.
type slotKind int

const (
	slotCore slotKind = iota
	slotGroup
	slotElective
)

type slot struct {
	kind  slotKind
	group string
}

// requirements is the outstanding requirement set at one point in the
// schedule: core courses still needed, open track-group slots, and
// remaining elective credits.
type requirements struct {
	core         []string
	groupNeed    map[string]int
	groupOpen    map[string][]string
	groupOrder   []string
	electiveNeed int
	electiveOpen []string
}

func (r requirements) empty() bool {
	if len(r.core) > 0 || r.electiveNeed > 0 {
		return false
	}
	for _, n := range r.groupNeed {
		if n > 0 {
			return false
		}
	}
	return true
}

// candidates returns every outstanding course attributed to exactly one
// bucket: core first, then the earliest unsatisfied group listing it, then
// the elective pool. Result is sorted ascending by course id.
func (r requirements) candidates() ([]string, map[string]slot) {
	attr := make(map[string]slot)
	for _, id := range r.core {
		attr[id] = slot{kind: slotCore}
	}
	for _, key := range r.groupOrder {
		for _, id := range r.groupOpen[key] {
			if _, taken := attr[id]; !taken {
				attr[id] = slot{kind: slotGroup, group: key}
			}
		}
	}
	if r.electiveNeed > 0 {
		for _, id := range r.electiveOpen {
			if _, taken := attr[id]; !taken {
				attr[id] = slot{kind: slotElective}
			}
		}
	}
	ids := make([]string, 0, len(attr))
	for id := range attr {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, attr
}

// describe summarizes the outstanding set for advisory messages.
func (r requirements) describe() string {
	var parts []string
	if len(r.core) > 0 {
		parts = append(parts, "core: "+strings.Join(r.core, ", "))
	}
	for _, key := range r.groupOrder {
		if n := r.groupNeed[key]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d course(s)", key, n))
		}
	}
	if r.electiveNeed > 0 {
		parts = append(parts, fmt.Sprintf("electives: %d credit(s)", r.electiveNeed))
	}
	return strings.Join(parts, "; ")
}

// Scheduler computes degree plans against one immutable snapshot.
type Scheduler struct {
	snap *catalog.Snapshot
}

// New returns a scheduler bound to a snapshot.
func New(snap *catalog.Snapshot) *Scheduler {
	return &Scheduler{snap: snap}
}

// ComputePlan produces a best-effort multi-term plan plus the complete
// advisory list. The profile must already be normalized (see
// NormalizeProfile). Advisories are data: even an unreachable target
// yields a plan with whatever progress is schedulable.
func (s *Scheduler) ComputePlan(profile model.StudentProfile, cons model.Constraints) (model.Plan, []model.Advisory) {
	var advisories []model.Advisory

	policy := s.snap.Policy
	records := prereq.CompletedRecords(profile.Completed)

	// done marks requirement-satisfying courses: passes plus everything
	// assumed or scheduled. Failed and withdrawn courses must be retaken.
	done := make(map[string]bool, len(profile.Completed))
	for id, res := range profile.Completed {
		if !res.Grade.Incomplete() {
			done[id] = true
		}
	}

	// In-progress courses are assumed to complete in the student's current
	// term, so they satisfy prerequisites from the first planned term on.
	for _, id := range profile.InProgress {
		records[id] = prereq.Record{Planned: true}
		done[id] = true
	}

	advisories = append(advisories, s.trackAdvisories(profile, done)...)

	summerOK := cons.SummerOK || policy.SummerAllowedDefault
	ceiling, overloadAdv := creditCeiling(policy, cons)
	if overloadAdv != nil {
		advisories = append(advisories, *overloadAdv)
	}

	// Planning starts at the current term unless it is already occupied by
	// in-progress enrollment.
	term := profile.StartTerm
	if len(profile.InProgress) > 0 {
		term = term.Next(summerOK)
	}

	plan := model.Plan{SnapshotVersion: s.snap.Version}
	emptyStreak := 0

	for planned := 0; planned < maxHorizonTerms; planned++ {
		outstanding := s.outstanding(profile, done)
		if outstanding.empty() {
			break
		}

		if !cons.TargetGradTerm.IsZero() && cons.TargetGradTerm.Before(term) {
			advisories = append(advisories, model.Advisory{
				Kind:     model.AdvisoryOffTarget,
				Severity: model.SeverityWarning,
				Message: fmt.Sprintf("will not graduate by %s; remaining: %s",
					cons.TargetGradTerm.Code(), outstanding.describe()),
			})
			break
		}

		if term.Season == model.SeasonSummer && !summerOK {
			term = term.Next(summerOK)
			continue
		}

		selected := s.fillTerm(term, outstanding, records, ceiling)

		if len(selected) == 0 {
			stuck := s.stuckCourses(outstanding, records)
			if len(stuck) > 0 {
				advisories = append(advisories, model.Advisory{
					Kind:     model.AdvisoryStuck,
					Severity: model.SeverityFatal,
					Message:  "cannot make progress; unsatisfiable prerequisites for: " + strings.Join(stuck, ", "),
				})
				break
			}
			emptyStreak++
			if emptyStreak >= maxEmptyTerms {
				ids, _ := outstanding.candidates()
				advisories = append(advisories, model.Advisory{
					Kind:     model.AdvisoryStuck,
					Severity: model.SeverityFatal,
					Message:  "no offered term accepts the remaining courses: " + strings.Join(ids, ", "),
				})
				break
			}
			term = term.Next(summerOK)
			continue
		}
		emptyStreak = 0

		credits := 0
		for _, id := range selected {
			credits += s.snap.Catalog.Credits(id)
			records[id] = prereq.Record{Planned: true}
			done[id] = true
		}
		plan.Terms = append(plan.Terms, model.TermAssignment{
			Term:    term,
			Courses: selected,
			Credits: credits,
		})
		plan.TotalCredits += credits

		term = term.Next(summerOK)
	}

	// Horizon exhausted with work left over.
	if outstanding := s.outstanding(profile, done); !outstanding.empty() {
		already := false
		for _, a := range advisories {
			if a.Kind == model.AdvisoryStuck || a.Kind == model.AdvisoryOffTarget {
				already = true
			}
		}
		if !already {
			advisories = append(advisories, model.Advisory{
				Kind:     model.AdvisoryOffTarget,
				Severity: model.SeverityWarning,
				Message:  "planning horizon exhausted; remaining: " + outstanding.describe(),
			})
		}
	}

	return plan, advisories
}

// fillTerm selects courses for one term. Candidates are ordered once by
// descending unblock count then ascending id, then repeatedly scanned so a
// corequisite partner placed earlier in the scan can make its dependent
// admissible within the same term.
func (s *Scheduler) fillTerm(
	term model.Term,
	outstanding requirements,
	records map[string]prereq.Record,
	ceiling int,
) []string {
	ids, attr := outstanding.candidates()

	// Unblock count: outstanding courses that are not yet eligible and list
	// the candidate as a direct prerequisite.
	outstandingSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		outstandingSet[id] = true
	}
	unblocks := make(map[string]int, len(ids))
	for _, id := range ids {
		for _, dep := range s.snap.Graph.Dependents(id) {
			if outstandingSet[dep] && !s.snap.Graph.Eligible(dep, records, nil) {
				unblocks[id]++
			}
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if unblocks[ids[i]] != unblocks[ids[j]] {
			return unblocks[ids[i]] > unblocks[ids[j]]
		}
		return ids[i] < ids[j]
	})

	var selected []string
	selectedSet := make(map[string]bool)
	credits := 0
	groupTaken := make(map[string]int)
	electiveTaken := 0

	for {
		picked := false
		for _, id := range ids {
			if selectedSet[id] {
				continue
			}
			course, ok := s.snap.Catalog.Course(id)
			if !ok || !course.OfferedIn(term.Season) {
				continue
			}
			sl := attr[id]
			switch sl.kind {
			case slotGroup:
				if groupTaken[sl.group] >= outstanding.groupNeed[sl.group] {
					continue
				}
			case slotElective:
				if electiveTaken >= outstanding.electiveNeed {
					continue
				}
			}
			if credits+course.Credits > ceiling {
				continue
			}
			var partners []string
			if !s.snap.Graph.Eligible(id, records, selectedSet) {
				// A candidate blocked only by corequisites that are
				// themselves schedulable this term is admitted together
				// with them as one atomic group. Mutual pairs would
				// otherwise wait on each other forever.
				extras, ok := s.coreqGroup(id, term, outstanding, attr, records, selectedSet,
					credits+course.Credits, ceiling, groupTaken, electiveTaken)
				if !ok {
					continue
				}
				partners = extras
			}

			selected = append(selected, id)
			selectedSet[id] = true
			credits += course.Credits
			switch sl.kind {
			case slotGroup:
				groupTaken[sl.group]++
			case slotElective:
				electiveTaken += course.Credits
			}
			for _, m := range partners {
				mc, _ := s.snap.Catalog.Course(m)
				selected = append(selected, m)
				selectedSet[m] = true
				credits += mc.Credits
				switch attr[m].kind {
				case slotGroup:
					groupTaken[attr[m].group]++
				case slotElective:
					electiveTaken += mc.Credits
				}
			}
			picked = true
			break
		}
		if !picked {
			break
		}
	}

	sort.Strings(selected)
	return selected
}

// coreqGroup resolves the corequisite closure of a blocked candidate: every
// unsatisfied course its rule tree (and theirs, transitively) names in a
// corequisite clause. The closure is admitted only as a whole, so each
// member must be an outstanding candidate offered this term, fit its slot
// budget, and fit the remaining credit ceiling; finally every member's full
// rule is re-checked with the closure counted as concurrent. Returns the
// partners to schedule alongside the candidate, sorted ascending.
func (s *Scheduler) coreqGroup(
	id string,
	term model.Term,
	outstanding requirements,
	attr map[string]slot,
	records map[string]prereq.Record,
	selectedSet map[string]bool,
	creditsUsed, ceiling int,
	groupTaken map[string]int,
	electiveTaken int,
) ([]string, bool) {
	closure := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, m := range s.snap.Graph.CoreqMembers(cur) {
			if closure[m] || selectedSet[m] {
				continue
			}
			if rec, done := records[m]; done && (rec.Planned || !rec.Grade.Incomplete()) {
				continue
			}
			if _, candidate := attr[m]; !candidate {
				return nil, false
			}
			closure[m] = true
			queue = append(queue, m)
		}
	}
	if len(closure) == 1 {
		return nil, false
	}

	partners := make([]string, 0, len(closure)-1)
	for m := range closure {
		if m != id {
			partners = append(partners, m)
		}
	}
	sort.Strings(partners)

	pendingGroup := make(map[string]int)
	pendingElective := 0
	total := creditsUsed
	for _, m := range partners {
		course, ok := s.snap.Catalog.Course(m)
		if !ok || !course.OfferedIn(term.Season) {
			return nil, false
		}
		switch sl := attr[m]; sl.kind {
		case slotGroup:
			if groupTaken[sl.group]+pendingGroup[sl.group] >= outstanding.groupNeed[sl.group] {
				return nil, false
			}
			pendingGroup[sl.group]++
		case slotElective:
			if electiveTaken+pendingElective >= outstanding.electiveNeed {
				return nil, false
			}
			pendingElective += course.Credits
		}
		total += course.Credits
		if total > ceiling {
			return nil, false
		}
	}

	tentative := make(map[string]bool, len(selectedSet)+len(closure))
	for m := range selectedSet {
		tentative[m] = true
	}
	for m := range closure {
		tentative[m] = true
	}
	for m := range closure {
		if !s.snap.Graph.Eligible(m, records, tentative) {
			return nil, false
		}
	}
	return partners, true
}

// outstanding computes the requirement set still open given everything in
// done. Bucket consumption is ordered — core, then track groups in
// declared order, then electives — so no course counts twice.
func (s *Scheduler) outstanding(profile model.StudentProfile, done map[string]bool) requirements {
	cur := s.snap.Curriculum
	req := requirements{
		groupNeed: make(map[string]int),
		groupOpen: make(map[string][]string),
	}

	coreConsumed := make(map[string]bool, len(cur.Core))
	for _, id := range cur.Core {
		if done[id] {
			coreConsumed[id] = true
		} else {
			req.core = append(req.core, id)
		}
	}
	sort.Strings(req.core)

	trackConsumed := make(map[string]string)
	if profile.DeclaredTrack != nil {
		if trk, ok := s.snap.Tracks[*profile.DeclaredTrack]; ok {
			bucketPool := make(map[string]bool, len(done))
			for id := range done {
				if !coreConsumed[id] {
					bucketPool[id] = true
				}
			}
			eval := track.Evaluate(trk, bucketPool)
			trackConsumed = eval.Consumed
			unmet := eval.Unmet(trk)
			for i, grp := range trk.Groups {
				req.groupOrder = append(req.groupOrder, grp.Key)
				req.groupNeed[grp.Key] = eval.Groups[i].Remaining
				var open []string
				for _, id := range unmet[grp.Key] {
					if !done[id] {
						open = append(open, id)
					}
				}
				sort.Strings(open)
				req.groupOpen[grp.Key] = open
			}
		}
	}

	electiveCredits := 0
	pool := append([]string(nil), cur.ElectivePool...)
	sort.Strings(pool)
	for _, id := range pool {
		if electiveCredits >= cur.ElectiveCredits {
			break
		}
		if !done[id] || coreConsumed[id] {
			continue
		}
		if _, usedByTrack := trackConsumed[id]; usedByTrack {
			continue
		}
		electiveCredits += s.snap.Catalog.Credits(id)
	}
	req.electiveNeed = cur.ElectiveCredits - electiveCredits
	if req.electiveNeed < 0 {
		req.electiveNeed = 0
	}
	for _, id := range pool {
		if !done[id] {
			req.electiveOpen = append(req.electiveOpen, id)
		}
	}

	return req
}

// stuckCourses returns outstanding courses whose prerequisites cannot hold
// even if every other outstanding course were taken concurrently. A
// non-empty result means no amount of waiting for the right season helps.
func (s *Scheduler) stuckCourses(outstanding requirements, records map[string]prereq.Record) []string {
	ids, _ := outstanding.candidates()
	all := make(map[string]bool, len(ids))
	for _, id := range ids {
		all[id] = true
	}

	// Fixpoint over hard prerequisites: a course is reachable once its rule
	// holds given the transcript plus every already-reachable outstanding
	// course. Corequisites count as co-schedulable throughout.
	reach := make(map[string]prereq.Record, len(records)+len(ids))
	for id, rec := range records {
		reach[id] = rec
	}
	pending := append([]string(nil), ids...)
	for changed := true; changed; {
		changed = false
		next := pending[:0]
		for _, id := range pending {
			if s.snap.Graph.Eligible(id, reach, all) {
				reach[id] = prereq.Record{Planned: true}
				changed = true
			} else {
				next = append(next, id)
			}
		}
		pending = next
	}

	if len(pending) < len(ids) {
		// At least one course is still schedulable; the empty term was a
		// season or credit artifact, not a dead end.
		return nil
	}
	stuck := append([]string(nil), pending...)
	sort.Strings(stuck)
	return stuck
}

// trackAdvisories emits the undeclared-track warning when the milestone
// course has been taken or is being taken without a declared track. This
// is advisory only, never fatal.
func (s *Scheduler) trackAdvisories(profile model.StudentProfile, done map[string]bool) []model.Advisory {
	milestone := s.snap.Curriculum.MilestoneCourse
	if milestone == "" || profile.DeclaredTrack != nil {
		return nil
	}
	if done[milestone] {
		return []model.Advisory{{
			Kind:     model.AdvisoryTrackUndeclared,
			Severity: model.SeverityWarning,
			Message:  "track must be declared",
		}}
	}
	return nil
}

// creditCeiling resolves the per-term credit cap from policy, pace and the
// request's max-credits constraint. Requests above the institutional
// ceiling are capped with an advisory unless overload approval is off.
func creditCeiling(policy model.Policy, cons model.Constraints) (int, *model.Advisory) {
	ceiling := policy.CreditTarget(cons.Pace)
	if cons.MaxCredits <= 0 {
		return ceiling, nil
	}
	if cons.MaxCredits <= policy.MaxCreditsPerTerm {
		return cons.MaxCredits, nil
	}
	if policy.OverloadRequiresApproval {
		return policy.MaxCreditsPerTerm, &model.Advisory{
			Kind:     model.AdvisoryOverload,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf("requested %d credits/term exceeds the %d-credit ceiling and requires overload approval; capped",
				cons.MaxCredits, policy.MaxCreditsPerTerm),
		}
	}
	return cons.MaxCredits, &model.Advisory{
		Kind:     model.AdvisoryOverload,
		Severity: model.SeverityInfo,
		Message:  fmt.Sprintf("overload to %d credits/term", cons.MaxCredits),
	}
}

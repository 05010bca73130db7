package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/model"
)

func fall(year int) model.Term   { return model.Term{Year: year, Season: model.SeasonFall} }
func spring(year int) model.Term { return model.Term{Year: year, Season: model.SeasonSpring} }

// planningSnapshot is a small but complete degree configuration: a core
// sequence with a milestone course, one track, and an elective pool.
func planningSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()

	courses := []model.Course{
		{ID: "CS18000", Title: "Problem Solving and OOP", Credits: 4},
		{ID: "CS18200", Title: "Discrete Mathematics", Credits: 3},
		{ID: "CS24000", Title: "Programming in C", Credits: 3},
		{ID: "CS25000", Title: "Computer Architecture", Credits: 4},
		{ID: "CS25100", Title: "Data Structures", Credits: 3},
		{ID: "CS25200", Title: "Systems Programming", Credits: 4},
		{ID: "MA16100", Title: "Calculus I", Credits: 5},
		{ID: "MA16200", Title: "Calculus II", Credits: 5},
		{ID: "CS35200", Title: "Compilers", Credits: 3},
		{ID: "CS35400", Title: "Operating Systems", Credits: 3},
		{ID: "CS42200", Title: "Computer Networks", Credits: 3},
		{ID: "CS39000", Title: "Topics Seminar", Credits: 1},
		{ID: "CS47100", Title: "Artificial Intelligence", Credits: 3},
		{ID: "CS47300", Title: "Web Search", Credits: 3},
	}
	rules := []model.PrereqRule{
		{CourseID: "CS18200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS18000"}, MinGrade: model.GradeC}},
		{CourseID: "CS24000", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS18000"}, MinGrade: model.GradeC}},
		{CourseID: "CS25000", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS18200", "CS24000"}, MinGrade: model.GradeC}},
		{CourseID: "CS25100", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS18200", "CS24000"}, MinGrade: model.GradeC}},
		{CourseID: "CS25200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS25000", "CS25100"}, MinGrade: model.GradeC}},
		{CourseID: "MA16200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"MA16100"}, MinGrade: model.GradeC}},
		{CourseID: "CS35200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS25200"}, MinGrade: model.GradeC}},
		{CourseID: "CS35400", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS25200"}, MinGrade: model.GradeC}},
		{CourseID: "CS42200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS25200"}, MinGrade: model.GradeC}},
	}
	tracks := []model.Track{{
		ID:   "systems",
		Name: "Systems Software",
		Groups: []model.TrackGroup{
			{Key: "required", Need: 2, Courses: []string{"CS35200", "CS35400"}},
			{Key: "choose_one", Need: 1, Courses: []string{"CS42200", "CS47100"}},
		},
	}}
	curriculum := model.Curriculum{
		Core: []string{
			"CS18000", "CS18200", "CS24000", "CS25000", "CS25100", "CS25200",
			"MA16100", "MA16200",
		},
		ElectivePool:    []string{"CS39000", "CS47100", "CS47300"},
		ElectiveCredits: 6,
		MilestoneCourse: "CS25200",
	}
	policy := model.Policy{
		MaxCreditsPerTerm:        18,
		SummerAllowedDefault:     false,
		MinGradeDefault:          model.GradeC,
		OverloadRequiresApproval: true,
		PaceCreditTargets: map[model.Pace]int{
			model.PaceSlow:        9,
			model.PaceNormal:      15,
			model.PaceAccelerated: 18,
		},
	}

	snap, err := catalog.BuildSnapshot(1, courses, nil, rules, tracks, curriculum, policy)
	require.NoError(t, err)
	return snap
}

func foundationProfile() model.StudentProfile {
	return model.StudentProfile{
		StudentID: "stu-1001",
		Completed: map[string]model.CourseResult{
			"CS18000": {Grade: model.GradeA, Term: fall(2024)},
			"CS18200": {Grade: model.GradeB, Term: spring(2025)},
			"CS24000": {Grade: model.GradeB, Term: spring(2025)},
		},
		StartTerm: fall(2025),
	}
}

func advisoryKinds(advisories []model.Advisory) []model.AdvisoryKind {
	out := make([]model.AdvisoryKind, 0, len(advisories))
	for _, a := range advisories {
		out = append(out, a.Kind)
	}
	return out
}

func TestComputePlanFoundationNextTerm(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	plan, advisories := s.ComputePlan(foundationProfile(), model.Constraints{})

	require.NotEmpty(t, plan.Terms)
	first := plan.Terms[0]
	assert.Equal(t, fall(2025), first.Term)
	assert.Contains(t, first.Courses, "CS25000")
	assert.Contains(t, first.Courses, "CS25100")
	// Milestone not yet taken, so no declaration warning.
	assert.NotContains(t, advisoryKinds(advisories), model.AdvisoryTrackUndeclared)
	assert.Equal(t, int64(1), plan.SnapshotVersion)
}

func TestComputePlanUndeclaredTrackAfterMilestone(t *testing.T) {
	t.Parallel()

	profile := foundationProfile()
	profile.InProgress = []string{"CS25200"}

	s := New(planningSnapshot(t))
	plan, advisories := s.ComputePlan(profile, model.Constraints{})

	kinds := advisoryKinds(advisories)
	require.Contains(t, kinds, model.AdvisoryTrackUndeclared)
	for _, a := range advisories {
		if a.Kind == model.AdvisoryTrackUndeclared {
			assert.Equal(t, model.SeverityWarning, a.Severity)
			assert.Equal(t, "track must be declared", a.Message)
		}
	}

	// In-progress enrollment occupies the start term; planning resumes after.
	require.NotEmpty(t, plan.Terms)
	assert.Equal(t, spring(2026), plan.Terms[0].Term)
}

func TestComputePlanIsDeterministic(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	profile := foundationProfile()
	declared := "systems"
	profile.DeclaredTrack = &declared
	cons := model.Constraints{Pace: model.PaceNormal}

	firstPlan, firstAdv := s.ComputePlan(profile, cons)
	for i := 0; i < 10; i++ {
		plan, adv := s.ComputePlan(profile, cons)
		assert.Equal(t, firstPlan, plan)
		assert.Equal(t, firstAdv, adv)
	}
}

func TestComputePlanSchedulesEachCourseOnce(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	declared := "systems"
	profile := foundationProfile()
	profile.DeclaredTrack = &declared

	plan, _ := s.ComputePlan(profile, model.Constraints{})

	seen := make(map[string]bool)
	for _, ta := range plan.Terms {
		for _, id := range ta.Courses {
			assert.False(t, seen[id], "course %s scheduled twice", id)
			seen[id] = true
			assert.NotContains(t, profile.Completed, id, "completed course %s rescheduled", id)
		}
	}
}

func TestComputePlanTermsAreChronological(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	plan, _ := s.ComputePlan(foundationProfile(), model.Constraints{})

	require.NotEmpty(t, plan.Terms)
	for i := 1; i < len(plan.Terms); i++ {
		assert.True(t, plan.Terms[i-1].Term.Before(plan.Terms[i].Term))
	}
	assert.False(t, plan.Terms[0].Term.Before(fall(2025)))
}

func TestComputePlanCompletesDegreeWithTrack(t *testing.T) {
	t.Parallel()

	snap := planningSnapshot(t)
	s := New(snap)
	declared := "systems"
	profile := foundationProfile()
	profile.DeclaredTrack = &declared

	plan, advisories := s.ComputePlan(profile, model.Constraints{})

	for _, a := range advisories {
		assert.NotEqual(t, model.SeverityFatal, a.Severity, "unexpected fatal advisory: %s", a.Message)
	}

	scheduled := make(map[string]bool)
	for _, id := range plan.Courses() {
		scheduled[id] = true
	}
	for _, id := range []string{"CS25000", "CS25100", "CS25200", "MA16100", "MA16200", "CS35200", "CS35400"} {
		assert.True(t, scheduled[id], "core or track course %s missing from plan", id)
	}
	// choose_one is satisfiable by either course, exactly one is needed.
	assert.True(t, scheduled["CS42200"] || scheduled["CS47100"])

	// Per-term credit loads respect the normal pace target.
	for _, ta := range plan.Terms {
		assert.LessOrEqual(t, ta.Credits, 15, "term %s overloaded", ta.Term.Code())
	}
}

func TestComputePlanRequiresRetakeAfterFailure(t *testing.T) {
	t.Parallel()

	profile := foundationProfile()
	profile.Completed["CS24000"] = model.CourseResult{Grade: model.GradeF, Term: spring(2025)}

	s := New(planningSnapshot(t))
	plan, _ := s.ComputePlan(profile, model.Constraints{})

	require.NotEmpty(t, plan.Terms)
	assert.Contains(t, plan.Terms[0].Courses, "CS24000")
	// CS25000 needs CS24000 at C or better, so it cannot share the term.
	assert.NotContains(t, plan.Terms[0].Courses, "CS25000")
}

func TestComputePlanSkipsSummerUnlessAllowed(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	profile := foundationProfile()
	profile.StartTerm = spring(2025)
	profile.Completed = map[string]model.CourseResult{
		"CS18000": {Grade: model.GradeA, Term: fall(2024)},
	}

	plan, _ := s.ComputePlan(profile, model.Constraints{})
	for _, ta := range plan.Terms {
		assert.NotEqual(t, model.SeasonSummer, ta.Term.Season)
	}

	planSummer, _ := s.ComputePlan(profile, model.Constraints{SummerOK: true})
	hasSummer := false
	for _, ta := range planSummer.Terms {
		if ta.Term.Season == model.SeasonSummer {
			hasSummer = true
		}
	}
	assert.True(t, hasSummer)
}

func TestComputePlanStuckOnUnsatisfiablePrereq(t *testing.T) {
	t.Parallel()

	courses := []model.Course{
		{ID: "CS10100", Title: "Intro", Credits: 3},
		{ID: "CS20100", Title: "Capstone", Credits: 3},
	}
	rules := []model.PrereqRule{
		// CS10100 is required for CS20100 but is not itself a requirement,
		// so the scheduler will never place it.
		{CourseID: "CS20100", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS10100"}, MinGrade: model.GradeC}},
	}
	curriculum := model.Curriculum{Core: []string{"CS20100"}}
	policy := model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, rules, nil, curriculum, policy)
	require.NoError(t, err)

	plan, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{})

	assert.Empty(t, plan.Terms)
	kinds := advisoryKinds(advisories)
	require.Contains(t, kinds, model.AdvisoryStuck)
	for _, a := range advisories {
		if a.Kind == model.AdvisoryStuck {
			assert.Equal(t, model.SeverityFatal, a.Severity)
			assert.Contains(t, a.Message, "CS20100")
		}
	}
}

func TestComputePlanStuckOnSeasonBlockedCourse(t *testing.T) {
	t.Parallel()

	courses := []model.Course{
		{ID: "AG30000", Title: "Field Practicum", Credits: 3, Offered: []model.Season{model.SeasonSummer}},
	}
	curriculum := model.Curriculum{Core: []string{"AG30000"}}
	policy := model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, nil, nil, curriculum, policy)
	require.NoError(t, err)

	// Summer-only course with summer disallowed never finds a term.
	_, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{})
	assert.Contains(t, advisoryKinds(advisories), model.AdvisoryStuck)

	// Allowing summer resolves it.
	plan, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{SummerOK: true})
	assert.NotContains(t, advisoryKinds(advisories), model.AdvisoryStuck)
	require.NotEmpty(t, plan.Terms)
	assert.Equal(t, model.SeasonSummer, plan.Terms[0].Term.Season)
}

func TestComputePlanOffTargetWarning(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	plan, advisories := s.ComputePlan(foundationProfile(), model.Constraints{
		TargetGradTerm: fall(2025),
	})

	// One term fits before the target; the rest trips the warning.
	kinds := advisoryKinds(advisories)
	assert.Contains(t, kinds, model.AdvisoryOffTarget)
	require.NotEmpty(t, plan.Terms)
	for _, ta := range plan.Terms {
		assert.False(t, fall(2025).Before(ta.Term))
	}
}

func TestComputePlanOverloadRequest(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	plan, advisories := s.ComputePlan(foundationProfile(), model.Constraints{MaxCredits: 21})

	kinds := advisoryKinds(advisories)
	require.Contains(t, kinds, model.AdvisoryOverload)
	for _, a := range advisories {
		if a.Kind == model.AdvisoryOverload {
			assert.Equal(t, model.SeverityWarning, a.Severity)
		}
	}
	for _, ta := range plan.Terms {
		assert.LessOrEqual(t, ta.Credits, 18)
	}
}

func TestComputePlanPaceControlsLoad(t *testing.T) {
	t.Parallel()

	s := New(planningSnapshot(t))
	slow, _ := s.ComputePlan(foundationProfile(), model.Constraints{Pace: model.PaceSlow})
	fast, _ := s.ComputePlan(foundationProfile(), model.Constraints{Pace: model.PaceAccelerated})

	for _, ta := range slow.Terms {
		assert.LessOrEqual(t, ta.Credits, 9)
	}
	require.NotEmpty(t, slow.Terms)
	require.NotEmpty(t, fast.Terms)
	assert.GreaterOrEqual(t, len(slow.Terms), len(fast.Terms))
}

func TestComputePlanCoreqPartnersShareTerm(t *testing.T) {
	t.Parallel()

	courses := []model.Course{
		{ID: "MA16100", Title: "Calculus I", Credits: 5},
		{ID: "PHYS17200", Title: "Modern Mechanics", Credits: 4},
	}
	rules := []model.PrereqRule{
		{CourseID: "PHYS17200", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"MA16100"}}},
	}
	curriculum := model.Curriculum{Core: []string{"MA16100", "PHYS17200"}}
	policy := model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, rules, nil, curriculum, policy)
	require.NoError(t, err)

	plan, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{})

	assert.NotContains(t, advisoryKinds(advisories), model.AdvisoryStuck)
	require.Len(t, plan.Terms, 1)
	assert.ElementsMatch(t, []string{"MA16100", "PHYS17200"}, plan.Terms[0].Courses)
}

func TestComputePlanMutualCoreqPartnersShareTerm(t *testing.T) {
	t.Parallel()

	courses := []model.Course{
		{ID: "MA16100", Title: "Calculus I", Credits: 5},
		{ID: "PHYS17200", Title: "Modern Mechanics", Credits: 4},
	}
	// Each course lists the other as a corequisite, so neither is eligible
	// until both are placed in the same term.
	rules := []model.PrereqRule{
		{CourseID: "PHYS17200", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"MA16100"}}},
		{CourseID: "MA16100", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"PHYS17200"}}},
	}
	curriculum := model.Curriculum{Core: []string{"MA16100", "PHYS17200"}}
	policy := model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, rules, nil, curriculum, policy)
	require.NoError(t, err)

	plan, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{})

	assert.NotContains(t, advisoryKinds(advisories), model.AdvisoryStuck)
	require.Len(t, plan.Terms, 1)
	assert.ElementsMatch(t, []string{"MA16100", "PHYS17200"}, plan.Terms[0].Courses)
	assert.Equal(t, 9, plan.TotalCredits)
}

func TestComputePlanMutualCoreqRespectsCreditCeiling(t *testing.T) {
	t.Parallel()

	courses := []model.Course{
		{ID: "MA16100", Title: "Calculus I", Credits: 5},
		{ID: "PHYS17200", Title: "Modern Mechanics", Credits: 4},
	}
	rules := []model.PrereqRule{
		{CourseID: "PHYS17200", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"MA16100"}}},
		{CourseID: "MA16100", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"PHYS17200"}}},
	}
	curriculum := model.Curriculum{Core: []string{"MA16100", "PHYS17200"}}
	// The pair needs 9 credits together; a ceiling of 8 admits neither, so
	// the plan must report the pair as unschedulable rather than split it.
	policy := model.Policy{MaxCreditsPerTerm: 8, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, rules, nil, curriculum, policy)
	require.NoError(t, err)

	plan, advisories := New(snap).ComputePlan(model.StudentProfile{StartTerm: fall(2025)}, model.Constraints{})

	assert.Empty(t, plan.Terms)
	assert.Contains(t, advisoryKinds(advisories), model.AdvisoryStuck)
}

func TestComputePlanNothingOutstanding(t *testing.T) {
	t.Parallel()

	courses := []model.Course{{ID: "CS10100", Title: "Intro", Credits: 3}}
	curriculum := model.Curriculum{Core: []string{"CS10100"}}
	policy := model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeC}
	snap, err := catalog.BuildSnapshot(1, courses, nil, nil, nil, curriculum, policy)
	require.NoError(t, err)

	plan, advisories := New(snap).ComputePlan(model.StudentProfile{
		Completed: map[string]model.CourseResult{
			"CS10100": {Grade: model.GradeA, Term: spring(2025)},
		},
		StartTerm: fall(2025),
	}, model.Constraints{})

	assert.Empty(t, plan.Terms)
	assert.Zero(t, plan.TotalCredits)
	assert.Empty(t, advisories)
}

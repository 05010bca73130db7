package prereq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/model"
)

func buildGraph(t *testing.T, res Resolver, rules []model.PrereqRule) *Graph {
	t.Helper()
	g, err := Build(res, rules, model.GradeDMinus)
	require.NoError(t, err)
	return g
}

func TestEligibleGradeThreshold(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000", "CS18200")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "CS18200", Root: allof(model.GradeC, "CS18000")},
	})

	cases := []struct {
		name  string
		grade model.Grade
		want  bool
	}{
		{"above threshold", model.GradeA, true},
		{"exactly at threshold", model.GradeC, true},
		{"below threshold", model.GradeCMinus, false},
		{"failing grade", model.GradeF, false},
		{"withdrawal never satisfies", model.GradeW, false},
		{"incomplete never satisfies", model.GradeI, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := map[string]Record{"CS18000": {Grade: tc.grade}}
			assert.Equal(t, tc.want, g.Eligible("CS18200", records, nil))
		})
	}
}

func TestEligibleNoRuleAlwaysPasses(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, resolver("CS18000"), nil)
	assert.True(t, g.Eligible("CS18000", nil, nil))
}

func TestEligibleMissingCourseFails(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000", "CS18200")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "CS18200", Root: allof(model.GradeC, "CS18000")},
	})
	assert.False(t, g.Eligible("CS18200", map[string]Record{}, nil))
}

func TestEligiblePlannedRecordSatisfiesAnyThreshold(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000", "CS18200")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "CS18200", Root: allof(model.GradeB, "CS18000")},
	})
	records := map[string]Record{"CS18000": {Planned: true}}
	assert.True(t, g.Eligible("CS18200", records, nil))
}

func TestEligibleOneOf(t *testing.T) {
	t.Parallel()

	res := resolver("MA16100", "MA16500", "CS18200")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "CS18200", Root: model.RuleNode{
			Kind:     model.RuleOneOf,
			Courses:  []string{"MA16100", "MA16500"},
			MinGrade: model.GradeC,
		}},
	})

	assert.True(t, g.Eligible("CS18200", map[string]Record{
		"MA16500": {Grade: model.GradeC},
	}, nil))
	assert.False(t, g.Eligible("CS18200", map[string]Record{
		"MA16100": {Grade: model.GradeD},
	}, nil))
}

func TestEligibleNestedExpression(t *testing.T) {
	t.Parallel()

	// CS38100 needs CS25100 and one of (MA26100, MA27101).
	res := resolver("CS25100", "MA26100", "MA27101", "CS38100")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "CS38100", Root: model.RuleNode{
			Kind:     model.RuleAllOf,
			Courses:  []string{"CS25100"},
			MinGrade: model.GradeC,
			Children: []model.RuleNode{
				{Kind: model.RuleOneOf, Courses: []string{"MA26100", "MA27101"}, MinGrade: model.GradeC},
			},
		}},
	})

	assert.True(t, g.Eligible("CS38100", map[string]Record{
		"CS25100": {Grade: model.GradeB},
		"MA27101": {Grade: model.GradeC},
	}, nil))
	assert.False(t, g.Eligible("CS38100", map[string]Record{
		"CS25100": {Grade: model.GradeB},
	}, nil))
	assert.False(t, g.Eligible("CS38100", map[string]Record{
		"MA26100": {Grade: model.GradeA},
	}, nil))
}

func TestEligibleCoreqSameTerm(t *testing.T) {
	t.Parallel()

	res := resolver("PHYS172", "MA16100")
	g := buildGraph(t, res, []model.PrereqRule{
		{CourseID: "PHYS172", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"MA16100"}}},
	})

	// Not completed, not concurrent.
	assert.False(t, g.Eligible("PHYS172", nil, nil))
	// Scheduled in the same term.
	assert.True(t, g.Eligible("PHYS172", nil, map[string]bool{"MA16100": true}))
	// Completed in an earlier term.
	assert.True(t, g.Eligible("PHYS172", map[string]Record{
		"MA16100": {Grade: model.GradeD},
	}, nil))
	// Withdrawn earlier and not retaken concurrently.
	assert.False(t, g.Eligible("PHYS172", map[string]Record{
		"MA16100": {Grade: model.GradeW},
	}, nil))
}

func TestCompletedRecords(t *testing.T) {
	t.Parallel()

	completed := map[string]model.CourseResult{
		"CS18000": {Grade: model.GradeA, Term: model.Term{Year: 2024, Season: model.SeasonFall}},
	}
	records := CompletedRecords(completed)
	require.Len(t, records, 1)
	assert.Equal(t, model.GradeA, records["CS18000"].Grade)
	assert.False(t, records["CS18000"].Planned)
}

package prereq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

// mapResolver is a catalog stand-in for tests: known ids resolve to
// themselves, aliases through the map.
type mapResolver map[string]string

func (m mapResolver) Resolve(code string) (string, bool) {
	id, ok := m[code]
	return id, ok
}

func resolver(ids ...string) mapResolver {
	m := make(mapResolver, len(ids))
	for _, id := range ids {
		m[id] = id
	}
	return m
}

func allof(min model.Grade, courses ...string) model.RuleNode {
	return model.RuleNode{Kind: model.RuleAllOf, Courses: courses, MinGrade: min}
}

func TestBuildCompilesRules(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000", "CS18200", "CS24000", "CS25000")
	g, err := Build(res, []model.PrereqRule{
		{CourseID: "CS25000", Root: model.RuleNode{
			Kind:     model.RuleAllOf,
			Courses:  []string{"CS18200", "CS24000"},
			MinGrade: model.GradeC,
		}},
	}, model.GradeDMinus)
	require.NoError(t, err)

	assert.Equal(t, []string{"CS18200", "CS24000"}, g.DirectPrereqs("CS25000"))
	assert.Equal(t, []string{"CS25000"}, g.Dependents("CS18200"))
	assert.Nil(t, g.Rule("CS18000"))
}

func TestBuildRejectsUnknownCourse(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000")
	_, err := Build(res, []model.PrereqRule{
		{CourseID: "CS18000", Root: allof(model.GradeC, "CS99999")},
	}, model.GradeDMinus)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigError(err))
}

func TestBuildRejectsMalformedRule(t *testing.T) {
	t.Parallel()

	res := resolver("CS18000", "CS18200")

	// Unknown kind.
	_, err := Build(res, []model.PrereqRule{
		{CourseID: "CS18000", Root: model.RuleNode{Kind: "sometimes", Courses: []string{"CS18200"}}},
	}, model.GradeDMinus)
	assert.True(t, apperrors.IsConfigError(err))

	// Empty expression.
	_, err = Build(res, []model.PrereqRule{
		{CourseID: "CS18000", Root: model.RuleNode{Kind: model.RuleAllOf}},
	}, model.GradeDMinus)
	assert.True(t, apperrors.IsConfigError(err))

	// Coreq may not nest.
	_, err = Build(res, []model.PrereqRule{
		{CourseID: "CS18000", Root: model.RuleNode{
			Kind:     model.RuleCoreq,
			Courses:  []string{"CS18200"},
			Children: []model.RuleNode{allof(model.GradeC, "CS18200")},
		}},
	}, model.GradeDMinus)
	assert.True(t, apperrors.IsConfigError(err))
}

func TestCycleDetectionIsDeterministic(t *testing.T) {
	t.Parallel()

	res := resolver("A100", "B100", "C100")
	rules := []model.PrereqRule{
		{CourseID: "A100", Root: allof(model.GradeC, "B100")},
		{CourseID: "B100", Root: allof(model.GradeC, "C100")},
		{CourseID: "C100", Root: allof(model.GradeC, "A100")},
	}

	_, err1 := Build(res, rules, model.GradeDMinus)
	require.Error(t, err1)
	assert.True(t, apperrors.IsConfigError(err1))

	// Same input, same failure, same cycle report.
	_, err2 := Build(res, rules, model.GradeDMinus)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestAcyclicRuleSetBuilds(t *testing.T) {
	t.Parallel()

	res := resolver("A100", "B100", "C100", "D100")
	_, err := Build(res, []model.PrereqRule{
		{CourseID: "B100", Root: allof(model.GradeC, "A100")},
		{CourseID: "C100", Root: allof(model.GradeC, "A100", "B100")},
		{CourseID: "D100", Root: allof(model.GradeC, "C100")},
	}, model.GradeDMinus)
	assert.NoError(t, err)
}

func TestMutualCoreqIsNotACycle(t *testing.T) {
	t.Parallel()

	res := resolver("PHYS172", "MA16100")
	_, err := Build(res, []model.PrereqRule{
		{CourseID: "PHYS172", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"MA16100"}}},
		{CourseID: "MA16100", Root: model.RuleNode{Kind: model.RuleCoreq, Courses: []string{"PHYS172"}}},
	}, model.GradeDMinus)
	assert.NoError(t, err)
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

func snapshotFixture(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := BuildSnapshot(
		1,
		[]model.Course{
			{ID: "CS18000", Credits: 4},
			{ID: "CS18200", Credits: 3},
			{ID: "CS25200", Credits: 4},
		},
		[]model.CourseAlias{{Alias: "CS180", CourseID: "CS18000"}},
		[]model.PrereqRule{
			{CourseID: "CS18200", Root: model.RuleNode{Kind: model.RuleAllOf, Courses: []string{"CS180"}, MinGrade: model.GradeC}},
		},
		[]model.Track{
			{ID: "systems", Name: "Systems", Groups: []model.TrackGroup{
				{Key: "required", Need: 1, Courses: []string{"CS25200"}},
			}},
		},
		model.Curriculum{Core: []string{"CS18000", "CS18200"}, MilestoneCourse: "CS25200"},
		model.Policy{MaxCreditsPerTerm: 18, MinGradeDefault: model.GradeDMinus},
	)
	require.NoError(t, err)
	return snap
}

func TestBuildSnapshotResolvesRuleAliases(t *testing.T) {
	t.Parallel()

	snap := snapshotFixture(t)
	// The rule referenced "CS180"; the compiled graph must use the
	// canonical id.
	assert.Equal(t, []string{"CS18000"}, snap.Graph.DirectPrereqs("CS18200"))
	assert.Equal(t, "CS25200", snap.Curriculum.MilestoneCourse)
}

func TestBuildSnapshotRejectsUnknownReferences(t *testing.T) {
	t.Parallel()

	_, err := BuildSnapshot(1,
		[]model.Course{{ID: "CS18000", Credits: 4}},
		nil,
		nil,
		[]model.Track{{ID: "t", Groups: []model.TrackGroup{{Key: "g", Need: 1, Courses: []string{"CS99999"}}}}},
		model.Curriculum{},
		model.Policy{MaxCreditsPerTerm: 18},
	)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigError(err))

	_, err = BuildSnapshot(1,
		[]model.Course{{ID: "CS18000", Credits: 4}},
		nil, nil, nil,
		model.Curriculum{Core: []string{"CS11111"}},
		model.Policy{MaxCreditsPerTerm: 18},
	)
	assert.True(t, apperrors.IsConfigError(err))

	_, err = BuildSnapshot(1,
		[]model.Course{{ID: "CS18000", Credits: 4}},
		nil, nil, nil,
		model.Curriculum{},
		model.Policy{MaxCreditsPerTerm: 0},
	)
	assert.True(t, apperrors.IsConfigError(err))
}

func TestStorePublishIsAtomic(t *testing.T) {
	t.Parallel()

	store := NewStore()
	assert.Nil(t, store.Current())

	first := snapshotFixture(t)
	store.Publish(first)
	assert.Same(t, first, store.Current())

	// A reader that acquired the old snapshot keeps it across a publish.
	held := store.Current()
	second := snapshotFixture(t)
	second.Version = 2
	store.Publish(second)
	assert.Same(t, first, held)
	assert.Same(t, second, store.Current())
}

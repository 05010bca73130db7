package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/compass-backend/internal/model"
)

func systemsTrack() model.Track {
	return model.Track{
		ID:   "systems",
		Name: "Systems Software",
		Groups: []model.TrackGroup{
			{Key: "required", Need: 2, Courses: []string{"CS35200", "CS42200"}},
			{Key: "choose_two", Need: 2, Courses: []string{"CS35400", "CS42200", "CS44800", "CS45600"}},
		},
	}
}

func completedSet(ids ...string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func TestEvaluateConsumesInDeclaredOrder(t *testing.T) {
	t.Parallel()

	res := Evaluate(systemsTrack(), completedSet("CS35200", "CS42200", "CS35400", "CS44800"))

	require.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"CS35200", "CS42200"}, res.Groups[0].Consumed)
	assert.Equal(t, []string{"CS35400", "CS44800"}, res.Groups[1].Consumed)
	assert.True(t, res.Complete())
}

func TestEvaluateNeverDoubleCounts(t *testing.T) {
	t.Parallel()

	// CS42200 appears in both groups. The first group consumes it, so the
	// second group must not see it.
	res := Evaluate(systemsTrack(), completedSet("CS35200", "CS42200", "CS35400"))

	assert.Equal(t, []string{"CS35200", "CS42200"}, res.Groups[0].Consumed)
	assert.Equal(t, []string{"CS35400"}, res.Groups[1].Consumed)
	assert.Equal(t, 1, res.Groups[1].Remaining)
	assert.False(t, res.Complete())

	// Every consumed course maps to exactly one group.
	assert.Equal(t, "required", res.Consumed["CS42200"])
}

func TestEvaluateTakesAscendingWithinGroup(t *testing.T) {
	t.Parallel()

	tr := model.Track{
		ID: "ml",
		Groups: []model.TrackGroup{
			{Key: "pick_one", Need: 1, Courses: []string{"CS47300", "CS37300", "CS44800"}},
		},
	}
	res := Evaluate(tr, completedSet("CS47300", "CS37300"))
	assert.Equal(t, []string{"CS37300"}, res.Groups[0].Consumed)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	done := completedSet("CS35200", "CS42200", "CS35400", "CS45600")
	first := Evaluate(systemsTrack(), done)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Evaluate(systemsTrack(), done))
	}
}

func TestEvaluateEmptyTranscript(t *testing.T) {
	t.Parallel()

	res := Evaluate(systemsTrack(), nil)
	assert.False(t, res.Complete())
	for _, g := range res.Groups {
		assert.Empty(t, g.Consumed)
		assert.Equal(t, g.Need, g.Remaining)
	}
}

func TestUnmetExcludesConsumedCourses(t *testing.T) {
	t.Parallel()

	res := Evaluate(systemsTrack(), completedSet("CS35200", "CS42200"))
	open := res.Unmet(systemsTrack())

	require.Contains(t, open, "choose_two")
	// CS42200 went to the required group, so it cannot fill choose_two.
	assert.Equal(t, []string{"CS35400", "CS44800", "CS45600"}, open["choose_two"])
	assert.NotContains(t, open, "required")
}

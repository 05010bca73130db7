package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, GradeC.AtLeast(GradeCMinus))
	assert.True(t, GradeCPlus.AtLeast(GradeC))
	assert.False(t, GradeCMinus.AtLeast(GradeC))
	assert.False(t, GradeC.AtLeast(GradeCPlus))
	assert.True(t, GradeA.AtLeast(GradeAMinus))
	assert.True(t, GradeDMinus.AtLeast(GradeDMinus))
}

func TestIncompleteGradesNeverSatisfy(t *testing.T) {
	t.Parallel()

	// F, W and I fail every threshold, even one they would clear by ordinal.
	for _, g := range []Grade{GradeF, GradeW, GradeI} {
		assert.False(t, g.AtLeast(GradeF), "%s must not satisfy F", g)
		assert.False(t, g.AtLeast(GradeDMinus), "%s must not satisfy D-", g)
		assert.True(t, g.Incomplete())
	}
}

func TestGradeValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, GradeBPlus.Valid())
	assert.False(t, Grade("A+").Valid())
	assert.False(t, Grade("").Valid())
	assert.False(t, Grade("pass").Valid())
}

package model

// Grade is a letter grade on the fixed ordinal scale used for prerequisite
// thresholds. F, W and I are "incomplete" grades: they never satisfy a
// threshold regardless of their ordinal position.
type Grade string

const (
	GradeF      Grade = "F"
	GradeW      Grade = "W"
	GradeI      Grade = "I"
	GradeDMinus Grade = "D-"
	GradeD      Grade = "D"
	GradeDPlus  Grade = "D+"
	GradeCMinus Grade = "C-"
	GradeC      Grade = "C"
	GradeCPlus  Grade = "C+"
	GradeBMinus Grade = "B-"
	GradeB      Grade = "B"
	GradeBPlus  Grade = "B+"
	GradeAMinus Grade = "A-"
	GradeA      Grade = "A"
)

// gradeOrdinal fixes the comparison scale. W and I share one slot above F.
var gradeOrdinal = map[Grade]int{
	GradeF:      0,
	GradeW:      1,
	GradeI:      1,
	GradeDMinus: 2,
	GradeD:      3,
	GradeDPlus:  4,
	GradeCMinus: 5,
	GradeC:      6,
	GradeCPlus:  7,
	GradeBMinus: 8,
	GradeB:      9,
	GradeBPlus:  10,
	GradeAMinus: 11,
	GradeA:      12,
}

// Valid reports whether g is a known letter grade.
func (g Grade) Valid() bool {
	_, ok := gradeOrdinal[g]
	return ok
}

// Incomplete reports whether g is one of the grades (F, W, I) that can never
// satisfy a prerequisite threshold.
func (g Grade) Incomplete() bool {
	return g == GradeF || g == GradeW || g == GradeI
}

// AtLeast reports whether g meets or exceeds min on the ordinal scale.
// Incomplete grades fail every threshold, overriding the ordinal comparison.
func (g Grade) AtLeast(min Grade) bool {
	if g.Incomplete() {
		return false
	}
	go1, ok1 := gradeOrdinal[g]
	go2, ok2 := gradeOrdinal[min]
	if !ok1 || !ok2 {
		return false
	}
	return go1 >= go2
}

package model

// CourseResult records a completed course on a student's transcript.
type CourseResult struct {
	Grade Grade `json:"grade"`
	Term  Term  `json:"term"`
}

// StudentProfile is the planner's view of one student. It is supplied by
// an external producer (transcript parser / auth layer); the planner only
// consumes this shape.
type StudentProfile struct {
	StudentID     string                  `json:"student_id,omitempty"`
	Completed     map[string]CourseResult `json:"completed"`
	InProgress    []string                `json:"in_progress,omitempty"`
	DeclaredTrack *string                 `json:"declared_track,omitempty"`
	GPA           float64                 `json:"gpa,omitempty"`
	StartTerm     Term                    `json:"start_term"`
}

// Constraints narrows the scheduler's search for one request.
type Constraints struct {
	TargetGradTerm Term `json:"target_grad_term,omitempty"`
	MaxCredits     int  `json:"max_credits,omitempty"`
	SummerOK       bool `json:"summer_ok,omitempty"`
	Pace           Pace `json:"pace,omitempty"`
}

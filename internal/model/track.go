package model

// TrackGroup is one requirement bucket: pick Need courses from Courses.
// Group order within a track is significant and fixed by configuration.
type TrackGroup struct {
	Key     string   `json:"key"`
	Need    int      `json:"need"`
	Courses []string `json:"courses"`
}

// Track is an ordered list of requirement buckets for one specialization.
type Track struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Groups []TrackGroup `json:"groups"`
}

// Curriculum describes the degree requirements shared by all tracks:
// the core course list, the elective pool and credit total, and the
// milestone course whose completion obliges a track declaration.
type Curriculum struct {
	Core            []string `json:"core"`
	ElectivePool    []string `json:"elective_pool"`
	ElectiveCredits int      `json:"elective_credits"`
	MilestoneCourse string   `json:"milestone_course"`
}

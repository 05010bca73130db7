package model

import "time"

// Course is one catalog entry. Immutable once loaded into a snapshot.
type Course struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Credits int      `json:"credits"`
	Level   int      `json:"level"`
	Offered []Season `json:"offered,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// OfferedIn reports whether the course runs in the given season.
// An empty offering pattern means the course runs every term.
func (c Course) OfferedIn(s Season) bool {
	if len(c.Offered) == 0 {
		return true
	}
	for _, o := range c.Offered {
		if o == s {
			return true
		}
	}
	return false
}

// CourseAlias maps an informal short code to a canonical course id.
type CourseAlias struct {
	Alias    string `json:"alias"`
	CourseID string `json:"course_id"`
}

// Package catalog holds the immutable course catalog and the snapshot
// store it is published through. A snapshot is built once at the ingest
// boundary and never mutated; readers always see a complete, consistent
// catalog.
package catalog

import (
	"sort"
	"strings"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

// Catalog is a static lookup of course id to course, plus the alias table
// mapping informal short codes to canonical ids.
type Catalog struct {
	courses map[string]model.Course
	aliases map[string]string
}

// NewCatalog builds a catalog from course rows and alias rows. Aliases
// referencing unknown courses are a configuration error.
func NewCatalog(courses []model.Course, aliases []model.CourseAlias) (*Catalog, error) {
	c := &Catalog{
		courses: make(map[string]model.Course, len(courses)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, course := range courses {
		if course.ID == "" {
			return nil, apperrors.NewConfigError("course with empty id")
		}
		if course.Credits <= 0 {
			return nil, apperrors.NewConfigError("course %s has non-positive credits", course.ID)
		}
		if _, dup := c.courses[course.ID]; dup {
			return nil, apperrors.NewConfigError("duplicate course id %s", course.ID)
		}
		c.courses[course.ID] = course
	}
	for _, a := range aliases {
		key := normalizeCode(a.Alias)
		if _, ok := c.courses[a.CourseID]; !ok {
			return nil, apperrors.NewConfigError("alias %s references unknown course %s", a.Alias, a.CourseID)
		}
		c.aliases[key] = a.CourseID
	}
	return c, nil
}

// Resolve maps an informal or canonical course code to its canonical id.
// Resolution happens before any graph or bucket lookup, for both profile
// input and rule definitions.
func (c *Catalog) Resolve(code string) (string, bool) {
	norm := normalizeCode(code)
	if _, ok := c.courses[norm]; ok {
		return norm, true
	}
	if id, ok := c.aliases[norm]; ok {
		return id, true
	}
	return "", false
}

// Course returns a course by canonical id.
func (c *Catalog) Course(id string) (model.Course, bool) {
	course, ok := c.courses[id]
	return course, ok
}

// Has reports whether id is a known canonical course id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.courses[id]
	return ok
}

// Credits returns the credit value for a course, 0 if unknown.
func (c *Catalog) Credits(id string) int {
	return c.courses[id].Credits
}

// Len returns the number of courses in the catalog.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// IDs returns all canonical course ids in ascending order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.courses))
	for id := range c.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// normalizeCode upper-cases and strips spaces so "cs 180" and "CS180"
// resolve identically.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}

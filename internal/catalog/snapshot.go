package catalog

import (
	"sync/atomic"
	"time"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/prereq"
)

// Snapshot is the immutable planning state published by the ingest
// boundary: catalog, compiled prerequisite graph, track definitions,
// curriculum and policy. It is replaced wholesale, never mutated.
type Snapshot struct {
	Version    int64
	BuiltAt    time.Time
	Catalog    *Catalog
	Graph      *prereq.Graph
	Tracks     map[string]model.Track
	Curriculum model.Curriculum
	Policy     model.Policy
}

// BuildSnapshot validates and assembles a snapshot from raw ingest rows.
// Any configuration error rejects the whole build; the caller keeps
// serving the previous good snapshot.
func BuildSnapshot(
	version int64,
	courses []model.Course,
	aliases []model.CourseAlias,
	rules []model.PrereqRule,
	tracks []model.Track,
	curriculum model.Curriculum,
	policy model.Policy,
) (*Snapshot, error) {
	cat, err := NewCatalog(courses, aliases)
	if err != nil {
		return nil, err
	}

	graph, err := prereq.Build(cat, rules, policy.MinGradeDefault)
	if err != nil {
		return nil, err
	}

	trackIndex := make(map[string]model.Track, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			return nil, apperrors.NewConfigError("track with empty id")
		}
		if _, dup := trackIndex[t.ID]; dup {
			return nil, apperrors.NewConfigError("duplicate track id %s", t.ID)
		}
		for gi, grp := range t.Groups {
			if grp.Need <= 0 {
				return nil, apperrors.NewConfigError("track %s group %s: need must be positive", t.ID, grp.Key)
			}
			resolved := make([]string, 0, len(grp.Courses))
			for _, code := range grp.Courses {
				id, ok := cat.Resolve(code)
				if !ok {
					return nil, apperrors.NewConfigError("track %s group %s references unknown course %q", t.ID, grp.Key, code)
				}
				resolved = append(resolved, id)
			}
			t.Groups[gi].Courses = resolved
		}
		trackIndex[t.ID] = t
	}

	curriculum.Core, err = resolveAll(cat, "curriculum core", curriculum.Core)
	if err != nil {
		return nil, err
	}
	curriculum.ElectivePool, err = resolveAll(cat, "elective pool", curriculum.ElectivePool)
	if err != nil {
		return nil, err
	}
	if curriculum.MilestoneCourse != "" {
		id, ok := cat.Resolve(curriculum.MilestoneCourse)
		if !ok {
			return nil, apperrors.NewConfigError("milestone course %q unknown", curriculum.MilestoneCourse)
		}
		curriculum.MilestoneCourse = id
	}

	if policy.MaxCreditsPerTerm <= 0 {
		return nil, apperrors.NewConfigError("policy: max_credits_per_term must be positive")
	}
	if policy.MinGradeDefault != "" && !policy.MinGradeDefault.Valid() {
		return nil, apperrors.NewConfigError("policy: invalid default min grade %q", policy.MinGradeDefault)
	}

	return &Snapshot{
		Version:    version,
		BuiltAt:    time.Now().UTC(),
		Catalog:    cat,
		Graph:      graph,
		Tracks:     trackIndex,
		Curriculum: curriculum,
		Policy:     policy,
	}, nil
}

func resolveAll(cat *Catalog, what string, codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		id, ok := cat.Resolve(code)
		if !ok {
			return nil, apperrors.NewConfigError("%s references unknown course %q", what, code)
		}
		out = append(out, id)
	}
	return out, nil
}

// Store publishes snapshots atomically. Readers acquire a snapshot once
// per request and keep it for the whole request; a concurrent publish is
// never visible mid-request.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty snapshot store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the latest published snapshot, nil before first publish.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Publish swaps in a new snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

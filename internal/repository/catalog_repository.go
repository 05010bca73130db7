package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/compass-backend/internal/model"
)

// CatalogRepository loads the raw snapshot configuration rows: courses,
// aliases, prerequisite rules, tracks, curriculum and policy.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, credits, level, offered FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		var offered []string
		if err := rows.Scan(&c.ID, &c.Title, &c.Credits, &c.Level, &offered); err != nil {
			return nil, err
		}
		for _, s := range offered {
			c.Offered = append(c.Offered, model.Season(s))
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CatalogRepository) GetAliases(ctx context.Context) ([]model.CourseAlias, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT alias, course_id FROM course_aliases ORDER BY alias ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []model.CourseAlias
	for rows.Next() {
		var a model.CourseAlias
		if err := rows.Scan(&a.Alias, &a.CourseID); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// GetPrereqRules returns every prerequisite rule with its expression tree
// decoded from JSONB.
func (r *CatalogRepository) GetPrereqRules(ctx context.Context) ([]model.PrereqRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT course_id, root FROM prereq_rules ORDER BY course_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.PrereqRule
	for rows.Next() {
		var rule model.PrereqRule
		var raw []byte
		if err := rows.Scan(&rule.CourseID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rule.Root); err != nil {
			return nil, fmt.Errorf("decode rule for %s: %w", rule.CourseID, err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetTracks returns every track with its groups in declared (place) order.
func (r *CatalogRepository) GetTracks(ctx context.Context) ([]model.Track, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tracks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []model.Track
	index := make(map[string]int)
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		index[t.ID] = len(tracks)
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groupRows, err := r.pool.Query(ctx,
		`SELECT track_id, key, need, courses FROM track_groups ORDER BY track_id ASC, place ASC`)
	if err != nil {
		return nil, err
	}
	defer groupRows.Close()

	for groupRows.Next() {
		var trackID string
		var g model.TrackGroup
		if err := groupRows.Scan(&trackID, &g.Key, &g.Need, &g.Courses); err != nil {
			return nil, err
		}
		i, ok := index[trackID]
		if !ok {
			return nil, fmt.Errorf("track group %s references unknown track %s", g.Key, trackID)
		}
		tracks[i].Groups = append(tracks[i].Groups, g)
	}
	return tracks, groupRows.Err()
}

// GetCurriculum returns the single curriculum row.
func (r *CatalogRepository) GetCurriculum(ctx context.Context) (model.Curriculum, error) {
	var cur model.Curriculum
	err := r.pool.QueryRow(ctx,
		`SELECT core, elective_pool, elective_credits, COALESCE(milestone_course, '')
		 FROM curriculum LIMIT 1`).
		Scan(&cur.Core, &cur.ElectivePool, &cur.ElectiveCredits, &cur.MilestoneCourse)
	return cur, err
}

// GetPolicy returns the single policy row with pace targets decoded from
// JSONB.
func (r *CatalogRepository) GetPolicy(ctx context.Context) (model.Policy, error) {
	var p model.Policy
	var minGrade string
	var paceRaw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT max_credits_per_term, summer_allowed_default, min_grade_default,
		        overload_requires_approval, pace_credit_targets
		 FROM policy LIMIT 1`).
		Scan(&p.MaxCreditsPerTerm, &p.SummerAllowedDefault, &minGrade,
			&p.OverloadRequiresApproval, &paceRaw)
	if err != nil {
		return model.Policy{}, err
	}
	p.MinGradeDefault = model.Grade(minGrade)
	if len(paceRaw) > 0 {
		if err := json.Unmarshal(paceRaw, &p.PaceCreditTargets); err != nil {
			return model.Policy{}, fmt.Errorf("decode pace targets: %w", err)
		}
	}
	return p, nil
}

// NextSnapshotVersion bumps and returns the snapshot version counter.
func (r *CatalogRepository) NextSnapshotVersion(ctx context.Context) (int64, error) {
	var version int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('snapshot_version_seq')`).Scan(&version)
	return version, err
}

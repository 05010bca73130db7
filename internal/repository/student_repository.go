package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/compass-backend/internal/model"
)

// StudentRepository stores student planning profiles: the transcript rows
// and declaration data the planner consumes.
type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetProfile assembles a full StudentProfile. Returns nil when the student
// is unknown.
func (r *StudentRepository) GetProfile(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	var declaredTrack *string
	var startYear int
	var startSeason string

	err := r.pool.QueryRow(ctx,
		`SELECT id, declared_track, gpa, start_year, start_season
		 FROM students WHERE id = $1`, studentID).
		Scan(&profile.StudentID, &declaredTrack, &profile.GPA, &startYear, &startSeason)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load student %s: %w", studentID, err)
	}

	profile.DeclaredTrack = declaredTrack
	profile.StartTerm = model.Term{Year: startYear, Season: model.Season(startSeason)}
	profile.Completed = make(map[string]model.CourseResult)

	rows, err := r.pool.Query(ctx,
		`SELECT course_id, grade, term_year, term_season, in_progress
		 FROM student_courses WHERE student_id = $1 ORDER BY course_id ASC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("load transcript for %s: %w", studentID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var courseID string
		var grade, termSeason *string
		var year *int
		var inProgress bool
		if err := rows.Scan(&courseID, &grade, &year, &termSeason, &inProgress); err != nil {
			return nil, err
		}
		if inProgress {
			profile.InProgress = append(profile.InProgress, courseID)
			continue
		}
		result := model.CourseResult{}
		if grade != nil {
			result.Grade = model.Grade(*grade)
		}
		if year != nil && termSeason != nil {
			result.Term = model.Term{Year: *year, Season: model.Season(*termSeason)}
		}
		profile.Completed[courseID] = result
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &profile, nil
}

// SaveProfile replaces a student's stored profile wholesale. Transcript
// rows are rewritten inside one transaction.
func (r *StudentRepository) SaveProfile(ctx context.Context, profile model.StudentProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO students (id, declared_track, gpa, start_year, start_season)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   declared_track = EXCLUDED.declared_track,
		   gpa = EXCLUDED.gpa,
		   start_year = EXCLUDED.start_year,
		   start_season = EXCLUDED.start_season,
		   updated_at = NOW()`,
		profile.StudentID, profile.DeclaredTrack, profile.GPA,
		profile.StartTerm.Year, string(profile.StartTerm.Season)); err != nil {
		return fmt.Errorf("upsert student %s: %w", profile.StudentID, err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM student_courses WHERE student_id = $1`, profile.StudentID); err != nil {
		return fmt.Errorf("clear transcript for %s: %w", profile.StudentID, err)
	}

	for courseID, result := range profile.Completed {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_courses (student_id, course_id, grade, term_year, term_season, in_progress)
			 VALUES ($1, $2, $3, $4, $5, FALSE)`,
			profile.StudentID, courseID, string(result.Grade),
			result.Term.Year, string(result.Term.Season)); err != nil {
			return fmt.Errorf("insert result %s/%s: %w", profile.StudentID, courseID, err)
		}
	}
	for _, courseID := range profile.InProgress {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_courses (student_id, course_id, in_progress)
			 VALUES ($1, $2, TRUE)
			 ON CONFLICT (student_id, course_id) DO UPDATE SET in_progress = TRUE`,
			profile.StudentID, courseID); err != nil {
			return fmt.Errorf("insert in-progress %s/%s: %w", profile.StudentID, courseID, err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteProfile removes a student and their transcript.
func (r *StudentRepository) DeleteProfile(ctx context.Context, studentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID)
	return err
}

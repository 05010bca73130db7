package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/database"
	"github.com/campusflow/compass-backend/internal/logger"
	"github.com/campusflow/compass-backend/internal/model"
)

// catalogFile is the on-disk shape of a full catalog export. Everything is
// replaced in one transaction so a half-loaded catalog never becomes a
// snapshot.
type catalogFile struct {
	Courses    []model.Course      `json:"courses"`
	Aliases    []model.CourseAlias `json:"aliases"`
	Rules      []model.PrereqRule  `json:"prereq_rules"`
	Tracks     []model.Track       `json:"tracks"`
	Curriculum model.Curriculum    `json:"curriculum"`
	Policy     model.Policy        `json:"policy"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "catalog.json", "Path to catalog export file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read catalog file")
	}

	var cat catalogFile
	if err := json.Unmarshal(raw, &cat); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse catalog file")
	}
	if len(cat.Courses) == 0 {
		log.Fatal().Msg("Catalog file contains no courses")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	fmt.Printf("=== Ingesting Catalog (%d courses, %d tracks) ===\n",
		len(cat.Courses), len(cat.Tracks))

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := loadCatalog(ctx, tx, &cat); err != nil {
		log.Fatal().Err(err).Msg("Catalog load failed, rolled back")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit catalog")
	}

	// Ask the snapshot worker to rebuild from the new rows.
	if err := rdb.RPush(ctx, config.WorkerKey.SnapshotRefreshQueue, time.Now().Format(time.RFC3339)).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to request snapshot refresh, trigger one manually")
	}

	fmt.Println("\nIngest completed! Snapshot refresh requested.")
}

func loadCatalog(ctx context.Context, tx pgx.Tx, cat *catalogFile) error {
	// Replace wholesale. Catalog tables are small and only touched here.
	for _, table := range []string{"track_groups", "tracks", "prereq_rules", "course_aliases", "courses", "curriculum", "policy"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range cat.Courses {
		offered := make([]string, len(c.Offered))
		for i, s := range c.Offered {
			offered[i] = string(s)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO courses (id, title, credits, level, offered) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.Title, c.Credits, c.Level, offered); err != nil {
			return fmt.Errorf("insert course %s: %w", c.ID, err)
		}
	}

	for _, a := range cat.Aliases {
		if _, err := tx.Exec(ctx,
			`INSERT INTO course_aliases (alias, course_id) VALUES ($1, $2)`,
			a.Alias, a.CourseID); err != nil {
			return fmt.Errorf("insert alias %s: %w", a.Alias, err)
		}
	}

	for _, r := range cat.Rules {
		root, err := json.Marshal(r.Root)
		if err != nil {
			return fmt.Errorf("encode rule for %s: %w", r.CourseID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO prereq_rules (course_id, root) VALUES ($1, $2)`,
			r.CourseID, root); err != nil {
			return fmt.Errorf("insert rule for %s: %w", r.CourseID, err)
		}
	}

	for _, t := range cat.Tracks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tracks (id, name) VALUES ($1, $2)`, t.ID, t.Name); err != nil {
			return fmt.Errorf("insert track %s: %w", t.ID, err)
		}
		for place, g := range t.Groups {
			if _, err := tx.Exec(ctx,
				`INSERT INTO track_groups (track_id, key, need, place, courses) VALUES ($1, $2, $3, $4, $5)`,
				t.ID, g.Key, g.Need, place, g.Courses); err != nil {
				return fmt.Errorf("insert group %s/%s: %w", t.ID, g.Key, err)
			}
		}
	}

	var milestone *string
	if cat.Curriculum.MilestoneCourse != "" {
		milestone = &cat.Curriculum.MilestoneCourse
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO curriculum (core, elective_pool, elective_credits, milestone_course)
		 VALUES ($1, $2, $3, $4)`,
		cat.Curriculum.Core, cat.Curriculum.ElectivePool,
		cat.Curriculum.ElectiveCredits, milestone); err != nil {
		return fmt.Errorf("insert curriculum: %w", err)
	}

	pace, err := json.Marshal(cat.Policy.PaceCreditTargets)
	if err != nil {
		return fmt.Errorf("encode pace targets: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO policy (max_credits_per_term, summer_allowed_default, min_grade_default,
		                     overload_requires_approval, pace_credit_targets)
		 VALUES ($1, $2, $3, $4, $5)`,
		cat.Policy.MaxCreditsPerTerm, cat.Policy.SummerAllowedDefault,
		string(cat.Policy.MinGradeDefault), cat.Policy.OverloadRequiresApproval, pace); err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}

	return nil
}

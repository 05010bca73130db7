package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusflow/compass-backend/internal/model"
)

// PlanAudit is one row of the plan audit trail persisted by the audit
// worker after a plan is computed.
type PlanAudit struct {
	ID              uuid.UUID `json:"id"`
	StudentID       string    `json:"student_id"`
	SnapshotVersion int64     `json:"snapshot_version"`
	TermCount       int       `json:"term_count"`
	TotalCredits    int       `json:"total_credits"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewPlanAudit derives an audit row from a computed plan.
func NewPlanAudit(studentID string, plan model.Plan) PlanAudit {
	return PlanAudit{
		ID:              plan.ID,
		StudentID:       studentID,
		SnapshotVersion: plan.SnapshotVersion,
		TermCount:       len(plan.Terms),
		TotalCredits:    plan.TotalCredits,
		CreatedAt:       time.Now().UTC(),
	}
}

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// BulkInsertAudits writes a batch of audit rows in one statement.
func (r *PlanRepository) BulkInsertAudits(ctx context.Context, batch []PlanAudit) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	students := make([]string, 0, n)
	versions := make([]int64, 0, n)
	termCounts := make([]int, 0, n)
	credits := make([]int, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, a := range batch {
		ids = append(ids, a.ID)
		students = append(students, a.StudentID)
		versions = append(versions, a.SnapshotVersion)
		termCounts = append(termCounts, a.TermCount)
		credits = append(credits, a.TotalCredits)
		createdAts = append(createdAts, a.CreatedAt)
	}

	query := `
		INSERT INTO plan_audits (id, student_id, snapshot_version, term_count, total_credits, created_at)
		SELECT u.id, u.student_id, u.snapshot_version, u.term_count, u.total_credits, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::bigint[],
			$4::int[],
			$5::int[],
			$6::timestamptz[]
		) AS u (id, student_id, snapshot_version, term_count, total_credits, created_at)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, ids, students, versions, termCounts, credits, createdAts)
	return err
}

// InsertAudit is the single-row fallback when a bulk write fails.
func (r *PlanRepository) InsertAudit(ctx context.Context, a PlanAudit) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO plan_audits (id, student_id, snapshot_version, term_count, total_credits, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.StudentID, a.SnapshotVersion, a.TermCount, a.TotalCredits, a.CreatedAt)
	return err
}

// GetRecentAudits returns the newest audit rows, most recent first.
func (r *PlanRepository) GetRecentAudits(ctx context.Context, limit int) ([]PlanAudit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, snapshot_version, term_count, total_credits, created_at
		 FROM plan_audits ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []PlanAudit
	for rows.Next() {
		var a PlanAudit
		if err := rows.Scan(&a.ID, &a.StudentID, &a.SnapshotVersion, &a.TermCount, &a.TotalCredits, &a.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/planner"
	"github.com/campusflow/compass-backend/internal/repository"
)

// PlanResult bundles a computed plan with its advisories.
type PlanResult struct {
	Plan       model.Plan       `json:"plan"`
	Advisories []model.Advisory `json:"advisories"`
}

// planEvent is published on the plan channel for monitor streams.
type planEvent struct {
	PlanID          uuid.UUID `json:"plan_id"`
	StudentID       string    `json:"student_id,omitempty"`
	SnapshotVersion int64     `json:"snapshot_version"`
	TermCount       int       `json:"term_count"`
	TotalCredits    int       `json:"total_credits"`
	AdvisoryCount   int       `json:"advisory_count"`
	ComputedAt      time.Time `json:"computed_at"`
}

// PlannerService runs plan computation and validation against the current
// snapshot. Each request pins one snapshot for its whole lifetime, so a
// concurrent rebuild never changes a result mid-request.
type PlannerService struct {
	cfg   *config.Config
	store *catalog.Store
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewPlannerService(cfg *config.Config, store *catalog.Store, rdb *redis.Client, log zerolog.Logger) *PlannerService {
	return &PlannerService{
		cfg:   cfg,
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "planner_service").Logger(),
	}
}

// ComputePlan normalizes the profile, runs the scheduler and returns the
// plan with its advisories. The plan id is assigned here, not by the
// scheduler, so plan computation itself stays deterministic.
func (s *PlannerService) ComputePlan(ctx context.Context, req model.ComputePlanRequest) (*PlanResult, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}

	profile, err := planner.NormalizeProfile(snap, req.Profile)
	if err != nil {
		return nil, err
	}
	if err := planner.ValidateConstraints(snap, req.Constraints); err != nil {
		return nil, err
	}

	plan, advisories := planner.New(snap).ComputePlan(profile, req.Constraints)
	plan.ID = uuid.New()

	result := &PlanResult{Plan: plan, Advisories: advisories}
	s.publishSideEffects(ctx, profile.StudentID, result)
	return result, nil
}

// ValidatePlan checks an externally proposed term assignment and returns
// every violation as an advisory.
func (s *PlannerService) ValidatePlan(_ context.Context, req model.ValidatePlanRequest) ([]model.Advisory, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}

	profile, err := planner.NormalizeProfile(snap, req.Profile)
	if err != nil {
		return nil, err
	}

	advisories := planner.Validate(snap, profile, req.Terms)
	if advisories == nil {
		advisories = []model.Advisory{}
	}
	return advisories, nil
}

// publishSideEffects caches the plan payload, enqueues the audit row and
// announces the computation. All of it is best-effort: a Redis outage must
// not fail a successfully computed plan.
func (s *PlannerService) publishSideEffects(ctx context.Context, studentID string, result *PlanResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.PlanKey(result.Plan.ID.String()), raw, s.cfg.SnapshotCacheTTL)

	audit := repository.NewPlanAudit(studentID, result.Plan)
	if auditRaw, err := json.Marshal(audit); err == nil {
		pipe.RPush(ctx, config.WorkerKey.PlanAuditQueue, auditRaw)
	}

	event := planEvent{
		PlanID:          result.Plan.ID,
		StudentID:       studentID,
		SnapshotVersion: result.Plan.SnapshotVersion,
		TermCount:       len(result.Plan.Terms),
		TotalCredits:    result.Plan.TotalCredits,
		AdvisoryCount:   len(result.Advisories),
		ComputedAt:      time.Now().UTC(),
	}
	if eventRaw, err := json.Marshal(event); err == nil {
		pipe.Publish(ctx, config.CacheKey.PlanEventChannel(), eventRaw)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("plan_id", result.Plan.ID.String()).Msg("plan side effects failed")
	}
}

// GetCachedPlan fetches a previously computed plan payload by id.
func (s *PlannerService) GetCachedPlan(ctx context.Context, planID string) (*PlanResult, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.PlanKey(planID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result PlanResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

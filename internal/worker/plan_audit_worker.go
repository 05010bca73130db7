package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/repository"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// PlanAuditWorker drains the plan audit queue and persists audit rows in
// batches. Plan computation never blocks on this write path.
type PlanAuditWorker struct {
	planRepo *repository.PlanRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewPlanAuditWorker(planRepo *repository.PlanRepository, rdb *redis.Client, log zerolog.Logger) *PlanAuditWorker {
	return &PlanAuditWorker{
		planRepo: planRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "plan_audit_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *PlanAuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("PlanAuditWorker started")

	batch := make([]repository.PlanAudit, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.PlanAuditQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a repository.PlanAudit
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, a)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback and requeue
// ----------------------------------------------------------------

func (w *PlanAuditWorker) flushSafe(ctx context.Context, batch []repository.PlanAudit) {
	if len(batch) == 0 {
		return
	}

	if err := w.planRepo.BulkInsertAudits(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk audit insert failed, using fallback")

		for _, a := range batch {
			if err := w.planRepo.InsertAudit(ctx, a); err != nil {
				w.log.Error().Err(err).Str("plan_id", a.ID.String()).Msg("single insert failed — requeueing")
				raw, _ := json.Marshal(a)
				w.rdb.RPush(ctx, config.WorkerKey.PlanAuditQueue, raw)
			}
		}
	}
}

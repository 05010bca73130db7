package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/service"
)

const (
	RefreshPollTimeout = 1 * time.Second
	// refreshCooldown coalesces bursts of refresh requests into one
	// rebuild.
	refreshCooldown = 5 * time.Second
)

// SnapshotWorker listens on the refresh queue and rebuilds the snapshot.
// Ingest tooling pushes a marker after writing configuration rows instead
// of calling the server directly.
type SnapshotWorker struct {
	snapshots *service.SnapshotService
	rdb       *redis.Client
	log       zerolog.Logger
}

func NewSnapshotWorker(snapshots *service.SnapshotService, rdb *redis.Client, log zerolog.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		snapshots: snapshots,
		rdb:       rdb,
		log:       log.With().Str("component", "snapshot_worker").Logger(),
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SnapshotWorker started")

	var lastRebuild time.Time

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return

		default:
			item, err := w.rdb.BLPop(ctx, RefreshPollTimeout, config.WorkerKey.SnapshotRefreshQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			if time.Since(lastRebuild) < refreshCooldown {
				continue
			}

			if _, err := w.snapshots.Rebuild(ctx); err != nil {
				// The previous snapshot keeps serving; the rejected
				// configuration stays in the database for inspection.
				w.log.Error().Err(err).Msg("snapshot rebuild failed")
				continue
			}
			lastRebuild = time.Now()
		}
	}
}

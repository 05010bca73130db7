package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/repository"
)

// ErrSnapshotUnavailable is returned before the first successful build.
var ErrSnapshotUnavailable = errors.New("no snapshot published")

// SnapshotSummary is the cached, wire-friendly description of a published
// snapshot.
type SnapshotSummary struct {
	Version    int64     `json:"version"`
	BuiltAt    time.Time `json:"built_at"`
	CourseCnt  int       `json:"course_count"`
	TrackCnt   int       `json:"track_count"`
	CoreCnt    int       `json:"core_count"`
	ElectiveCr int       `json:"elective_credits"`
}

// SnapshotEvent is published on the snapshot channel after every
// successful rebuild.
type SnapshotEvent struct {
	Version int64     `json:"version"`
	BuiltAt time.Time `json:"built_at"`
}

// SnapshotService loads catalog configuration, builds immutable snapshots
// and publishes them. A failed build leaves the previous snapshot serving.
type SnapshotService struct {
	cfg         *config.Config
	catalogRepo *repository.CatalogRepository
	store       *catalog.Store
	rdb         *redis.Client
	log         zerolog.Logger
}

func NewSnapshotService(
	cfg *config.Config,
	catalogRepo *repository.CatalogRepository,
	store *catalog.Store,
	rdb *redis.Client,
	log zerolog.Logger,
) *SnapshotService {
	return &SnapshotService{
		cfg:         cfg,
		catalogRepo: catalogRepo,
		store:       store,
		rdb:         rdb,
		log:         log.With().Str("component", "snapshot_service").Logger(),
	}
}

// Current returns the latest published snapshot.
func (s *SnapshotService) Current() (*catalog.Snapshot, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}
	return snap, nil
}

// Rebuild loads every configuration table, validates and compiles a new
// snapshot, and publishes it atomically. On any configuration error the
// previous snapshot stays active and the error is returned to the caller.
func (s *SnapshotService) Rebuild(ctx context.Context) (*catalog.Snapshot, error) {
	courses, err := s.catalogRepo.GetCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	aliases, err := s.catalogRepo.GetAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	rules, err := s.catalogRepo.GetPrereqRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prereq rules: %w", err)
	}
	tracks, err := s.catalogRepo.GetTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	curriculum, err := s.catalogRepo.GetCurriculum(ctx)
	if err != nil {
		return nil, fmt.Errorf("load curriculum: %w", err)
	}
	policy, err := s.catalogRepo.GetPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	version, err := s.catalogRepo.NextSnapshotVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("next version: %w", err)
	}

	snap, err := catalog.BuildSnapshot(version, courses, aliases, rules, tracks, curriculum, policy)
	if err != nil {
		s.log.Error().Err(err).Int64("version", version).Msg("snapshot build rejected")
		return nil, err
	}

	s.store.Publish(snap)
	s.log.Info().
		Int64("version", snap.Version).
		Int("courses", snap.Catalog.Len()).
		Int("tracks", len(snap.Tracks)).
		Msg("snapshot published")

	s.cacheSummary(ctx, snap)
	s.announce(ctx, snap)
	return snap, nil
}

// Summary returns the current snapshot's summary, preferring the Redis
// copy so status polls skip snapshot traversal.
func (s *SnapshotService) Summary(ctx context.Context) (*SnapshotSummary, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, ErrSnapshotUnavailable
	}

	cached, err := s.rdb.Get(ctx, config.CacheKey.SnapshotSummaryKey(snap.Version)).Result()
	if err == nil {
		var sum SnapshotSummary
		if jerr := json.Unmarshal([]byte(cached), &sum); jerr == nil {
			return &sum, nil
		}
	}

	sum := s.buildSummary(snap)
	return &sum, nil
}

func (s *SnapshotService) buildSummary(snap *catalog.Snapshot) SnapshotSummary {
	return SnapshotSummary{
		Version:    snap.Version,
		BuiltAt:    snap.BuiltAt,
		CourseCnt:  snap.Catalog.Len(),
		TrackCnt:   len(snap.Tracks),
		CoreCnt:    len(snap.Curriculum.Core),
		ElectiveCr: snap.Curriculum.ElectiveCredits,
	}
}

func (s *SnapshotService) cacheSummary(ctx context.Context, snap *catalog.Snapshot) {
	sum := s.buildSummary(snap)
	raw, err := json.Marshal(sum)
	if err != nil {
		return
	}
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SnapshotSummaryKey(snap.Version), raw, s.cfg.SnapshotCacheTTL)
	pipe.Set(ctx, config.CacheKey.SnapshotCurrentVersionKey(), snap.Version, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Msg("snapshot summary cache write failed")
	}
}

func (s *SnapshotService) announce(ctx context.Context, snap *catalog.Snapshot) {
	raw, err := json.Marshal(SnapshotEvent{Version: snap.Version, BuiltAt: snap.BuiltAt})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SnapshotEventChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("snapshot event publish failed")
	}
}

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SnapshotSummaryKey returns the cache key for the serialized summary of a
// published snapshot version.
func (r *CacheKeyStruct) SnapshotSummaryKey(version int64) string {
	return fmt.Sprintf("snapshot:%d:summary", version)
}

// SnapshotCurrentVersionKey returns the cache key holding the latest
// published snapshot version.
func (r *CacheKeyStruct) SnapshotCurrentVersionKey() string {
	return "snapshot:current_version"
}

// QueryResultKey returns the cache key for an ad-hoc query result, keyed by
// the compiled statement's digest and snapshot version.
func (r *CacheKeyStruct) QueryResultKey(version int64, digest string) string {
	return fmt.Sprintf("query:%d:%s", version, digest)
}

// PlanKey returns the cache key for a computed plan.
func (r *CacheKeyStruct) PlanKey(planID string) string {
	return fmt.Sprintf("plan:%s:payload", planID)
}

// SessionKey returns the cache key marking a live token session, keyed by
// the token's JTI. Deleting it revokes the token before its expiry.
func (r *CacheKeyStruct) SessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// SnapshotEventChannel returns the Redis PubSub channel name for snapshot
// publication events consumed by monitor streams.
func (r *CacheKeyStruct) SnapshotEventChannel() string {
	return "snapshot:events"
}

// PlanEventChannel returns the Redis PubSub channel name for plan
// computation events consumed by monitor streams.
func (r *CacheKeyStruct) PlanEventChannel() string {
	return "plan:events"
}

var CacheKey = NewCacheKeyStruct()

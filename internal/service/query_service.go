package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/model"
	"github.com/campusflow/compass-backend/internal/query"
)

// queryCacheTTL keeps ad-hoc results hot briefly. Results are keyed by
// snapshot version, so a rebuild naturally invalidates them.
const queryCacheTTL = 30 * time.Second

// QueryResult is the wire shape of an executed ad-hoc query.
type QueryResult struct {
	SQL      string                   `json:"sql"`
	RowCount int                      `json:"row_count"`
	Rows     []map[string]interface{} `json:"rows"`
}

// QueryService compiles and executes structured queries against the
// whitelisted reporting surface.
type QueryService struct {
	cfg      *config.Config
	store    *catalog.Store
	executor *query.Executor
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewQueryService(cfg *config.Config, store *catalog.Store, executor *query.Executor, rdb *redis.Client, log zerolog.Logger) *QueryService {
	return &QueryService{
		cfg:      cfg,
		store:    store,
		executor: executor,
		rdb:      rdb,
		log:      log.With().Str("component", "query_service").Logger(),
	}
}

// Run compiles the request and executes it, consulting the Redis result
// cache first. Compilation failures surface as ValidationErrors before any
// I/O happens.
func (s *QueryService) Run(ctx context.Context, req model.QueryRequest) (*QueryResult, error) {
	compiled, err := query.Compile(req)
	if err != nil {
		return nil, err
	}

	version := int64(0)
	if snap := s.store.Current(); snap != nil {
		version = snap.Version
	}
	cacheKey := config.CacheKey.QueryResultKey(version, digest(compiled))

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var result QueryResult
		if jerr := json.Unmarshal([]byte(cached), &result); jerr == nil {
			return &result, nil
		}
	}

	rows, err := s.executor.Run(ctx, compiled)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{SQL: compiled.SQL, RowCount: len(rows), Rows: rows}
	if raw, err := json.Marshal(result); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, queryCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("query result cache write failed")
		}
	}
	return result, nil
}

// Explain compiles the request without executing it and returns the SQL
// template plus the parameter count. Useful for clients debugging a
// rejected query shape.
func (s *QueryService) Explain(req model.QueryRequest) (*QueryResult, error) {
	compiled, err := query.Compile(req)
	if err != nil {
		return nil, err
	}
	return &QueryResult{SQL: compiled.SQL, RowCount: len(compiled.Args)}, nil
}

// digest fingerprints a compiled query, template and arguments both, for
// cache keying.
func digest(c query.Compiled) string {
	h := sha256.New()
	h.Write([]byte(c.SQL))
	for _, arg := range c.Args {
		fmt.Fprintf(h, "|%v", arg)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

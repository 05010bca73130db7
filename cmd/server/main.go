package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusflow/compass-backend/internal/catalog"
	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/database"
	"github.com/campusflow/compass-backend/internal/handler"
	"github.com/campusflow/compass-backend/internal/logger"
	"github.com/campusflow/compass-backend/internal/query"
	"github.com/campusflow/compass-backend/internal/repository"
	"github.com/campusflow/compass-backend/internal/router"
	"github.com/campusflow/compass-backend/internal/service"
	"github.com/campusflow/compass-backend/internal/validator"
	"github.com/campusflow/compass-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Compass Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	catalogRepo := repository.NewCatalogRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	accountRepo := repository.NewServiceAccountRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	store := catalog.NewStore()
	executor := query.NewExecutor(pool, cfg.QueryTimeout, log)

	authService := service.NewAuthService(cfg, accountRepo, rdb)
	snapshotService := service.NewSnapshotService(cfg, catalogRepo, store, rdb, log)
	plannerService := service.NewPlannerService(cfg, store, rdb, log)
	queryService := service.NewQueryService(cfg, store, executor, rdb, log)
	studentService := service.NewStudentService(studentRepo, log)

	// ─── Build Initial Snapshot ───────────────────────────────────────
	// Publish a snapshot BEFORE accepting traffic so planning and catalog
	// endpoints are live from the first request. A failed build is not
	// fatal: the snapshot worker retries on the next refresh request.
	if _, err := snapshotService.Rebuild(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial snapshot build failed, serving without one")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(snapshotService),
		Plan:     handler.NewPlanHandler(plannerService),
		Query:    handler.NewQueryHandler(queryService),
		Snapshot: handler.NewSnapshotHandler(snapshotService, planRepo),
		Student:  handler.NewStudentHandler(studentService, plannerService),
		WS:       handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewPlanAuditWorker(planRepo, rdb, log)
	snapshotWorker := worker.NewSnapshotWorker(snapshotService, rdb, log)

	go auditWorker.Start(workerCtx)
	go snapshotWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

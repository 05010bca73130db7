package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusflow/compass-backend/internal/config"
	"github.com/campusflow/compass-backend/internal/handler"
	"github.com/campusflow/compass-backend/internal/middleware"
	"github.com/campusflow/compass-backend/internal/response"
	"github.com/campusflow/compass-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Plan     *handler.PlanHandler
	Query    *handler.QueryHandler
	Snapshot *handler.SnapshotHandler
	Student  *handler.StudentHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 2. Catalog Group (Public, Read-Only) ──────────────────────────
	// Catalog responses only change on snapshot publication; a short
	// client-side cache keeps browse traffic off the server.
	catalogAPI := router.Group("/api/v1/catalog")
	catalogAPI.Use(middleware.CacheControl(60))
	{
		catalogAPI.GET("/courses", handlers.Catalog.GetCourses)
		catalogAPI.GET("/courses/:code", handlers.Catalog.GetCourse)
		catalogAPI.GET("/tracks", handlers.Catalog.GetTracks)
		catalogAPI.GET("/tracks/:id", handlers.Catalog.GetTrack)
		catalogAPI.GET("/curriculum", handlers.Catalog.GetCurriculum)
	}

	// ─── 3. Planning Group (Service JWT) ───────────────────────────────
	plansAPI := router.Group("/api/v1/plans")
	plansAPI.Use(middleware.RequireServiceJWT(authService))
	{
		plansAPI.POST("/compute", handlers.Plan.Compute)
		plansAPI.POST("/validate", handlers.Plan.Validate)
		plansAPI.GET("/:id", handlers.Plan.Get)
	}

	// ─── 4. Student Group (Service JWT) ────────────────────────────────
	studentsAPI := router.Group("/api/v1/students")
	studentsAPI.Use(middleware.RequireServiceJWT(authService))
	{
		studentsAPI.GET("/:id/profile", handlers.Student.GetProfile)
		studentsAPI.PUT("/:id/profile", handlers.Student.SaveProfile)
		studentsAPI.DELETE("/:id/profile", handlers.Student.DeleteProfile)
		studentsAPI.POST("/:id/plan", handlers.Student.ComputePlan)
	}

	// ─── 5. Query Group (Service JWT) ──────────────────────────────────
	queryAPI := router.Group("/api/v1/query")
	queryAPI.Use(middleware.RequireServiceJWT(authService))
	{
		queryAPI.POST("", handlers.Query.Run)
		queryAPI.POST("/explain", handlers.Query.Explain)
	}

	// ─── 6. WebSocket Group (Service WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/monitor", handlers.WS.MonitorStream)
	}

	// ─── 7. Admin Group (Service JWT) ──────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireServiceJWT(authService))
	{
		adminAPI.POST("/snapshot/rebuild", handlers.Snapshot.Rebuild)
		adminAPI.GET("/snapshot/status", handlers.Snapshot.Status)
		adminAPI.GET("/plan-audits", handlers.Snapshot.PlanAudits)
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}

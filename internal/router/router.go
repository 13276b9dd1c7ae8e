package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/handler"
	"github.com/schoolsite/portal-backend/internal/logger"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/middleware"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/schoolsite/portal-backend/internal/response"
	"github.com/schoolsite/portal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminHandler
	AdminRole *handler.AdminRoleHandler
	AdminUser *handler.AdminUserHandler
	Content   *handler.ContentHandler
	Personnel *handler.PersonnelHandler
	Admission *handler.AdmissionHandler
	Storage   *handler.StorageHandler
	Profile   *handler.ProfileHandler
	WS        *handler.WSHandler
	System    *handler.SystemHandler
}

// Deps carries the shared collaborators the middleware chain needs.
type Deps struct {
	Config        *config.Config
	AuthService   *service.AuthService
	AccessService *service.AccessService
	Redis         *redis.Client
	Metrics       *metrics.Metrics
	Log           zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(d Deps, handlers *Handlers) *gin.Engine {
	cfg := d.Config
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderTokenFragment}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(d.Log))
	router.Use(d.Metrics.Middleware())
	router.Use(middleware.Brotli())

	// Uploaded files get UUID names and are never rewritten, so they cache for a year.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	requireSession := middleware.RequireSession(d.AuthService, d.AccessService, d.Log)

	// ─── 0. Browser callback ───────────────────────────────────────────
	router.GET("/auth/callback", middleware.NoStore(), handlers.Auth.Callback)

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(60))
	{
		publicAPI.GET("/deeplink", handlers.Content.DeepLink)
		publicAPI.GET("/personnel", handlers.Personnel.List)
		publicAPI.GET("/personnel/:id", handlers.Personnel.Get)
		publicAPI.GET("/:kind", handlers.Content.List)
		publicAPI.GET("/:kind/:id", handlers.Content.Get)
	}
	router.POST("/api/v1/public/admissions", handlers.Admission.Submit)

	// ─── 2. Auth Group (Rate Limited) ──────────────────────────────────
	authLimiter := middleware.NewRateLimiter(d.Redis, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow, d.Metrics, d.Log)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware(), middleware.NoStore(), middleware.OptionalSession(d.AuthService))
	{
		auth.POST("/sign-up", handlers.Auth.SignUp)
		auth.POST("/sign-in", handlers.Auth.SignIn)
		auth.POST("/token", handlers.Auth.ExchangeToken)
		auth.GET("/session", handlers.Auth.GetSession)
		auth.POST("/resolve", handlers.Auth.Resolve)
		auth.POST("/sign-out", handlers.Auth.SignOut)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.GET("/me", requireSession, handlers.Auth.Me)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.OptionalSession(d.AuthService))
	{
		ws.GET("/auth/events", handlers.WS.AuthEvents)
	}

	// ─── 4. Dashboard Group (Session) ──────────────────────────────────
	dashboard := router.Group("/api/v1/dashboard")
	dashboard.Use(requireSession, middleware.NoStore())
	{
		dashboard.GET("/tiles", handlers.Dashboard.Tiles)
		dashboard.GET("/route", handlers.Dashboard.CheckRoute)
	}

	me := router.Group("/api/v1/me")
	me.Use(requireSession, middleware.NoStore())
	{
		me.GET("/profile", handlers.Profile.Get)
		me.PUT("/profile", handlers.Profile.Update)
	}

	router.POST("/api/v1/storage/:bucket", requireSession, handlers.Storage.Upload)

	// ─── 5. Staff Group (Session + Permission) ─────────────────────────
	staff := router.Group("/api/v1/staff")
	staff.Use(requireSession, middleware.NoStore())
	{
		personnel := staff.Group("/personnel", middleware.RequirePermission(model.PermissionManagePersonnel))
		{
			personnel.POST("", handlers.Personnel.Create)
			personnel.PUT("/:id", handlers.Personnel.Update)
			personnel.DELETE("/:id", handlers.Personnel.Delete)
		}

		admissions := staff.Group("/admissions", middleware.RequirePermission(model.PermissionManageAdmissions))
		{
			admissions.GET("", handlers.Admission.List)
			admissions.PATCH("/:id/status", handlers.Admission.UpdateStatus)
		}

		content := staff.Group("/:kind", middleware.RequireContentPermission())
		{
			content.POST("", handlers.Content.Create)
			content.PUT("/:id", handlers.Content.Update)
			content.DELETE("/:id", handlers.Content.Delete)
		}
	}

	// ─── 6. Admin Group (Session + Admin role) ─────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireSession, middleware.RequireAdmin(), middleware.NoStore())
	{
		adminAPI.GET("/principals", handlers.Admin.ListPrincipals)

		adminAPI.GET("/permissions/matrix", handlers.Admin.Matrix)
		adminAPI.PUT("/permissions/draft", handlers.Admin.StageChange)
		adminAPI.DELETE("/permissions/draft", handlers.Admin.DiscardDraft)
		adminAPI.POST("/permissions/save", handlers.Admin.SavePermissions)

		adminAPI.GET("/roles/pending", handlers.AdminRole.ListPending)
		adminAPI.POST("/roles/approve-all", handlers.AdminRole.ApproveAll)
		adminAPI.POST("/roles/import", handlers.AdminRole.Import)

		adminAPI.POST("/users/emails", handlers.AdminUser.ResolveEmails)
		adminAPI.POST("/users/:id/approve", handlers.AdminRole.Approve)
		adminAPI.POST("/users/:id/roles", handlers.AdminRole.AddRole)
		adminAPI.DELETE("/users/:id/roles", handlers.AdminRole.DeleteRoles)

		adminAPI.GET("/audit-logs", handlers.AdminUser.AuditLogs)
		adminAPI.GET("/system/status", handlers.System.StatusSSE)
	}

	return router
}

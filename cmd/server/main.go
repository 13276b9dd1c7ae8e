package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/database"
	"github.com/schoolsite/portal-backend/internal/handler"
	"github.com/schoolsite/portal-backend/internal/logger"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/schoolsite/portal-backend/internal/router"
	"github.com/schoolsite/portal-backend/internal/service"
	"github.com/schoolsite/portal-backend/internal/validator"
	"github.com/schoolsite/portal-backend/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.MustLoad()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting school portal backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
	}

	// ─── Metrics ───────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	permRepo := repository.NewPermissionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	personnelRepo := repository.NewPersonnelRepository(pool)
	admissionRepo := repository.NewAdmissionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	auditService := service.NewAuditService(rdb, auditRepo, log)
	authService := service.NewAuthService(cfg, rdb, userRepo, log)
	accessService := service.NewAccessService(roleRepo, permRepo, rdb, cfg, m, log)
	permissionService := service.NewPermissionService(userRepo, roleRepo, permRepo, rdb, accessService, auditService, cfg, m, log)
	roleService := service.NewRoleService(roleRepo, userRepo, accessService, auditService, m, log)
	importService := service.NewImportService(roleRepo, auditService, m, log)
	directoryService := service.NewDirectoryService(userRepo, log)
	contentService := service.NewContentService(contentRepo, auditService, log)
	personnelService := service.NewPersonnelService(personnelRepo, auditService, log)
	admissionService := service.NewAdmissionService(admissionRepo, auditService, log)
	storageService := service.NewStorageService(cfg, log)
	profileService := service.NewProfileService(userRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg, log),
		Dashboard: handler.NewDashboardHandler(),
		Admin:     handler.NewAdminHandler(permissionService),
		AdminRole: handler.NewAdminRoleHandler(roleService, importService, cfg.MaxUploadBytes(), log),
		AdminUser: handler.NewAdminUserHandler(directoryService, auditService),
		Content:   handler.NewContentHandler(contentService),
		Personnel: handler.NewPersonnelHandler(personnelService),
		Admission: handler.NewAdmissionHandler(admissionService),
		Storage:   handler.NewStorageHandler(storageService),
		Profile:   handler.NewProfileHandler(profileService),
		WS:        handler.NewWSHandler(authService, log, cfg.AllowedOrigins),
		System:    handler.NewSystemHandler(rdb, cfg, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{
		Config:        cfg,
		AuthService:   authService,
		AccessService: accessService,
		Redis:         rdb,
		Metrics:       m,
		Log:           log,
	}, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Run Server and Workers ────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	auditWorker := worker.NewAuditWorker(rdb, auditRepo, m, log)
	g.Go(func() error {
		auditWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

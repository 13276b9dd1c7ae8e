package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/database"
	"github.com/schoolsite/portal-backend/internal/logger"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/schoolsite/portal-backend/internal/service"
)

func main() {
	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "List pending principals without approving them")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.MustLoad()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ───────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	permRepo := repository.NewPermissionRepository(pool)

	auditService := service.NewAuditService(rdb, repository.NewAuditRepository(pool), log)
	accessService := service.NewAccessService(roleRepo, permRepo, rdb, cfg, nil, log)
	roleService := service.NewRoleService(roleRepo, userRepo, accessService, auditService, nil, log)

	fmt.Println("=== Approve Pending Roles ===")

	pending, err := roleService.ListPending(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list pending roles")
	}
	if len(pending) == 0 {
		fmt.Println("Nothing is waiting for approval.")
		return
	}
	for _, p := range pending {
		fmt.Printf("  %s  %-9s %s\n", p.UserID, p.Role, p.Email)
	}
	if dryRun {
		fmt.Printf("%d role row(s) pending. Dry run, nothing changed.\n", len(pending))
		return
	}

	result, err := roleService.ApproveAll(ctx, uuid.Nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk approval failed")
	}
	fmt.Printf("Approved %d principal(s).\n", len(result.Approved))
	for _, f := range result.Failed {
		fmt.Printf("  failed %s: %s\n", f.UserID, f.Error)
	}
}

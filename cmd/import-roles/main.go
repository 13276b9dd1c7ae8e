package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/csvimport"
	"github.com/schoolsite/portal-backend/internal/database"
	"github.com/schoolsite/portal-backend/internal/logger"
	"github.com/schoolsite/portal-backend/internal/repository"
	"github.com/schoolsite/portal-backend/internal/service"
)

func main() {
	var (
		path  string
		actor string
	)
	flag.StringVar(&path, "file", "", "CSV or XLSX sheet with columns ชื่อ, อีเมล, รหัสผ่าน, สถานะ")
	flag.StringVar(&actor, "actor", uuid.Nil.String(), "Admin user id recorded in the audit log")
	flag.Parse()

	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: import-roles -file roles.csv [-actor <uuid>]")
		os.Exit(2)
	}
	actorID, err := uuid.Parse(actor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -actor: %v\n", err)
		os.Exit(2)
	}
	format, err := csvimport.FormatFromFilename(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	roleRepo := repository.NewRoleRepository(pool)
	auditService := service.NewAuditService(rdb, repository.NewAuditRepository(pool), log)
	importService := service.NewImportService(roleRepo, auditService, nil, log)

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open sheet")
	}
	defer f.Close()

	fmt.Printf("=== Importing roles from %s ===\n", path)
	result, err := importService.Import(ctx, actorID, f, format)
	if err != nil {
		log.Fatal().Err(err).Msg("Import rejected")
	}

	fmt.Printf("Imported: %d\n", result.SuccessCount)
	if len(result.Errors) > 0 {
		fmt.Printf("Rejected: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  row %d (%s): %s\n", e.Row, e.Email, e.Message)
		}
	}
}

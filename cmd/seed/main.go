// Package main seeds the default chart of accounts for a tenant.
//
// Usage:
//
//	VENDURA_DATABASE_URL=... seed -tenant <tenant-id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"vendura/internal/config"
	"vendura/internal/domain/accounting"
	"vendura/internal/infrastructure/storage/postgres"
	"vendura/internal/infrastructure/storage/postgres/accounting_repo"
	"vendura/pkg/logger"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant id to seed")
	flag.Parse()

	if *tenantID == "" {
		fmt.Println("usage: seed -tenant <tenant-id>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	bootstrapper := accounting.NewBootstrapper(accounting_repo.NewRepo(txm))

	if err := bootstrapper.EnsureChart(ctx, *tenantID); err != nil {
		log.Fatalw("failed to seed chart of accounts", "tenant_id", *tenantID, "error", err)
	}
	log.Infow("chart of accounts ready", "tenant_id", *tenantID)
}

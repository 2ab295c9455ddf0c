// Package main replays the deferred tail for one invoice.
//
// A dropped or failed tail leaves the invoice without its accounting,
// VAT, loyalty earn, and PDF. Process is idempotent enough to rerun
// only for invoices whose tail never completed.
//
// Usage:
//
//	VENDURA_DATABASE_URL=... replay -tenant <tenant-id> -invoice <invoice-id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"vendura/internal/config"
	"vendura/internal/core/id"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/sales"
	"vendura/internal/domain/vat"
	"vendura/internal/infrastructure/pdf"
	"vendura/internal/infrastructure/storage/postgres"
	"vendura/internal/infrastructure/storage/postgres/accounting_repo"
	"vendura/internal/infrastructure/storage/postgres/catalog_repo"
	"vendura/internal/infrastructure/storage/postgres/loyalty_repo"
	"vendura/internal/infrastructure/storage/postgres/sales_repo"
	"vendura/internal/infrastructure/storage/postgres/vat_repo"
	"vendura/pkg/logger"
)

func main() {
	tenantID := flag.String("tenant", "", "tenant id")
	invoice := flag.String("invoice", "", "invoice id")
	flag.Parse()

	if *tenantID == "" || *invoice == "" {
		fmt.Println("usage: replay -tenant <tenant-id> -invoice <invoice-id>")
		os.Exit(1)
	}
	invoiceID, err := id.Parse(*invoice)
	if err != nil {
		fmt.Printf("invalid invoice id: %v\n", err)
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

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	salesRepo := sales_repo.NewRepo(txm)
	customerRepo := catalog_repo.NewCustomerRepo(txm)
	loyaltyEngine := loyalty.NewEngine(loyalty_repo.NewRepo(txm), customerRepo)
	recorder := accounting.NewRecorder(accounting_repo.NewRepo(txm))
	aggregator := vat.NewAggregator(vat_repo.NewRepo(txm))
	renderer := pdf.NewReceiptRenderer(cfg.PDFDir, "")

	tail := sales.NewTail(
		txm, salesRepo, customerRepo, loyaltyEngine,
		recorder, aggregator, renderer, 1,
	)

	if err := tail.Process(ctx, *tenantID, invoiceID); err != nil {
		log.Fatalw("replay failed", "tenant_id", *tenantID, "invoice_id", invoiceID, "error", err)
	}
	log.Infow("replay complete", "tenant_id", *tenantID, "invoice_id", invoiceID)
}

// Package main is the entry point for the Vendura API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vendura/internal/config"
	"vendura/internal/core/security"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/discount"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/pricing"
	"vendura/internal/domain/purchasing"
	"vendura/internal/domain/sales"
	"vendura/internal/domain/vat"
	v1 "vendura/internal/infrastructure/http/v1"
	"vendura/internal/infrastructure/pdf"
	"vendura/internal/infrastructure/storage/postgres"
	"vendura/internal/infrastructure/storage/postgres/accounting_repo"
	"vendura/internal/infrastructure/storage/postgres/catalog_repo"
	"vendura/internal/infrastructure/storage/postgres/discount_repo"
	"vendura/internal/infrastructure/storage/postgres/inventory_repo"
	"vendura/internal/infrastructure/storage/postgres/loyalty_repo"
	"vendura/internal/infrastructure/storage/postgres/purchase_repo"
	"vendura/internal/infrastructure/storage/postgres/sales_repo"
	"vendura/internal/infrastructure/storage/postgres/vat_repo"
	"vendura/pkg/logger"
)

func main() {
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
	log.Info("starting vendura server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdle

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)
	numbering := postgres.NewNumbering(txm)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txm)
	customerRepo := catalog_repo.NewCustomerRepo(txm)
	employeeRepo := catalog_repo.NewEmployeeRepo(txm)
	supplierRepo := catalog_repo.NewSupplierRepo(txm)
	discountRepo := discount_repo.NewRepo(txm)
	loyaltyRepo := loyalty_repo.NewRepo(txm)
	inventoryRepo := inventory_repo.NewRepo(txm)
	accountingRepo := accounting_repo.NewRepo(txm)
	vatRepo := vat_repo.NewRepo(txm)
	salesRepo := sales_repo.NewRepo(txm)
	purchaseRepo := purchase_repo.NewRepo(txm)

	// --- Domain services ---
	normalizer := pricing.NewNormalizer(productRepo)
	discountEngine := discount.NewEngine(discountRepo, employeeRepo)
	loyaltyEngine := loyalty.NewEngine(loyaltyRepo, customerRepo)
	stockManager := inventory.NewManager(inventoryRepo)
	recorder := accounting.NewRecorder(accountingRepo)
	vatAggregator := vat.NewAggregator(vatRepo)

	renderer := pdf.NewReceiptRenderer(cfg.PDFDir, "")
	tail := sales.NewTail(
		txm, salesRepo, customerRepo, loyaltyEngine,
		recorder, vatAggregator, renderer, cfg.DeferredQueueSize,
	)

	salesCoordinator := sales.NewCoordinator(
		txm, salesRepo, numbering, normalizer, customerRepo,
		discountEngine, discountRepo, loyaltyEngine, loyaltyRepo,
		stockManager, tail,
	)
	returnCoordinator := sales.NewReturnCoordinator(
		txm, salesRepo, productRepo, stockManager, recorder, vatAggregator,
	)
	purchaseCoordinator := purchasing.NewCoordinator(
		txm, purchaseRepo, numbering, productRepo, supplierRepo,
		stockManager, recorder, vatAggregator,
	)

	// --- Deferred tail worker ---
	tailCtx, stopTail := context.WithCancel(logger.WithLogger(ctx, log))
	var tailDone sync.WaitGroup
	tailDone.Add(1)
	go func() {
		defer tailDone.Done()
		tail.Run(tailCtx)
	}()

	// --- JWT ---
	jwtService := security.NewJWTService(cfg.JWTSecret)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		Sales:        salesCoordinator,
		Returns:      returnCoordinator,
		Purchases:    purchaseCoordinator,
		VATRepo:      vatRepo,
		StockRepo:    inventoryRepo,
		LoyaltyRepo:  loyaltyRepo,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	// Let in-flight deferred tasks finish before closing the pool.
	stopTail()
	tailDone.Wait()

	log.Info("server stopped")
}

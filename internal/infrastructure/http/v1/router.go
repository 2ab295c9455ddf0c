// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"vendura/internal/domain/inventory"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/purchasing"
	"vendura/internal/domain/sales"
	"vendura/internal/domain/vat"
	"vendura/internal/infrastructure/http/v1/handlers"
	"vendura/internal/infrastructure/http/v1/middleware"
	"vendura/internal/infrastructure/storage/postgres"
	"vendura/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	Sales       *sales.Coordinator
	Returns     *sales.ReturnCoordinator
	Purchases   *purchasing.Coordinator
	VATRepo     vat.Repository
	StockRepo   inventory.Repository
	LoyaltyRepo loyalty.Repository
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	salesHandler := handlers.NewSalesHandler(base, cfg.Sales, cfg.Returns)
	purchasesHandler := handlers.NewPurchasesHandler(base, cfg.Purchases)
	reportsHandler := handlers.NewReportsHandler(base, cfg.VATRepo, cfg.StockRepo, cfg.LoyaltyRepo)

	// API v1 (authenticated, tenant-scoped via the token)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(cfg.JWTValidator))
	{
		salesGroup := apiV1.Group("/sales")
		{
			salesGroup.POST("/invoices", salesHandler.Create)
			salesGroup.GET("/invoices/:id", salesHandler.Get)
			salesGroup.POST("/returns", salesHandler.CreateReturn)
		}

		purchasesGroup := apiV1.Group("/purchases")
		purchasesGroup.Use(middleware.RequireRole("owner", "admin", "manager"))
		{
			purchasesGroup.POST("", purchasesHandler.Create)
			purchasesGroup.POST("/returns", purchasesHandler.CreateReturn)
			purchasesGroup.POST("/payments", purchasesHandler.RecordPayment)
		}

		reportsGroup := apiV1.Group("/reports")
		{
			reportsGroup.GET("/vat", reportsHandler.VATReport)
			reportsGroup.GET("/stock-movements", reportsHandler.StockMovements)
			reportsGroup.GET("/loyalty/:customer_id", reportsHandler.LoyaltyHistory)
		}
	}

	return router
}

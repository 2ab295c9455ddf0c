package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/vat"
)

// ReportsHandler serves the read-side endpoints: VAT reports, stock
// movement history, loyalty ledgers.
type ReportsHandler struct {
	*BaseHandler
	vatRepo     vat.Repository
	stockRepo   inventory.Repository
	loyaltyRepo loyalty.Repository
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, vatRepo vat.Repository, stockRepo inventory.Repository, loyaltyRepo loyalty.Repository) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		vatRepo:     vatRepo,
		stockRepo:   stockRepo,
		loyaltyRepo: loyaltyRepo,
	}
}

// VATReport returns the monthly VAT aggregate. The period defaults to
// the current month.
// GET /api/v1/reports/vat?period=2026-08
func (h *ReportsHandler) VATReport(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		period = vat.Period(time.Now().UTC())
	} else if _, err := time.Parse("2006-01", period); err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, "period must be formatted YYYY-MM"))
		return
	}

	report, err := h.vatRepo.Get(c.Request.Context(), h.GetTenantID(c), period)
	if err != nil {
		h.Error(c, err)
		return
	}
	if report == nil {
		h.Error(c, apperror.NewNotFound(apperror.CodeNotFound, "vat report", period))
		return
	}
	h.OK(c, report)
}

// StockMovements returns recent stock journal entries, newest first.
// GET /api/v1/reports/stock-movements?product_id=...&limit=100
func (h *ReportsHandler) StockMovements(c *gin.Context) {
	var productID *id.ID
	if raw := c.Query("product_id"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation(apperror.CodeValidation, "invalid product_id"))
			return
		}
		productID = &parsed
	}
	limit := h.ParseUintQuery(c, "limit", 100)

	movements, err := h.stockRepo.ListMovements(c.Request.Context(), h.GetTenantID(c), productID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"items": movements,
		"count": len(movements),
	})
}

// LoyaltyHistory returns a customer's point ledger, newest first.
// GET /api/v1/reports/loyalty/:customer_id?limit=100
func (h *ReportsHandler) LoyaltyHistory(c *gin.Context) {
	customerID, err := id.Parse(c.Param("customer_id"))
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, "invalid customer id"))
		return
	}
	limit := h.ParseUintQuery(c, "limit", 100)

	txns, err := h.loyaltyRepo.ListTransactions(c.Request.Context(), h.GetTenantID(c), customerID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"items": txns,
		"count": len(txns),
	})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"vendura/internal/core/apperror"
	"vendura/internal/domain/purchasing"
	"vendura/internal/infrastructure/http/v1/dto"
)

// PurchasesHandler handles the purchase-side endpoints.
type PurchasesHandler struct {
	*BaseHandler
	coordinator *purchasing.Coordinator
}

// NewPurchasesHandler creates a purchases handler.
func NewPurchasesHandler(base *BaseHandler, coordinator *purchasing.Coordinator) *PurchasesHandler {
	return &PurchasesHandler{
		BaseHandler: base,
		coordinator: coordinator,
	}
}

// Create records a supplier purchase and receives the stock.
// POST /api/v1/purchases
func (h *PurchasesHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, err.Error()))
		return
	}

	resp, err := h.coordinator.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateReturn sends quantities back to the supplier.
// POST /api/v1/purchases/returns
func (h *PurchasesHandler) CreateReturn(c *gin.Context) {
	var req dto.CreatePurchaseReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, err.Error()))
		return
	}

	ret, err := h.coordinator.CreateReturn(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{
		"message": "Purchase return recorded",
		"return":  ret,
	})
}

// RecordPayment settles part of a supplier's outstanding balance.
// POST /api/v1/purchases/payments
func (h *PurchasesHandler) RecordPayment(c *gin.Context) {
	var req dto.SupplierPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, err.Error()))
		return
	}

	payment, err := h.coordinator.RecordPayment(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{
		"message": "Payment recorded",
		"payment": payment,
	})
}

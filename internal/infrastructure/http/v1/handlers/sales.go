package handlers

import (
	"github.com/gin-gonic/gin"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
	"vendura/internal/domain/sales"
	"vendura/internal/infrastructure/http/v1/dto"
)

// SalesHandler handles the sale and sales-return endpoints.
type SalesHandler struct {
	*BaseHandler
	coordinator *sales.Coordinator
	returns     *sales.ReturnCoordinator
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(base *BaseHandler, coordinator *sales.Coordinator, returns *sales.ReturnCoordinator) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		coordinator: coordinator,
		returns:     returns,
	}
}

// Create runs the sale pipeline and returns the invoice with its lines.
// POST /api/v1/sales/invoices
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
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

// Get returns one invoice with its lines.
// GET /api/v1/sales/invoices/:id
func (h *SalesHandler) Get(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, "invalid invoice id"))
		return
	}

	invoice, items, err := h.coordinator.Get(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"invoice": invoice,
		"items":   items,
	})
}

// CreateReturn records a sales return, restocks, and reverses the books.
// POST /api/v1/sales/returns
func (h *SalesHandler) CreateReturn(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(apperror.CodeValidation, err.Error()))
		return
	}

	resp, err := h.returns.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

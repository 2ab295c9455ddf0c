package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vendura/internal/core/apperror"
	appctx "vendura/internal/core/context"
	"vendura/internal/core/id"
	"vendura/internal/core/tx"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/catalogs/product"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/vat"
	"vendura/pkg/logger"
)

// ReturnLine is one requested return quantity.
type ReturnLine struct {
	ProductID id.ID
	Qty       int64
}

// ReturnRequest is a multi-item sales return against one invoice.
type ReturnRequest struct {
	InvoiceID  id.ID
	Items      []ReturnLine
	RefundType string

	// TotalRefund overrides the computed refund when set.
	TotalRefund *types.Money
}

// ReturnResponse is the reply for a recorded return. Returns run fully
// synchronously, books included.
type ReturnResponse struct {
	Message string       `json:"message"`
	Return  *Return      `json:"return"`
	Items   []ReturnItem `json:"items"`
}

// ReturnCoordinator runs the sales-return pipeline, the symmetric twin
// of the sale.
type ReturnCoordinator struct {
	txm      tx.Manager
	repo     Repository
	products product.Repository
	stock    *inventory.Manager
	recorder *accounting.Recorder
	vat      *vat.Aggregator
}

// NewReturnCoordinator wires the return pipeline.
func NewReturnCoordinator(
	txm tx.Manager,
	repo Repository,
	products product.Repository,
	stock *inventory.Manager,
	recorder *accounting.Recorder,
	aggregator *vat.Aggregator,
) *ReturnCoordinator {
	return &ReturnCoordinator{
		txm:      txm,
		repo:     repo,
		products: products,
		stock:    stock,
		recorder: recorder,
		vat:      aggregator,
	}
}

// Create validates returnable quantities, restocks, and posts the
// reversed accounting and VAT in one transaction.
func (c *ReturnCoordinator) Create(ctx context.Context, req ReturnRequest) (*ReturnResponse, error) {
	tenantID := appctx.GetTenantID(ctx)
	now := time.Now().UTC()

	if len(req.Items) == 0 {
		return nil, apperror.NewValidation(apperror.CodeEmptyItems, "items must not be empty")
	}
	refundType := req.RefundType
	if refundType == "" {
		refundType = RefundCash
	}

	var resp *ReturnResponse
	err := c.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := c.repo.GetInvoice(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		invItems, err := c.repo.GetItems(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		returned, err := c.repo.ReturnedQuantities(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		invoiced := make(map[id.ID]int64, len(invItems))
		for _, it := range invItems {
			invoiced[it.ProductID] += it.Quantity
		}

		// Requested quantities accumulate per product, so duplicate lines
		// for the same product are checked against the remainder together.
		requested := make(map[id.ID]int64, len(req.Items))
		ids := make([]id.ID, 0, len(req.Items))
		for _, ln := range req.Items {
			if ln.Qty <= 0 {
				return apperror.NewValidation(apperror.CodeInvalidQty, "return quantity must be positive").
					WithDetail("product_id", ln.ProductID)
			}
			sold, ok := invoiced[ln.ProductID]
			if !ok {
				return apperror.NewValidation(apperror.CodeProductNotOnInvoice, "product is not on the invoice").
					WithDetail("product_id", ln.ProductID)
			}
			if _, seen := requested[ln.ProductID]; !seen {
				ids = append(ids, ln.ProductID)
			}
			requested[ln.ProductID] += ln.Qty
			if requested[ln.ProductID] > sold-returned[ln.ProductID] {
				return apperror.NewValidation(apperror.CodeExceedsReturnable, "quantity exceeds the returnable remainder").
					WithDetail("product_id", ln.ProductID).
					WithDetail("returnable", sold-returned[ln.ProductID])
			}
		}

		products, err := c.products.GetByIDs(ctx, tenantID, ids)
		if err != nil {
			return err
		}

		ret := &Return{
			ID:         id.New(),
			TenantID:   tenantID,
			InvoiceID:  inv.ID,
			CustomerID: inv.CustomerID,
			RefundType: refundType,
			HandledBy:  appctx.GetFullName(ctx),
			CreatedAt:  now,
		}
		if err := c.repo.CreateReturn(ctx, ret); err != nil {
			return err
		}

		items := make([]ReturnItem, 0, len(req.Items))
		total := types.Zero()
		netTotal := types.Zero()
		taxTotal := types.Zero()
		cost := types.Zero()
		for _, ln := range req.Items {
			p := products[ln.ProductID]
			qty := decimal.NewFromInt(ln.Qty)
			gross := types.Round2(p.SellingPrice.Mul(qty))
			base, taxAmt := types.SplitGross(gross, p.Tax)

			items = append(items, ReturnItem{
				ID:        id.New(),
				TenantID:  tenantID,
				ReturnID:  ret.ID,
				ProductID: ln.ProductID,
				Quantity:  ln.Qty,
				Price:     p.SellingPrice,
				Tax:       p.Tax,
				TaxAmount: taxAmt,
				Total:     gross,
				CostPrice: p.CostPrice,
			})
			total = total.Add(gross)
			netTotal = netTotal.Add(base)
			taxTotal = taxTotal.Add(taxAmt)
			cost = cost.Add(p.CostPrice.Mul(qty))
		}
		if err := c.repo.InsertReturnItems(ctx, items); err != nil {
			return err
		}

		if req.TotalRefund != nil {
			total = types.Round2(*req.TotalRefund)
		}
		ret.TotalRefund = total
		if err := c.repo.UpdateReturnTotal(ctx, tenantID, ret.ID, total); err != nil {
			return err
		}

		stockLines := make([]inventory.Line, 0, len(req.Items))
		for _, ln := range req.Items {
			stockLines = append(stockLines, inventory.Line{ProductID: ln.ProductID, Qty: ln.Qty})
		}
		if err := c.stock.RestockForReturn(ctx, tenantID, ret.ID, stockLines, now); err != nil {
			return err
		}

		chart, err := c.recorder.LoadChart(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := c.recorder.RecordSalesReturn(ctx, chart, accounting.SalesReturnEvent{
			TenantID:   tenantID,
			ReturnID:   ret.ID,
			ReturnNo:   inv.InvoiceNumber,
			RefundType: refundType,
			NetAmount:  netTotal,
			TaxAmount:  taxTotal,
			Cost:       cost,
			At:         now,
		}); err != nil {
			return err
		}

		if err := c.vat.RecordSalesReturn(ctx, tenantID, now, netTotal, taxTotal); err != nil {
			return err
		}

		resp = &ReturnResponse{Message: "sales return recorded", Return: ret, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sales return recorded",
		"invoice_id", req.InvoiceID,
		"total_refund", resp.Return.TotalRefund,
	)
	return resp, nil
}

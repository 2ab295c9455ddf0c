package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"vendura/internal/core/apperror"
	appctx "vendura/internal/core/context"
	"vendura/internal/core/id"
	"vendura/internal/core/tx"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/catalogs/product"
	"vendura/internal/domain/catalogs/supplier"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/vat"
	"vendura/pkg/logger"
)

// RequestItem is one incoming purchase line. UnitCost is tax-exclusive;
// the tax rate comes from the product catalog.
type RequestItem struct {
	ProductID id.ID
	Qty       int64
	UnitCost  types.Money
}

// CreateRequest is one supplier purchase.
type CreateRequest struct {
	SupplierID    id.ID
	Items         []RequestItem
	PaymentMethod string // "credit" books against Accounts Payable
}

// CreateResponse is the reply for a recorded purchase.
type CreateResponse struct {
	Message  string         `json:"message"`
	Purchase *Purchase      `json:"purchase"`
	Items    []PurchaseItem `json:"items"`
}

// Coordinator runs the purchase pipeline, mirroring the sale side.
type Coordinator struct {
	txm       tx.Manager
	repo      Repository
	numbering Numbering
	products  product.Repository
	suppliers supplier.Repository
	stock     *inventory.Manager
	recorder  *accounting.Recorder
	vat       *vat.Aggregator
}

// NewCoordinator wires the purchase pipeline.
func NewCoordinator(
	txm tx.Manager,
	repo Repository,
	numbering Numbering,
	products product.Repository,
	suppliers supplier.Repository,
	stock *inventory.Manager,
	recorder *accounting.Recorder,
	aggregator *vat.Aggregator,
) *Coordinator {
	return &Coordinator{
		txm:       txm,
		repo:      repo,
		numbering: numbering,
		products:  products,
		suppliers: suppliers,
		stock:     stock,
		recorder:  recorder,
		vat:       aggregator,
	}
}

// Create records a purchase: numbering, header and items, inventory
// increase (creating rows for new products), books, and VAT. One
// transaction end to end.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	tenantID := appctx.GetTenantID(ctx)
	now := time.Now().UTC()

	if len(req.Items) == 0 {
		return nil, apperror.NewValidation(apperror.CodeEmptyItems, "items must not be empty")
	}
	for _, ln := range req.Items {
		if ln.Qty <= 0 {
			return nil, apperror.NewValidation(apperror.CodeInvalidQty, "quantity must be positive").
				WithDetail("product_id", ln.ProductID)
		}
	}
	if _, err := c.suppliers.GetByID(ctx, tenantID, req.SupplierID); err != nil {
		return nil, err
	}

	ids := make([]id.ID, 0, len(req.Items))
	for _, ln := range req.Items {
		ids = append(ids, ln.ProductID)
	}
	products, err := c.products.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	var resp *CreateResponse
	err = c.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := c.numbering.NextPurchaseNumber(ctx, tenantID, now.Year())
		if err != nil {
			return err
		}

		pur := &Purchase{
			ID:             id.New(),
			TenantID:       tenantID,
			PurchaseNumber: number,
			SupplierID:     req.SupplierID,
			PaymentMethod:  req.PaymentMethod,
			HandledBy:      appctx.GetFullName(ctx),
			CreatedAt:      now,
		}

		items := make([]PurchaseItem, 0, len(req.Items))
		net := types.Zero()
		tax := types.Zero()
		for _, ln := range req.Items {
			p := products[ln.ProductID]
			qty := decimal.NewFromInt(ln.Qty)
			lineNet := types.Round2(ln.UnitCost.Mul(qty))
			lineTax := types.Percent(lineNet, p.Tax)

			items = append(items, PurchaseItem{
				ID:         id.New(),
				TenantID:   tenantID,
				PurchaseID: pur.ID,
				ProductID:  ln.ProductID,
				Quantity:   ln.Qty,
				UnitCost:   ln.UnitCost,
				Tax:        p.Tax,
				TaxAmount:  lineTax,
				Total:      lineNet.Add(lineTax),
			})
			net = net.Add(lineNet)
			tax = tax.Add(lineTax)
		}
		pur.NetTotal = net
		pur.TaxTotal = tax
		pur.TotalAmount = net.Add(tax)

		if err := c.repo.CreatePurchase(ctx, pur); err != nil {
			return err
		}
		if err := c.repo.InsertItems(ctx, items); err != nil {
			return err
		}

		stockLines := make([]inventory.Line, 0, len(req.Items))
		for _, ln := range req.Items {
			stockLines = append(stockLines, inventory.Line{ProductID: ln.ProductID, Qty: ln.Qty})
		}
		if err := c.stock.ReceiveForPurchase(ctx, tenantID, pur.ID, stockLines, now); err != nil {
			return err
		}

		chart, err := c.recorder.LoadChart(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := c.recorder.RecordPurchase(ctx, chart, accounting.PurchaseEvent{
			TenantID:      tenantID,
			PurchaseID:    pur.ID,
			PurchaseNo:    pur.PurchaseNumber,
			PaymentMethod: req.PaymentMethod,
			NetAmount:     net,
			TaxAmount:     tax,
			At:            now,
		}); err != nil {
			return err
		}

		if err := c.vat.RecordPurchase(ctx, tenantID, now, net, tax); err != nil {
			return err
		}

		resp = &CreateResponse{Message: "purchase recorded", Purchase: pur, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"purchase_number", resp.Purchase.PurchaseNumber,
		"total_amount", resp.Purchase.TotalAmount,
	)
	return resp, nil
}

// ReturnLine is one quantity sent back to the supplier.
type ReturnLine struct {
	ProductID id.ID
	Qty       int64
}

// ReturnRequest sends quantities back to the supplier of a purchase.
type ReturnRequest struct {
	PurchaseID id.ID
	Items      []ReturnLine
}

// CreateReturn records a purchase return and reverses its share of the
// books, stock, and VAT.
func (c *Coordinator) CreateReturn(ctx context.Context, req ReturnRequest) (*PurchaseReturn, error) {
	tenantID := appctx.GetTenantID(ctx)
	now := time.Now().UTC()

	if len(req.Items) == 0 {
		return nil, apperror.NewValidation(apperror.CodeEmptyItems, "items must not be empty")
	}

	var ret *PurchaseReturn
	err := c.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := c.repo.GetPurchase(ctx, tenantID, req.PurchaseID)
		if err != nil {
			return err
		}
		purItems, err := c.repo.GetItems(ctx, tenantID, req.PurchaseID)
		if err != nil {
			return err
		}
		returned, err := c.repo.ReturnedQuantities(ctx, tenantID, req.PurchaseID)
		if err != nil {
			return err
		}

		// A purchase may carry several lines for one product; the
		// returnable quantity is their sum, priced from the first line.
		purchased := make(map[id.ID]int64, len(purItems))
		byProduct := make(map[id.ID]PurchaseItem, len(purItems))
		for _, it := range purItems {
			purchased[it.ProductID] += it.Quantity
			if _, ok := byProduct[it.ProductID]; !ok {
				byProduct[it.ProductID] = it
			}
		}

		ret = &PurchaseReturn{
			ID:         id.New(),
			TenantID:   tenantID,
			PurchaseID: pur.ID,
			SupplierID: pur.SupplierID,
			HandledBy:  appctx.GetFullName(ctx),
			CreatedAt:  now,
		}

		items := make([]PurchaseReturnItem, 0, len(req.Items))
		net := types.Zero()
		tax := types.Zero()
		requested := make(map[id.ID]int64, len(req.Items))
		stockLines := make([]inventory.Line, 0, len(req.Items))
		for _, ln := range req.Items {
			if ln.Qty <= 0 {
				return apperror.NewValidation(apperror.CodeInvalidQty, "return quantity must be positive").
					WithDetail("product_id", ln.ProductID)
			}
			src, ok := byProduct[ln.ProductID]
			if !ok {
				return apperror.NewValidation(apperror.CodeProductNotOnInvoice, "product is not on the purchase").
					WithDetail("product_id", ln.ProductID)
			}
			requested[ln.ProductID] += ln.Qty
			if requested[ln.ProductID] > purchased[ln.ProductID]-returned[ln.ProductID] {
				return apperror.NewValidation(apperror.CodeExceedsReturnable, "quantity exceeds the returnable remainder").
					WithDetail("product_id", ln.ProductID).
					WithDetail("returnable", purchased[ln.ProductID]-returned[ln.ProductID])
			}

			qty := decimal.NewFromInt(ln.Qty)
			lineNet := types.Round2(src.UnitCost.Mul(qty))
			lineTax := types.Percent(lineNet, src.Tax)
			items = append(items, PurchaseReturnItem{
				ID:        id.New(),
				TenantID:  tenantID,
				ReturnID:  ret.ID,
				ProductID: ln.ProductID,
				Quantity:  ln.Qty,
				UnitCost:  src.UnitCost,
				Tax:       src.Tax,
				TaxAmount: lineTax,
				Total:     lineNet.Add(lineTax),
			})
			net = net.Add(lineNet)
			tax = tax.Add(lineTax)
			stockLines = append(stockLines, inventory.Line{ProductID: ln.ProductID, Qty: ln.Qty})
		}
		ret.NetTotal = net
		ret.TaxTotal = tax
		ret.Total = net.Add(tax)

		if err := c.repo.CreateReturn(ctx, ret); err != nil {
			return err
		}
		if err := c.repo.InsertReturnItems(ctx, items); err != nil {
			return err
		}

		if err := c.stock.ReturnToSupplier(ctx, tenantID, ret.ID, stockLines, now); err != nil {
			return err
		}

		chart, err := c.recorder.LoadChart(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := c.recorder.RecordPurchaseReturn(ctx, chart, accounting.PurchaseReturnEvent{
			TenantID:      tenantID,
			ReturnID:      ret.ID,
			ReturnNo:      pur.PurchaseNumber,
			PaymentMethod: pur.PaymentMethod,
			NetAmount:     net,
			TaxAmount:     tax,
			At:            now,
		}); err != nil {
			return err
		}

		return c.vat.RecordPurchaseReturn(ctx, tenantID, now, net, tax)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// PaymentRequest settles part of a supplier's outstanding balance.
type PaymentRequest struct {
	SupplierID id.ID
	Amount     types.Money
	Method     string
	Notes      string
}

// RecordPayment books Dr Accounts Payable, Cr Cash/Bank.
func (c *Coordinator) RecordPayment(ctx context.Context, req PaymentRequest) (*SupplierPayment, error) {
	tenantID := appctx.GetTenantID(ctx)
	now := time.Now().UTC()

	if !req.Amount.IsPositive() {
		return nil, apperror.NewValidation(apperror.CodeValidation, "amount must be positive")
	}
	sup, err := c.suppliers.GetByID(ctx, tenantID, req.SupplierID)
	if err != nil {
		return nil, err
	}

	payment := &SupplierPayment{
		ID:         id.New(),
		TenantID:   tenantID,
		SupplierID: req.SupplierID,
		Amount:     types.Round2(req.Amount),
		Method:     req.Method,
		Notes:      req.Notes,
		PaidAt:     now,
	}

	err = c.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := c.repo.CreatePayment(ctx, payment); err != nil {
			return err
		}
		chart, err := c.recorder.LoadChart(ctx, tenantID)
		if err != nil {
			return err
		}
		return c.recorder.RecordSupplierPayment(ctx, chart, accounting.SupplierPaymentEvent{
			TenantID:  tenantID,
			PaymentID: payment.ID,
			Narration: fmt.Sprintf("Payment to %s", sup.Name),
			Method:    req.Method,
			Amount:    payment.Amount,
			At:        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

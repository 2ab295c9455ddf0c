package sales

import (
	"context"
	"time"

	"vendura/internal/core/apperror"
	appctx "vendura/internal/core/context"
	"vendura/internal/core/id"
	"vendura/internal/core/tx"
	"vendura/internal/core/types"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/discount"
	"vendura/internal/domain/inventory"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/pricing"
	"vendura/pkg/logger"
)

// CreateRequest is one sale, with authoritative prices resolved
// server-side.
type CreateRequest struct {
	Items         []pricing.RequestItem
	PaymentMethod string
	CustomerID    *id.ID
	RedeemPoints  int64
	CouponCode    *string
	EmployeeID    *id.ID
}

// LoyaltySummary reports point movement for the response.
type LoyaltySummary struct {
	Earned       int64 `json:"earned"`
	Redeemed     int64 `json:"redeemed"`
	FinalBalance int64 `json:"final_balance"`
}

// CreateResponse is the synchronous reply; accounting, VAT and the PDF
// land after it is sent.
type CreateResponse struct {
	Message        string                    `json:"message"`
	Invoice        *Invoice                  `json:"invoice"`
	Items          []InvoiceItem             `json:"items"`
	LowStockAlerts []inventory.LowStockAlert `json:"lowStockAlerts"`
	Loyalty        *LoyaltySummary           `json:"loyalty,omitempty"`
}

// Scheduler queues the deferred tail of a committed invoice.
type Scheduler interface {
	Schedule(task Task)
}

// Coordinator runs the sale pipeline.
type Coordinator struct {
	txm        tx.Manager
	repo       Repository
	numbering  Numbering
	normalizer *pricing.Normalizer
	customers  customer.Repository
	discounts  *discount.Engine
	discRepo   discount.Repository
	loyalty    *loyalty.Engine
	loyRepo    loyalty.Repository
	stock      *inventory.Manager
	tail       Scheduler
}

// NewCoordinator wires the sale pipeline.
func NewCoordinator(
	txm tx.Manager,
	repo Repository,
	numbering Numbering,
	normalizer *pricing.Normalizer,
	customers customer.Repository,
	discounts *discount.Engine,
	discRepo discount.Repository,
	loyaltyEngine *loyalty.Engine,
	loyRepo loyalty.Repository,
	stock *inventory.Manager,
	tail Scheduler,
) *Coordinator {
	return &Coordinator{
		txm:        txm,
		repo:       repo,
		numbering:  numbering,
		normalizer: normalizer,
		customers:  customers,
		discounts:  discounts,
		discRepo:   discRepo,
		loyalty:    loyaltyEngine,
		loyRepo:    loyRepo,
		stock:      stock,
		tail:       tail,
	}
}

// Create runs the full sale: normalization and discounts, loyalty
// redemption, numbering, invoice rows, coupon usage, inventory, and the
// response. Everything that mutates rows runs in one transaction; the
// post-sale tail (loyalty earn, accounting, VAT, PDF) is scheduled after
// commit and its failures are logged, never surfaced.
func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (*CreateResponse, error) {
	tenantID := appctx.GetTenantID(ctx)
	now := time.Now().UTC()

	method := req.PaymentMethod
	if method == "" {
		method = PayCash
	}

	lines, err := c.normalizer.Normalize(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	var cust *customer.Customer
	if req.CustomerID != nil {
		cust, err = c.customers.GetByID(ctx, tenantID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
	}
	if cust == nil && req.RedeemPoints > 0 {
		return nil, apperror.NewValidation(apperror.CodeValidation, "redeeming points requires a customer")
	}

	var (
		inv     *Invoice
		items   []InvoiceItem
		alerts  []inventory.LowStockAlert
		summary *LoyaltySummary
	)

	err = c.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		disc, err := c.discounts.Apply(ctx, discount.Input{
			TenantID:   tenantID,
			Items:      lines,
			Customer:   cust,
			CouponCode: req.CouponCode,
			EmployeeID: req.EmployeeID,
			Now:        now,
		})
		if err != nil {
			return err
		}

		final := disc.Total
		var redeemTxn *id.ID
		balance := int64(0)
		if cust != nil {
			balance = cust.LoyaltyPoints
		}
		if req.RedeemPoints > 0 {
			red, err := c.loyalty.Redeem(ctx, cust, req.RedeemPoints, now)
			if err != nil {
				return err
			}
			final = types.ClampNonNegative(types.Round2(final.Sub(red.Deduction)))
			redeemTxn = &red.TxnID
			balance = red.BalanceAfter
		}

		number, err := c.numbering.NextInvoiceNumber(ctx, tenantID, now.Year())
		if err != nil {
			return err
		}

		inv = &Invoice{
			ID:             id.New(),
			TenantID:       tenantID,
			InvoiceNumber:  number,
			CustomerID:     req.CustomerID,
			PaymentMethod:  method,
			Subtotal:       disc.Subtotal,
			ItemDiscount:   types.Round2(disc.ItemDiscountTotal),
			BillDiscount:   disc.BillDiscountTotal,
			CouponDiscount: disc.CouponDiscount,
			TierDiscount:   disc.TierDiscount,
			StaffDiscount:  disc.StaffDiscount,
			RedeemedPoints: req.RedeemPoints,
			FinalAmount:    final,
			HandledBy:      appctx.GetFullName(ctx),
			CreatedAt:      now,
		}
		if err := c.repo.CreateInvoice(ctx, inv); err != nil {
			return err
		}

		// Patch rows created before the header existed.
		if redeemTxn != nil {
			if err := c.loyRepo.AttachInvoice(ctx, tenantID, []id.ID{*redeemTxn}, inv.ID); err != nil {
				return err
			}
		}
		if disc.StaffUsageID != nil {
			if err := c.discRepo.AttachStaffUsageInvoice(ctx, tenantID, *disc.StaffUsageID, inv.ID); err != nil {
				return err
			}
		}

		// Everything between the item-stage total and the final amount is
		// bill-level: bill, coupon, tier, staff, redeemed points.
		billLevel := disc.Subtotal.Sub(inv.ItemDiscount).Sub(final)
		items = buildItems(tenantID, inv.ID, disc.Items, disc.Subtotal, billLevel, final)
		if err := c.repo.InsertItems(ctx, items); err != nil {
			return err
		}

		if len(disc.Applied) > 0 {
			rows := make([]InvoiceDiscount, 0, len(disc.Applied))
			for _, a := range disc.Applied {
				rows = append(rows, InvoiceDiscount{
					ID:          id.New(),
					TenantID:    tenantID,
					InvoiceID:   inv.ID,
					RuleID:      a.RuleID,
					Channel:     string(a.Channel),
					Amount:      a.Amount,
					Description: a.Description,
				})
			}
			if err := c.repo.InsertDiscounts(ctx, rows); err != nil {
				return err
			}
		}

		if disc.Coupon != nil {
			if err := c.discRepo.RecordCouponUsage(ctx, tenantID, disc.Coupon.ID, req.CustomerID, inv.ID,
				disc.Coupon.MaxUses, disc.Coupon.PerCustomerLimit); err != nil {
				return err
			}
		}

		stockLines := make([]inventory.Line, 0, len(lines))
		for _, ln := range lines {
			stockLines = append(stockLines, inventory.Line{ProductID: ln.ProductID, Qty: ln.Qty})
		}
		alerts, err = c.stock.DeductForSale(ctx, tenantID, inv.ID, stockLines, now)
		if err != nil {
			return err
		}

		if cust != nil {
			rule, err := c.loyRepo.GetActiveRule(ctx, tenantID)
			if err != nil {
				return err
			}
			earn := loyalty.EarnPoints(rule, final)
			summary = &LoyaltySummary{
				Earned:       earn,
				Redeemed:     req.RedeemPoints,
				FinalBalance: balance + earn,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.tail.Schedule(Task{TenantID: tenantID, InvoiceID: inv.ID})

	logger.Info(ctx, "invoice created",
		"invoice_number", inv.InvoiceNumber,
		"final_amount", inv.FinalAmount,
		"items", len(items),
	)

	return &CreateResponse{
		Message:        "invoice created",
		Invoice:        inv,
		Items:          items,
		LowStockAlerts: alerts,
		Loyalty:        summary,
	}, nil
}

// Get returns one invoice with its items.
func (c *Coordinator) Get(ctx context.Context, invoiceID id.ID) (*Invoice, []InvoiceItem, error) {
	tenantID := appctx.GetTenantID(ctx)
	inv, err := c.repo.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	items, err := c.repo.GetItems(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return inv, items, nil
}

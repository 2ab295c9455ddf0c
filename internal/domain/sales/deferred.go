package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vendura/internal/core/id"
	"vendura/internal/core/tx"
	"vendura/internal/core/types"
	"vendura/internal/domain/accounting"
	"vendura/internal/domain/catalogs/customer"
	"vendura/internal/domain/loyalty"
	"vendura/internal/domain/vat"
	"vendura/pkg/logger"
)

// Task is one queued post-sale tail. Only identifiers cross the queue;
// the worker reloads everything from committed rows, which also makes
// replay possible.
type Task struct {
	TenantID  string
	InvoiceID id.ID
}

// Renderer produces the receipt artifact and returns its URL.
type Renderer interface {
	Render(ctx context.Context, inv *Invoice, items []InvoiceItem) (string, error)
}

// Tail runs the deferred part of the sale pipeline: customer stats and
// loyalty earn, accounting, VAT aggregation, and the PDF. Best-effort;
// failures are logged, never surfaced to the caller.
type Tail struct {
	txm       tx.Manager
	repo      Repository
	customers customer.Repository
	loyalty   *loyalty.Engine
	recorder  *accounting.Recorder
	vat       *vat.Aggregator
	renderer  Renderer

	tasks chan Task
}

// NewTail creates the worker with a bounded queue.
func NewTail(
	txm tx.Manager,
	repo Repository,
	customers customer.Repository,
	loyaltyEngine *loyalty.Engine,
	recorder *accounting.Recorder,
	aggregator *vat.Aggregator,
	renderer Renderer,
	queueSize int,
) *Tail {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Tail{
		txm:       txm,
		repo:      repo,
		customers: customers,
		loyalty:   loyaltyEngine,
		recorder:  recorder,
		vat:       aggregator,
		renderer:  renderer,
		tasks:     make(chan Task, queueSize),
	}
}

// Schedule queues a task. A full queue drops the task with a log line
// rather than stalling the request path; cmd/replay recovers dropped
// tails.
func (t *Tail) Schedule(task Task) {
	select {
	case t.tasks <- task:
	default:
		logger.Error(context.Background(), "deferred queue full, task dropped",
			"tenant_id", task.TenantID,
			"invoice_id", task.InvoiceID,
		)
	}
}

// Run consumes tasks until ctx is cancelled, then drains what was
// already queued before returning.
func (t *Tail) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case task := <-t.tasks:
					t.run(task)
				default:
					return
				}
			}
		case task := <-t.tasks:
			t.run(task)
		}
	}
}

func (t *Tail) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := t.Process(ctx, task.TenantID, task.InvoiceID); err != nil {
		logger.Error(ctx, "deferred tail failed",
			"tenant_id", task.TenantID,
			"invoice_id", task.InvoiceID,
			"error", err,
		)
	}
}

// Process executes the tail for one committed invoice. Also used by
// cmd/replay for invoices whose tail was dropped or failed.
func (t *Tail) Process(ctx context.Context, tenantID string, invoiceID id.ID) error {
	inv, err := t.repo.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	items, err := t.repo.GetItems(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	tax := types.Zero()
	cost := types.Zero()
	for _, it := range items {
		tax = tax.Add(it.TaxAmount)
		cost = cost.Add(it.CostPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	net := inv.FinalAmount.Sub(tax)

	// A replayed task must not post the books twice. The sale journal
	// pair keyed on the invoice id marks them as written; when it
	// exists, only the receipt artifact may still be missing.
	posted, err := t.recorder.Posted(ctx, tenantID, accounting.RefInvoiceSale, inv.ID)
	if err != nil {
		return err
	}
	if posted {
		logger.Info(ctx, "books already posted, skipping",
			"tenant_id", tenantID,
			"invoice_id", inv.ID,
		)
		return t.renderMissingPDF(ctx, tenantID, inv, items)
	}

	// Books post at run time, not at the invoice time: the ledger's
	// running-balance chain follows insertion order, and a backdated row
	// would slot between already-balanced entries. The VAT period still
	// keys on the invoice month.
	now := time.Now().UTC()
	err = t.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if inv.CustomerID != nil {
			if err := t.customers.RecordPurchase(ctx, tenantID, *inv.CustomerID, inv.FinalAmount); err != nil {
				return err
			}
			if _, err := t.loyalty.Earn(ctx, tenantID, *inv.CustomerID, inv.ID, inv.FinalAmount, now); err != nil {
				return err
			}
		}

		chart, err := t.recorder.LoadChart(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := t.recorder.RecordSale(ctx, chart, accounting.SaleEvent{
			TenantID:      tenantID,
			InvoiceID:     inv.ID,
			InvoiceNo:     inv.InvoiceNumber,
			PaymentMethod: inv.PaymentMethod,
			NetAmount:     net,
			TaxAmount:     tax,
			Cost:          cost,
			At:            now,
		}); err != nil {
			return err
		}

		return t.vat.RecordSale(ctx, tenantID, inv.CreatedAt, net, tax)
	})
	if err != nil {
		return err
	}

	return t.renderMissingPDF(ctx, tenantID, inv, items)
}

// renderMissingPDF produces the receipt when the invoice has none yet.
func (t *Tail) renderMissingPDF(ctx context.Context, tenantID string, inv *Invoice, items []InvoiceItem) error {
	if t.renderer == nil || inv.PDFURL != nil {
		return nil
	}
	url, err := t.renderer.Render(ctx, inv, items)
	if err != nil {
		// The books are already posted; a failed render only loses the
		// artifact.
		logger.Warn(ctx, "receipt render failed", "invoice_id", inv.ID, "error", err)
		return nil
	}
	return t.repo.SetPDFURL(ctx, tenantID, inv.ID, url)
}

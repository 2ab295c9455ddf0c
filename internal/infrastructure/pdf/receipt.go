// Package pdf renders thermal-format receipt PDFs for invoices.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"vendura/internal/domain/sales"
)

// ReceiptRenderer writes 80-mm thermal receipts into a directory and
// implements sales.Renderer.
type ReceiptRenderer struct {
	dir          string
	businessName string
}

// NewReceiptRenderer creates a renderer writing into dir.
func NewReceiptRenderer(dir, businessName string) *ReceiptRenderer {
	if businessName == "" {
		businessName = "Vendura POS"
	}
	return &ReceiptRenderer{dir: dir, businessName: businessName}
}

// Render writes the receipt and returns its URL path.
func (r *ReceiptRenderer) Render(ctx context.Context, inv *sales.Invoice, items []sales.InvoiceItem) (string, error) {
	cfg := config.NewBuilder().
		WithDimensions(80, 200).
		WithLeftMargin(4).
		WithRightMargin(4).
		WithTopMargin(4).
		Build()

	m := maroto.New(cfg)

	m.AddRow(8, text.NewCol(12, r.businessName, props.Text{
		Size:  11,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(5, text.NewCol(12, inv.InvoiceNumber, props.Text{
		Size:  8,
		Align: align.Center,
	}))
	m.AddRow(5, text.NewCol(12, inv.CreatedAt.Format("2006-01-02 15:04"), props.Text{
		Size:  8,
		Align: align.Center,
	}))
	m.AddRow(3, text.NewCol(12, "--------------------------------", props.Text{
		Size:  8,
		Align: align.Center,
	}))

	for _, it := range items {
		m.AddRow(4,
			text.NewCol(8, fmt.Sprintf("%d x %s", it.Quantity, it.Name), props.Text{Size: 7}),
			text.NewCol(4, it.Total.StringFixed(2), props.Text{Size: 7, Align: align.Right}),
		)
	}

	m.AddRow(3, text.NewCol(12, "--------------------------------", props.Text{
		Size:  8,
		Align: align.Center,
	}))
	m.AddRow(6,
		text.NewCol(6, "TOTAL", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(6, inv.FinalAmount.StringFixed(2), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(5, text.NewCol(12, "Paid by "+inv.PaymentMethod, props.Text{
		Size:  8,
		Align: align.Center,
	}))
	m.AddRow(6, text.NewCol(12, "Thank you for your visit!", props.Text{
		Size:  8,
		Align: align.Center,
	}))

	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("generate receipt: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}
	filename := inv.InvoiceNumber + ".pdf"
	if err := doc.Save(filepath.Join(r.dir, filename)); err != nil {
		return "", fmt.Errorf("save receipt: %w", err)
	}

	return "/receipts/" + filename, nil
}

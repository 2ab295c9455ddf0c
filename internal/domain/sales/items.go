package sales

import (
	"github.com/shopspring/decimal"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/discount"
)

var one = decimal.NewFromInt(1)

// buildItems turns the discounted working lines into invoice items.
//
// Line-level item discounts stay on their lines; every bill-level channel
// (bill, coupon, tier, staff, redeemed points) is allocated across lines
// in proportion to line gross. Whatever cent drift the per-stage rounding
// produced is folded into the first line so the item totals sum exactly
// to the invoice final amount.
func buildItems(tenantID string, invoiceID id.ID, lines []discount.LineResult, subtotal, billLevel, finalAmount types.Money) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(lines))

	allocated := types.Zero()
	totals := make([]types.Money, len(lines))
	for i, ln := range lines {
		share := types.Zero()
		if subtotal.IsPositive() {
			if i == len(lines)-1 {
				share = billLevel.Sub(allocated)
			} else {
				share = types.Round2(billLevel.Mul(ln.LineGross()).Div(subtotal))
				allocated = allocated.Add(share)
			}
		}
		totals[i] = ln.LineGross().Sub(ln.ItemDiscount).Sub(share)
	}

	// Rounding fix-up onto the first line.
	sum := types.Zero()
	for _, t := range totals {
		sum = sum.Add(t)
	}
	if len(totals) > 0 {
		totals[0] = totals[0].Add(finalAmount.Sub(sum))
	}

	for i, ln := range lines {
		qty := decimal.NewFromInt(ln.Qty)
		lineDiscount := ln.LineGross().Sub(totals[i])
		perUnit := types.Round2(lineDiscount.Div(qty))
		price := types.Round2(ln.UnitGross.Sub(perUnit))
		netPrice := types.Round2(price.Div(one.Add(ln.TaxRate.Div(decimal.NewFromInt(100)))))
		taxAmount := types.Round2(totals[i].Sub(netPrice.Mul(qty)))

		items = append(items, InvoiceItem{
			ID:             id.New(),
			TenantID:       tenantID,
			InvoiceID:      invoiceID,
			ProductID:      ln.ProductID,
			Name:           ln.Name,
			Quantity:       ln.Qty,
			Price:          price,
			Tax:            ln.TaxRate,
			TaxAmount:      taxAmount,
			DiscountAmount: perUnit,
			NetPrice:       netPrice,
			Total:          types.Round2(totals[i]),
			CostPrice:      ln.CostPrice,
		})
	}
	return items
}

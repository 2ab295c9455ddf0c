package dto

import (
	"fmt"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/pricing"
	"vendura/internal/domain/sales"
)

// CreateInvoiceRequest is the POS sale request. Prices are never taken
// from the client; only product ids and quantities are.
type CreateInvoiceRequest struct {
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string               `json:"payment_method" binding:"required,oneof=cash card upi bank credit"`
	CustomerID    *string              `json:"customer_id,omitempty"`
	RedeemPoints  int64                `json:"redeem_points,omitempty" binding:"gte=0"`
	CouponCode    *string              `json:"coupon_code,omitempty"`
	EmployeeID    *string              `json:"employee_id,omitempty"`
}

// InvoiceItemRequest is one requested sale line.
type InvoiceItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int64  `json:"qty" binding:"required"`
}

// ToEntity converts the request to the pipeline input.
func (r *CreateInvoiceRequest) ToEntity() (sales.CreateRequest, error) {
	req := sales.CreateRequest{
		PaymentMethod: r.PaymentMethod,
		RedeemPoints:  r.RedeemPoints,
		CouponCode:    r.CouponCode,
	}

	req.Items = make([]pricing.RequestItem, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return sales.CreateRequest{}, fmt.Errorf("invalid product_id %q", item.ProductID)
		}
		req.Items = append(req.Items, pricing.RequestItem{
			ProductID: productID,
			Qty:       item.Qty,
		})
	}

	if r.CustomerID != nil && *r.CustomerID != "" {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return sales.CreateRequest{}, fmt.Errorf("invalid customer_id %q", *r.CustomerID)
		}
		req.CustomerID = &customerID
	}
	if r.EmployeeID != nil && *r.EmployeeID != "" {
		employeeID, err := id.Parse(*r.EmployeeID)
		if err != nil {
			return sales.CreateRequest{}, fmt.Errorf("invalid employee_id %q", *r.EmployeeID)
		}
		req.EmployeeID = &employeeID
	}

	return req, nil
}

// CreateReturnRequest is a multi-item return against one invoice.
type CreateReturnRequest struct {
	InvoiceID   string              `json:"invoice_id" binding:"required"`
	Items       []ReturnLineRequest `json:"items" binding:"required,min=1,dive"`
	RefundType  string              `json:"refund_type,omitempty" binding:"omitempty,oneof=cash credit_note"`
	TotalRefund *float64            `json:"total_refund,omitempty"`
}

// ReturnLineRequest is one returned quantity.
type ReturnLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int64  `json:"qty" binding:"required"`
}

// ToEntity converts the request to the return-pipeline input.
func (r *CreateReturnRequest) ToEntity() (sales.ReturnRequest, error) {
	invoiceID, err := id.Parse(r.InvoiceID)
	if err != nil {
		return sales.ReturnRequest{}, fmt.Errorf("invalid invoice_id %q", r.InvoiceID)
	}

	req := sales.ReturnRequest{
		InvoiceID:  invoiceID,
		RefundType: r.RefundType,
	}
	req.Items = make([]sales.ReturnLine, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return sales.ReturnRequest{}, fmt.Errorf("invalid product_id %q", item.ProductID)
		}
		req.Items = append(req.Items, sales.ReturnLine{
			ProductID: productID,
			Qty:       item.Qty,
		})
	}
	if r.TotalRefund != nil {
		override := types.NewMoney(*r.TotalRefund)
		req.TotalRefund = &override
	}
	return req, nil
}

package dto

import (
	"fmt"

	"vendura/internal/core/id"
	"vendura/internal/core/types"
	"vendura/internal/domain/purchasing"
)

// CreatePurchaseRequest records a supplier purchase. Unit costs are
// tax-exclusive; tax rates come from the product catalog.
type CreatePurchaseRequest struct {
	SupplierID    string                `json:"supplier_id" binding:"required"`
	Items         []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string                `json:"payment_method" binding:"required,oneof=cash card upi bank credit"`
}

// PurchaseLineRequest is one incoming purchase line.
type PurchaseLineRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Qty       int64   `json:"qty" binding:"required"`
	UnitCost  float64 `json:"unit_cost" binding:"required,gte=0"`
}

// ToEntity converts the request to the purchase-pipeline input.
func (r *CreatePurchaseRequest) ToEntity() (purchasing.CreateRequest, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchasing.CreateRequest{}, fmt.Errorf("invalid supplier_id %q", r.SupplierID)
	}

	req := purchasing.CreateRequest{
		SupplierID:    supplierID,
		PaymentMethod: r.PaymentMethod,
	}
	req.Items = make([]purchasing.RequestItem, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return purchasing.CreateRequest{}, fmt.Errorf("invalid product_id %q", item.ProductID)
		}
		req.Items = append(req.Items, purchasing.RequestItem{
			ProductID: productID,
			Qty:       item.Qty,
			UnitCost:  types.NewMoney(item.UnitCost),
		})
	}
	return req, nil
}

// CreatePurchaseReturnRequest sends quantities back to the supplier.
type CreatePurchaseReturnRequest struct {
	PurchaseID string                      `json:"purchase_id" binding:"required"`
	Items      []PurchaseReturnLineRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseReturnLineRequest is one returned quantity.
type PurchaseReturnLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int64  `json:"qty" binding:"required"`
}

// ToEntity converts the request to the purchase-return input.
func (r *CreatePurchaseReturnRequest) ToEntity() (purchasing.ReturnRequest, error) {
	purchaseID, err := id.Parse(r.PurchaseID)
	if err != nil {
		return purchasing.ReturnRequest{}, fmt.Errorf("invalid purchase_id %q", r.PurchaseID)
	}

	req := purchasing.ReturnRequest{PurchaseID: purchaseID}
	req.Items = make([]purchasing.ReturnLine, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return purchasing.ReturnRequest{}, fmt.Errorf("invalid product_id %q", item.ProductID)
		}
		req.Items = append(req.Items, purchasing.ReturnLine{
			ProductID: productID,
			Qty:       item.Qty,
		})
	}
	return req, nil
}

// SupplierPaymentRequest settles part of a supplier balance.
type SupplierPaymentRequest struct {
	SupplierID string  `json:"supplier_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Method     string  `json:"method" binding:"required,oneof=cash card upi bank"`
	Notes      string  `json:"notes,omitempty"`
}

// ToEntity converts the request to the payment input.
func (r *SupplierPaymentRequest) ToEntity() (purchasing.PaymentRequest, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchasing.PaymentRequest{}, fmt.Errorf("invalid supplier_id %q", r.SupplierID)
	}
	return purchasing.PaymentRequest{
		SupplierID: supplierID,
		Amount:     types.NewMoney(r.Amount),
		Method:     r.Method,
		Notes:      r.Notes,
	}, nil
}

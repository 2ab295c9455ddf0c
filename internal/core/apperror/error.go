// Package apperror provides structured error handling for the platform.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. The sale pipeline surfaces these as tagged variants;
// the HTTP layer maps them to status codes.
const (
	// Validation (caller's fault, 400/422)
	CodeEmptyItems          = "EMPTY_ITEMS"
	CodeInvalidQty          = "INVALID_QTY"
	CodeInvalidCoupon       = "INVALID_COUPON"
	CodeCouponMinBill       = "COUPON_MIN_BILL"
	CodeCouponLimitGlobal   = "COUPON_LIMIT_GLOBAL"
	CodeCouponLimitCustomer = "COUPON_LIMIT_CUSTOMER"
	CodeInsufficientPoints  = "INSUFFICIENT_POINTS"
	CodeInvalidEmployee     = "INVALID_EMPLOYEE"
	CodeExceedsReturnable   = "EXCEEDS_RETURNABLE"
	CodeProductNotOnInvoice = "PRODUCT_NOT_ON_INVOICE"
	CodeValidation          = "VALIDATION_ERROR"

	// Not-found (404)
	CodeNotFound         = "NOT_FOUND"
	CodeProductNotFound  = "PRODUCT_NOT_FOUND"
	CodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
	CodeInvoiceNotFound  = "INVOICE_NOT_FOUND"
	CodeNoInventoryRow   = "NO_INVENTORY_ROW"

	// Config (500)
	CodeCOAMissing           = "COA_MISSING"
	CodeNoActiveDiscountRule = "NO_ACTIVE_DISCOUNT_RULE"

	// Conflict (409)
	CodeInvoiceNumberCollision = "INVOICE_NUMBER_COLLISION"
	CodeCouponUsageRace        = "COUPON_USAGE_RACE"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"

	// Auth (401/403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Internal (5xx)
	CodeStoreError = "STORE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// AppError is the standard error type for the platform.
// It implements the error interface and provides structured details for
// API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error with an explicit code (400).
func NewValidation(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not-found error with an explicit code (404).
func NewNotFound(code, entity string, id any) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConflict creates a conflict error with an explicit code (409).
func NewConflict(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewNoInventoryRow reports a sale line whose product has no inventory row.
func NewNoInventoryRow(productID any) *AppError {
	return &AppError{
		Code:       CodeNoInventoryRow,
		Message:    "no inventory row for product",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"product_id": productID},
	}
}

// NewInsufficientStock reports a conditional decrement that would drive
// stock negative.
func NewInsufficientStock(productID any, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewCOAMissing reports a chart-of-accounts name the tenant is missing.
// This is a configuration fault, not a caller fault.
func NewCOAMissing(name string) *AppError {
	return &AppError{
		Code:       CodeCOAMissing,
		Message:    fmt.Sprintf("account %q is not configured for this tenant", name),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"account": name},
	}
}

// NewStoreError wraps a row-store failure. Only a generic message is
// surfaced; the cause goes to the log.
func NewStoreError(err error) *AppError {
	return &AppError{
		Code:       CodeStoreError,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client).
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403).
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if err is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the appropriate HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrorKind is the machine-readable class of a domain error
type ErrorKind string

// Error kinds
const (
	KindNotFound             ErrorKind = "not_found"
	KindValidation           ErrorKind = "validation_error"
	KindInventoryApplication ErrorKind = "inventory_application_error"
	KindInternal             ErrorKind = "internal_error"
)

// Error is a classified domain error. Two errors match under errors.Is
// when their codes are equal, so wrapped sentinels stay comparable.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinel errors
var (
	ErrOrderNotFound    = &Error{Kind: KindNotFound, Code: "order_not_found", Message: "order not found"}
	ErrProductNotFound  = &Error{Kind: KindNotFound, Code: "product_not_found", Message: "product not found"}
	ErrPurchaseNotFound = &Error{Kind: KindNotFound, Code: "purchase_not_found", Message: "purchase not found"}

	ErrEmptyLineItems          = &Error{Kind: KindValidation, Code: "empty_line_items", Message: "order must contain at least one line item"}
	ErrNonPositiveQuantity     = &Error{Kind: KindValidation, Code: "non_positive_quantity", Message: "line item quantity must be positive"}
	ErrQuantityTooLarge        = &Error{Kind: KindValidation, Code: "quantity_too_large", Message: "line item quantity exceeds the stock counter range"}
	ErrMissingProductID        = &Error{Kind: KindValidation, Code: "missing_product_id", Message: "line item product_id is required"}
	ErrInvalidStatus           = &Error{Kind: KindValidation, Code: "invalid_status", Message: "invalid order status"}
	ErrInvalidStatusTransition = &Error{Kind: KindValidation, Code: "invalid_status_transition", Message: "order status transition not allowed"}
	ErrInvalidPaymentMethod    = &Error{Kind: KindValidation, Code: "invalid_payment_method", Message: "invalid payment method"}
	ErrInvalidPurchase         = &Error{Kind: KindValidation, Code: "invalid_purchase", Message: "invalid purchase"}

	ErrInsufficientStock = &Error{Kind: KindInventoryApplication, Code: "insufficient_stock", Message: "insufficient stock"}
)

// FailureReason explains why a single adjustment was not applied
type FailureReason string

// Failure reasons
const (
	FailureProductNotFound   FailureReason = "product_not_found"
	FailureInsufficientStock FailureReason = "insufficient_stock"
)

// FailedAdjustment is one entry of a batch that could not be applied
type FailedAdjustment struct {
	ProductID uuid.UUID     `json:"product_id"`
	Delta     int           `json:"delta"`
	Reason    FailureReason `json:"reason"`
	Count     *int          `json:"count,omitempty"`
}

// InventoryApplicationError reports a stock batch that partially or fully
// failed to apply. Nothing from the batch is committed when it is returned
// from a unit of work.
type InventoryApplicationError struct {
	OrderID uuid.UUID          `json:"order_id,omitempty"`
	Failed  []FailedAdjustment `json:"failed"`
	// Valid counts entries that passed their guard. None of them is
	// committed: the batch is all or nothing.
	Valid int `json:"valid"`
}

func (e *InventoryApplicationError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s (%s, delta %d)", f.ProductID, f.Reason, f.Delta))
	}
	return fmt.Sprintf("inventory adjustment failed for %d of %d entries: %s",
		len(e.Failed), len(e.Failed)+e.Valid, strings.Join(parts, "; "))
}

// Unwrap exposes one sentinel per distinct failure reason
func (e *InventoryApplicationError) Unwrap() []error {
	seen := make(map[FailureReason]bool)
	var errs []error
	for _, f := range e.Failed {
		if seen[f.Reason] {
			continue
		}
		seen[f.Reason] = true
		switch f.Reason {
		case FailureProductNotFound:
			errs = append(errs, ErrProductNotFound)
		case FailureInsufficientStock:
			errs = append(errs, ErrInsufficientStock)
		}
	}
	return errs
}

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var appErr *InventoryApplicationError
	if errors.As(err, &appErr) {
		return KindInventoryApplication
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// CodeOf returns the machine code of err, or "internal_error"
func CodeOf(err error) string {
	var appErr *InventoryApplicationError
	if errors.As(err, &appErr) {
		return string(KindInventoryApplication)
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return string(KindInternal)
}

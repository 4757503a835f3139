// internal/core/domain/order.go
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

// Order status constants
const (
	StatusAdded     OrderStatus = "added"
	StatusAccepted  OrderStatus = "accepted"
	StatusOnTheWay  OrderStatus = "on_the_way"
	StatusSold      OrderStatus = "sold"
	StatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusAdded, StatusAccepted, StatusOnTheWay, StatusSold, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further fulfilment progress is possible
func (s OrderStatus) IsTerminal() bool {
	return s == StatusSold || s == StatusCancelled
}

// CanTransitionTo validates a status change requested through an edit.
// Live statuses may be set in any order, so a mistaken step can be undone
// and an order can be closed as sold directly. Cancelled orders may be
// reactivated; sold orders are final.
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if s == next {
		return nil
	}
	if s == StatusSold {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, next)
	}
	return nil
}

// PaymentMethod represents how the customer pays
type PaymentMethod string

// Payment method constants
const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// IsValid reports whether p is a known payment method
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// LineItem is a (product, quantity) pairing within an order
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// Customer holds the contact fields captured with an order
type Customer struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location,omitempty"`
}

// Order represents a customer order
type Order struct {
	ID            uuid.UUID     `json:"id"`
	Status        OrderStatus   `json:"status"`
	LineItems     []LineItem    `json:"line_items"`
	Customer      Customer      `json:"customer"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	AssigneeID    *uuid.UUID    `json:"assignee_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	DeliveryDate  *time.Time    `json:"delivery_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Validate checks an order before it is reconciled and persisted
func (o *Order) Validate() error {
	if err := ValidateLineItems(o.LineItems); err != nil {
		return err
	}
	if o.Status != "" && !o.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	if o.PaymentMethod != "" && !o.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, o.PaymentMethod)
	}
	return nil
}

// PrepareForStorage normalizes fields and fills defaults for a new order
func (o *Order) PrepareForStorage() {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusAdded
	}

	o.Customer.Name = strings.TrimSpace(o.Customer.Name)
	o.Customer.Phone = strings.TrimSpace(o.Customer.Phone)
	o.Customer.Location = strings.TrimSpace(o.Customer.Location)

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	c := *o
	c.LineItems = append([]LineItem(nil), o.LineItems...)
	if o.AssigneeID != nil {
		id := *o.AssigneeID
		c.AssigneeID = &id
	}
	if o.DeliveryDate != nil {
		d := *o.DeliveryDate
		c.DeliveryDate = &d
	}
	return &c
}

// MaxQuantity is the largest quantity a product may carry in one order,
// per line item and after merging duplicates. Stock counters are INTEGER.
const MaxQuantity = math.MaxInt32

// ValidateLineItems enforces a non-empty list of positive quantities whose
// per-product totals fit a stock counter
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyLineItems
	}
	totals := make(map[uuid.UUID]int, len(items))
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: line item %d", ErrMissingProductID, i)
		}
		if item.Qty <= 0 {
			return fmt.Errorf("%w: line item %d has qty %d", ErrNonPositiveQuantity, i, item.Qty)
		}
		if item.Qty > MaxQuantity-totals[item.ProductID] {
			return fmt.Errorf("%w: product %s exceeds %d", ErrQuantityTooLarge, item.ProductID, MaxQuantity)
		}
		totals[item.ProductID] += item.Qty
	}
	return nil
}

// OrderPatch carries the optional fields of an edit request.
// A nil field leaves the stored value untouched.
type OrderPatch struct {
	LineItems     []LineItem     `json:"line_items,omitempty"`
	Status        *OrderStatus   `json:"status,omitempty"`
	Customer      *CustomerPatch `json:"customer,omitempty"`
	AssigneeID    *uuid.UUID     `json:"assignee_id,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	DeliveryDate  *time.Time     `json:"delivery_date,omitempty"`
}

// CustomerPatch carries optional customer field updates
type CustomerPatch struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Validate checks the patch without consulting stored state
func (p *OrderPatch) Validate() error {
	if p.LineItems != nil {
		if err := ValidateLineItems(p.LineItems); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.PaymentMethod != nil && !p.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, *p.PaymentMethod)
	}
	return nil
}

// ChangesLineItems reports whether the patch replaces the line-item list
func (p *OrderPatch) ChangesLineItems() bool {
	return p.LineItems != nil
}

// ApplyTo copies the patched fields onto o
func (p *OrderPatch) ApplyTo(o *Order) {
	if p.LineItems != nil {
		o.LineItems = append([]LineItem(nil), p.LineItems...)
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Customer != nil {
		if p.Customer.Name != nil {
			o.Customer.Name = strings.TrimSpace(*p.Customer.Name)
		}
		if p.Customer.Phone != nil {
			o.Customer.Phone = strings.TrimSpace(*p.Customer.Phone)
		}
		if p.Customer.Location != nil {
			o.Customer.Location = strings.TrimSpace(*p.Customer.Location)
		}
	}
	if p.AssigneeID != nil {
		id := *p.AssigneeID
		o.AssigneeID = &id
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.DeliveryDate != nil {
		d := *p.DeliveryDate
		o.DeliveryDate = &d
	}
	o.UpdatedAt = time.Now().UTC()
}

package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/resell-orders/internal/core/domain"
)

func TestOrder_Validate(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name    string
		order   domain.Order
		wantErr error
	}{
		{
			name: "valid_order",
			order: domain.Order{
				LineItems: []domain.LineItem{{ProductID: productID, Qty: 2}},
			},
		},
		{
			name:    "empty_line_items",
			order:   domain.Order{},
			wantErr: domain.ErrEmptyLineItems,
		},
		{
			name: "zero_quantity",
			order: domain.Order{
				LineItems: []domain.LineItem{{ProductID: productID, Qty: 0}},
			},
			wantErr: domain.ErrNonPositiveQuantity,
		},
		{
			name: "negative_quantity",
			order: domain.Order{
				LineItems: []domain.LineItem{{ProductID: productID, Qty: -4}},
			},
			wantErr: domain.ErrNonPositiveQuantity,
		},
		{
			name: "quantity_above_counter_range",
			order: domain.Order{
				LineItems: []domain.LineItem{{ProductID: productID, Qty: domain.MaxQuantity + 1}},
			},
			wantErr: domain.ErrQuantityTooLarge,
		},
		{
			name: "merged_quantity_above_counter_range",
			order: domain.Order{
				LineItems: []domain.LineItem{
					{ProductID: productID, Qty: math.MaxInt},
					{ProductID: productID, Qty: math.MaxInt},
				},
			},
			wantErr: domain.ErrQuantityTooLarge,
		},
		{
			name: "merged_quantity_at_counter_range",
			order: domain.Order{
				LineItems: []domain.LineItem{
					{ProductID: productID, Qty: domain.MaxQuantity - 1},
					{ProductID: productID, Qty: 1},
					{ProductID: uuid.New(), Qty: domain.MaxQuantity},
				},
			},
		},
		{
			name: "missing_product_id",
			order: domain.Order{
				LineItems: []domain.LineItem{{Qty: 1}},
			},
			wantErr: domain.ErrMissingProductID,
		},
		{
			name: "unknown_status",
			order: domain.Order{
				Status:    "shipped",
				LineItems: []domain.LineItem{{ProductID: productID, Qty: 1}},
			},
			wantErr: domain.ErrInvalidStatus,
		},
		{
			name: "unknown_payment_method",
			order: domain.Order{
				PaymentMethod: "barter",
				LineItems:     []domain.LineItem{{ProductID: productID, Qty: 1}},
			},
			wantErr: domain.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestOrder_PrepareForStorage(t *testing.T) {
	o := &domain.Order{
		Customer: domain.Customer{Name: "  Dana ", Phone: " +15550001 ", Location: " north "},
	}
	o.PrepareForStorage()

	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Equal(t, domain.StatusAdded, o.Status)
	assert.Equal(t, "Dana", o.Customer.Name)
	assert.Equal(t, "+15550001", o.Customer.Phone)
	assert.Equal(t, "north", o.Customer.Location)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
}

func TestOrder_Clone(t *testing.T) {
	assignee := uuid.New()
	o := &domain.Order{
		LineItems:  []domain.LineItem{{ProductID: uuid.New(), Qty: 1}},
		AssigneeID: &assignee,
	}

	c := o.Clone()
	c.LineItems[0].Qty = 99
	*c.AssigneeID = uuid.New()

	assert.Equal(t, 1, o.LineItems[0].Qty)
	assert.Equal(t, assignee, *o.AssigneeID)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		wantErr error
	}{
		{name: "added_to_accepted", from: domain.StatusAdded, to: domain.StatusAccepted},
		{name: "accepted_to_on_the_way", from: domain.StatusAccepted, to: domain.StatusOnTheWay},
		{name: "on_the_way_to_sold", from: domain.StatusOnTheWay, to: domain.StatusSold},
		{name: "added_to_cancelled", from: domain.StatusAdded, to: domain.StatusCancelled},
		{name: "cancelled_reactivated", from: domain.StatusCancelled, to: domain.StatusAccepted},
		{name: "on_the_way_back_to_added", from: domain.StatusOnTheWay, to: domain.StatusAdded},
		{name: "added_straight_to_sold", from: domain.StatusAdded, to: domain.StatusSold},
		{name: "cancelled_straight_to_sold", from: domain.StatusCancelled, to: domain.StatusSold},
		{name: "sold_cannot_reopen", from: domain.StatusSold, to: domain.StatusAdded, wantErr: domain.ErrInvalidStatusTransition},
		{name: "same_status_is_noop", from: domain.StatusSold, to: domain.StatusSold},
		{name: "sold_is_final", from: domain.StatusSold, to: domain.StatusCancelled, wantErr: domain.ErrInvalidStatusTransition},
		{name: "unknown_target", from: domain.StatusAdded, to: "lost", wantErr: domain.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.from.CanTransitionTo(tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderPatch_Validate(t *testing.T) {
	bad := domain.OrderStatus("bogus")
	method := domain.PaymentMethod("iou")

	assert.NoError(t, (&domain.OrderPatch{}).Validate())
	assert.ErrorIs(t, (&domain.OrderPatch{LineItems: []domain.LineItem{}}).Validate(), domain.ErrEmptyLineItems)
	assert.ErrorIs(t, (&domain.OrderPatch{Status: &bad}).Validate(), domain.ErrInvalidStatus)
	id := uuid.New()
	assert.ErrorIs(t, (&domain.OrderPatch{LineItems: []domain.LineItem{
		{ProductID: id, Qty: domain.MaxQuantity},
		{ProductID: id, Qty: 1},
	}}).Validate(), domain.ErrQuantityTooLarge)
	assert.ErrorIs(t, (&domain.OrderPatch{PaymentMethod: &method}).Validate(), domain.ErrInvalidPaymentMethod)
}

func TestOrderPatch_ApplyTo(t *testing.T) {
	productID := uuid.New()
	assignee := uuid.New()
	status := domain.StatusAccepted
	name := "  Lee "

	o := &domain.Order{
		Status:    domain.StatusAdded,
		LineItems: []domain.LineItem{{ProductID: productID, Qty: 1}},
		Customer:  domain.Customer{Name: "Old", Phone: "123"},
	}
	patch := &domain.OrderPatch{
		Status:     &status,
		Customer:   &domain.CustomerPatch{Name: &name},
		AssigneeID: &assignee,
	}

	assert.False(t, patch.ChangesLineItems())
	patch.ApplyTo(o)

	assert.Equal(t, domain.StatusAccepted, o.Status)
	assert.Equal(t, "Lee", o.Customer.Name)
	assert.Equal(t, "123", o.Customer.Phone, "unpatched fields are kept")
	assert.Equal(t, assignee, *o.AssigneeID)
	assert.Len(t, o.LineItems, 1)
	assert.False(t, o.UpdatedAt.IsZero())
}

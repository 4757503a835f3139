package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/resell-orders/internal/core/domain"
)

func TestKindOf(t *testing.T) {
	appErr := &domain.InventoryApplicationError{
		Failed: []domain.FailedAdjustment{{ProductID: uuid.New(), Delta: -2, Reason: domain.FailureInsufficientStock}},
	}

	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
		code string
	}{
		{name: "nil", err: nil, kind: ""},
		{name: "not_found", err: domain.ErrOrderNotFound, kind: domain.KindNotFound, code: "order_not_found"},
		{name: "wrapped_validation", err: fmt.Errorf("create: %w", domain.ErrEmptyLineItems), kind: domain.KindValidation, code: "empty_line_items"},
		{name: "inventory_application", err: fmt.Errorf("tx: %w", appErr), kind: domain.KindInventoryApplication, code: "inventory_application_error"},
		{name: "plain_error", err: errors.New("boom"), kind: domain.KindInternal, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, domain.KindOf(tt.err))
			if tt.err != nil {
				assert.Equal(t, tt.code, domain.CodeOf(tt.err))
			}
		})
	}
}

func TestInventoryApplicationError(t *testing.T) {
	count := 1
	err := &domain.InventoryApplicationError{
		Failed: []domain.FailedAdjustment{
			{ProductID: uuid.New(), Delta: -3, Reason: domain.FailureInsufficientStock, Count: &count},
			{ProductID: uuid.New(), Delta: -1, Reason: domain.FailureProductNotFound},
			{ProductID: uuid.New(), Delta: -5, Reason: domain.FailureInsufficientStock},
		},
		Valid: 2,
	}

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Len(t, err.Unwrap(), 2)
	assert.Contains(t, err.Error(), "3 of 5 entries")
}

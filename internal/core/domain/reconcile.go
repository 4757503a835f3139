// internal/core/domain/reconcile.go
package domain

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// Transition names the order lifecycle event that drives a stock batch
type Transition string

// Transition kinds
const (
	TransitionCreate     Transition = "create"
	TransitionEdit       Transition = "edit"
	TransitionCancel     Transition = "cancel"
	TransitionReactivate Transition = "reactivate"
	TransitionDelete     Transition = "delete"
)

// Reason maps a transition to the ledger reason recorded with its movements
func (t Transition) Reason() MovementReason {
	switch t {
	case TransitionCreate:
		return ReasonOrderCreated
	case TransitionCancel:
		return ReasonOrderCancelled
	case TransitionReactivate:
		return ReasonOrderReactivated
	case TransitionDelete:
		return ReasonOrderDeleted
	default:
		return ReasonOrderEdited
	}
}

// Quantities is the merged quantity per product
type Quantities map[uuid.UUID]int

// MergeLineItems sums quantities of line items sharing a product id
func MergeLineItems(items []LineItem) Quantities {
	merged := make(Quantities, len(items))
	for _, item := range items {
		merged[item.ProductID] += item.Qty
	}
	return merged
}

// Total returns the sum of all quantities
func (q Quantities) Total() int {
	total := 0
	for _, qty := range q {
		total += qty
	}
	return total
}

// ComputeDeltas returns the stock adjustments for a transition between the
// merged quantities recorded before (old) and after (new) the mutation.
// Create reads only new; cancel, reactivate and delete read only old.
// Zero deltas are omitted and the result is sorted by product id.
func ComputeDeltas(kind Transition, old, new Quantities) []StockDelta {
	acc := make(map[uuid.UUID]int)

	switch kind {
	case TransitionCreate:
		for id, qty := range new {
			acc[id] -= qty
		}
	case TransitionEdit:
		for id, qty := range new {
			acc[id] -= qty - old[id]
		}
		for id, qty := range old {
			if _, kept := new[id]; !kept {
				acc[id] += qty
			}
		}
	case TransitionCancel, TransitionDelete:
		for id, qty := range old {
			acc[id] += qty
		}
	case TransitionReactivate:
		for id, qty := range old {
			acc[id] -= qty
		}
	}

	return collectDeltas(acc)
}

// CombineDeltas sums several delta lists per product into one batch
func CombineDeltas(lists ...[]StockDelta) []StockDelta {
	acc := make(map[uuid.UUID]int)
	for _, list := range lists {
		for _, d := range list {
			acc[d.ProductID] += d.Delta
		}
	}
	return collectDeltas(acc)
}

// InvertDeltas negates every delta
func InvertDeltas(deltas []StockDelta) []StockDelta {
	out := make([]StockDelta, len(deltas))
	for i, d := range deltas {
		out[i] = StockDelta{ProductID: d.ProductID, Delta: -d.Delta}
	}
	return out
}

func collectDeltas(acc map[uuid.UUID]int) []StockDelta {
	deltas := make([]StockDelta, 0, len(acc))
	for id, delta := range acc {
		if delta == 0 {
			continue
		}
		deltas = append(deltas, StockDelta{ProductID: id, Delta: delta})
	}
	sort.Slice(deltas, func(i, j int) bool {
		return bytes.Compare(deltas[i].ProductID[:], deltas[j].ProductID[:]) < 0
	})
	return deltas
}

// internal/core/services/types.go
package services

import (
	"fmt"
	"time"
)

// NegativePolicy decides whether a stock batch may drive a count below zero
type NegativePolicy string

// Negative count policies
const (
	NegativeReject NegativePolicy = "reject"
	NegativeAllow  NegativePolicy = "allow"
)

// ParseNegativePolicy maps a config value to a policy
func ParseNegativePolicy(s string) (NegativePolicy, error) {
	switch NegativePolicy(s) {
	case NegativeReject, "":
		return NegativeReject, nil
	case NegativeAllow:
		return NegativeAllow, nil
	}
	return "", fmt.Errorf("unknown negative stock policy %q", s)
}

// OrderServiceConfig tunes the reconciliation engine
type OrderServiceConfig struct {
	NegativePolicy NegativePolicy
	// LowStockThreshold triggers an alert when a decrement leaves a count
	// at or below it
	LowStockThreshold int
	CacheTTL          time.Duration
}

// DefaultOrderServiceConfig returns the production defaults
func DefaultOrderServiceConfig() OrderServiceConfig {
	return OrderServiceConfig{
		NegativePolicy:    NegativeReject,
		LowStockThreshold: 2,
		CacheTTL:          10 * time.Minute,
	}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

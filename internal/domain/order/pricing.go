package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PricingPolicy decides where line totals come from.
type PricingPolicy string

const (
	// PricingTrust stores the caller supplied line total as is and leaves the
	// order total untouched when items change later.
	PricingTrust PricingPolicy = "trust"
	// PricingRecompute derives line totals from unit price and quantity and
	// keeps the order total equal to the sum of its items.
	PricingRecompute PricingPolicy = "recompute"
)

func ParsePricingPolicy(s string) (PricingPolicy, error) {
	switch p := PricingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PricingTrust, nil
	case PricingTrust, PricingRecompute:
		return p, nil
	default:
		return "", fmt.Errorf("order: unknown pricing policy %q", s)
	}
}

func (p PricingPolicy) LineTotal(quantity int, unitPrice, given decimal.Decimal) decimal.Decimal {
	if p == PricingRecompute {
		return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	}
	return given
}

func (p PricingPolicy) TracksItems() bool { return p == PricingRecompute }

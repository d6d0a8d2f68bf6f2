package pricing

import "github.com/Pritam-devloper/shophub/internal/domain"

// Config holds the pricing policy constants. All amounts are in cents and
// the tax rate is expressed in basis points so repeated accumulation stays
// exact in integer arithmetic.
type Config struct {
	// FreeShippingThresholdCents is the subtotal above which shipping is free.
	FreeShippingThresholdCents int64
	// FlatShippingFeeCents is charged when the subtotal is at or below the threshold.
	FlatShippingFeeCents int64
	// TaxRateBasisPoints is the tax rate in basis points (800 = 8%).
	TaxRateBasisPoints int64
}

// DefaultConfig returns the storefront's standard pricing policy:
// free shipping over $100, a flat $10 fee otherwise, and 8% tax.
func DefaultConfig() Config {
	return Config{
		FreeShippingThresholdCents: 100_00,
		FlatShippingFeeCents:       10_00,
		TaxRateBasisPoints:         800,
	}
}

// Snapshot is the derived pricing breakdown for a cart state. It is
// recomputed from the live cart on demand and never cached or stored.
type Snapshot struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Quote computes the pricing snapshot for the given line items.
// Shipping is free only when the subtotal strictly exceeds the threshold.
func (c Config) Quote(items []domain.LineItem) Snapshot {
	var subtotal int64
	for _, item := range items {
		subtotal += item.PriceCents * int64(item.Quantity)
	}

	var shipping int64
	if subtotal <= c.FreeShippingThresholdCents {
		shipping = c.FlatShippingFeeCents
	}

	tax := subtotal * c.TaxRateBasisPoints / 10_000

	return Snapshot{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal + shipping + tax,
	}
}

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Pritam-devloper/shophub/internal/domain"
)

func itemsWithSubtotal(cents int64) []domain.LineItem {
	return []domain.LineItem{
		{Product: domain.Product{ID: 1, PriceCents: cents}, Quantity: 1},
	}
}

func TestQuote_BelowFreeShippingThreshold(t *testing.T) {
	cfg := DefaultConfig()

	snap := cfg.Quote(itemsWithSubtotal(8000))

	assert.Equal(t, int64(8000), snap.SubtotalCents)
	assert.Equal(t, int64(1000), snap.ShippingCents)
	assert.Equal(t, int64(640), snap.TaxCents)
	assert.Equal(t, int64(9640), snap.TotalCents)
}

func TestQuote_AboveFreeShippingThreshold(t *testing.T) {
	cfg := DefaultConfig()

	snap := cfg.Quote(itemsWithSubtotal(12000))

	assert.Equal(t, int64(12000), snap.SubtotalCents)
	assert.Equal(t, int64(0), snap.ShippingCents)
	assert.Equal(t, int64(960), snap.TaxCents)
	assert.Equal(t, int64(12960), snap.TotalCents)
}

func TestQuote_ExactlyAtThreshold_ChargesShipping(t *testing.T) {
	cfg := DefaultConfig()

	// Free shipping requires the subtotal to strictly exceed the threshold.
	snap := cfg.Quote(itemsWithSubtotal(10000))

	assert.Equal(t, int64(1000), snap.ShippingCents)
}

func TestQuote_MultipleLineItems(t *testing.T) {
	cfg := DefaultConfig()

	items := []domain.LineItem{
		{Product: domain.Product{ID: 1, PriceCents: 2500}, Quantity: 2},
		{Product: domain.Product{ID: 2, PriceCents: 1000}, Quantity: 1},
	}

	snap := cfg.Quote(items)

	assert.Equal(t, int64(6000), snap.SubtotalCents)
	assert.Equal(t, int64(1000), snap.ShippingCents)
	assert.Equal(t, int64(480), snap.TaxCents)
	assert.Equal(t, int64(7480), snap.TotalCents)
}

func TestQuote_EmptyCart(t *testing.T) {
	cfg := DefaultConfig()

	snap := cfg.Quote(nil)

	assert.Equal(t, int64(0), snap.SubtotalCents)
	// An empty cart still quotes the flat fee; checkout rejects empty carts
	// before this matters.
	assert.Equal(t, int64(1000), snap.ShippingCents)
	assert.Equal(t, int64(0), snap.TaxCents)
}

func TestQuote_CustomPolicy(t *testing.T) {
	cfg := Config{
		FreeShippingThresholdCents: 5000,
		FlatShippingFeeCents:       500,
		TaxRateBasisPoints:         1000,
	}

	snap := cfg.Quote(itemsWithSubtotal(6000))

	assert.Equal(t, int64(0), snap.ShippingCents)
	assert.Equal(t, int64(600), snap.TaxCents)
	assert.Equal(t, int64(6600), snap.TotalCents)
}

func TestQuote_ZeroTaxRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxRateBasisPoints = 0

	snap := cfg.Quote(itemsWithSubtotal(12000))

	assert.Equal(t, int64(0), snap.TaxCents)
	assert.Equal(t, int64(12000), snap.TotalCents)
}

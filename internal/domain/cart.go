package domain

// LineItem represents a product held in the cart together with its quantity.
// A cart contains at most one line item per product ID, and quantity is
// always at least 1.
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is an ordered collection of line items. First-added stays first
// unless removed and re-added.
type Cart struct {
	Items []LineItem `json:"items"`
}

// TotalCents calculates the total price of all items in the cart (in cents).
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart, not the number
// of distinct line items.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line item matching the given
// product ID. Returns -1 if not found.
func (c *Cart) FindItemIndex(productID int) int {
	for i := range c.Items {
		if c.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

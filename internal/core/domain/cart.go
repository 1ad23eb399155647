package domain

// CartItem is a single line in the server-side cart.
type CartItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CartSummary mirrors the backend cart payload. TotalItems is authoritative
// when the backend sends it; older backends omit it and the count is derived
// from the line quantities.
type CartSummary struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items,omitempty"`
}

// ItemCount returns the badge count for the cart.
func (c CartSummary) ItemCount() int {
	if c.TotalItems > 0 {
		return c.TotalItems
	}
	sum := 0
	for _, it := range c.Items {
		sum += it.Quantity
	}
	return sum
}

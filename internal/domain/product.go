package domain

// Rating holds the aggregate review score for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product represents a catalog product. Prices are stored in cents; the
// remote catalog returns decimal amounts and the catalog client converts
// them on ingest.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PriceCents  int64  `json:"price_cents"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Rating      Rating `json:"rating"`
}

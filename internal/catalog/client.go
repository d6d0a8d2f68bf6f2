package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/pkg/httpclient"
)

// productPayload mirrors the remote catalog's JSON shape, which carries
// prices as decimal numbers.
type productPayload struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		PriceCents:  int64(math.Round(p.Price * 100)),
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		Rating: domain.Rating{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

// Client retrieves products and categories from the remote catalog API.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(http *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/products")
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var payload []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]domain.Product, len(payload))
	for i, p := range payload {
		products[i] = p.toDomain()
	}
	return products, nil
}

// Categories fetches the category name list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/products/categories")
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var categories []string
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id int) (domain.Product, error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id))
	if err != nil {
		return domain.Product{}, fmt.Errorf("fetch product %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domain.Product{}, httpclient.ParseResponseError(resp, "catalog")
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %d: %w", id, err)
	}
	return payload.toDomain(), nil
}

// ProductsByCategory fetches the products within a single category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/products/category/"+url.PathEscape(category))
	if err != nil {
		return nil, fmt.Errorf("fetch category %s: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var payload []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", category, err)
	}

	products := make([]domain.Product, len(payload))
	for i, p := range payload {
		products[i] = p.toDomain()
	}
	return products, nil
}

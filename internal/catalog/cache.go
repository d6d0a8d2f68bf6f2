package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Pritam-devloper/shophub/internal/domain"
)

// Fetcher is the subset of the catalog client the cache depends on.
type Fetcher interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Cache holds the most recently fetched product and category collections.
// It is refetched each session rather than persisted. After a Refresh
// completes the contents are read-only and safe for any number of readers.
type Cache struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu         sync.RWMutex
	products   []domain.Product
	categories []string
	byID       map[int]domain.Product
	lastErr    error
}

// NewCache creates an empty catalog cache.
func NewCache(fetcher Fetcher, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		byID:    map[int]domain.Product{},
	}
}

// Refresh fetches the product list and categories and replaces the cache
// contents. On failure the error is recorded and the cache presents a
// degraded empty catalog until the caller retries explicitly; there is no
// automatic retry. A canceled context never applies a stale result.
func (c *Cache) Refresh(ctx context.Context) error {
	products, err := c.fetcher.Products(ctx)
	if err != nil {
		c.setError(fmt.Errorf("refresh catalog: %w", err))
		return fmt.Errorf("refresh catalog: %w", err)
	}

	categories, err := c.fetcher.Categories(ctx)
	if err != nil {
		// The product list alone is still useful; record the partial failure.
		c.logger.WarnContext(ctx, "failed to fetch categories",
			slog.String("error", err.Error()),
		)
		categories = nil
	}

	// The requesting view may be gone by the time the fetch lands.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = products
	c.categories = categories
	c.byID = byID
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "catalog refreshed",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
	)
	return nil
}

// FindByID looks up a cached product by ID. The second return value reports
// whether the product is present.
func (c *Cache) FindByID(id int) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	return p, ok
}

// Products returns the cached product list.
func (c *Cache) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]domain.Product, len(c.products))
	copy(products, c.products)
	return products
}

// Categories returns the cached category names.
func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	categories := make([]string, len(c.categories))
	copy(categories, c.categories)
	return categories
}

// Err returns the error from the last failed Refresh, or nil after a
// successful one.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Cache) setError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

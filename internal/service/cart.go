package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/internal/storage"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
	"github.com/Pritam-devloper/shophub/pkg/logger"
)

// Cart operation upper-bound limits to keep the persisted blob small.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single line item.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct line items allowed.
	MaxItemsPerCart = 50
)

// AddOutcome reports whether AddItem merged into an existing line item or
// inserted a new one. Callers use it for notifications.
type AddOutcome string

const (
	// OutcomeInserted means a new line item was appended.
	OutcomeInserted AddOutcome = "inserted"
	// OutcomeMerged means the quantity was added to an existing line item.
	OutcomeMerged AddOutcome = "merged"
)

// CartService is the sole owner of the cart state. All reads and writes
// funnel through it, and every mutation persists the full cart
// synchronously before returning, so writes are applied in the order the
// mutations were issued.
type CartService struct {
	store  storage.Store
	logger *slog.Logger

	mu       sync.RWMutex
	items    []domain.LineItem
	index    map[int]int // product ID -> position in items
	hydrated bool
}

// NewCartService creates a cart engine. The engine rejects mutations until
// Hydrate has loaded any previously persisted cart, so a stale empty cart
// can never overwrite saved contents.
func NewCartService(store storage.Store, logger *slog.Logger) *CartService {
	return &CartService{
		store:  store,
		logger: logger,
		items:  []domain.LineItem{},
		index:  map[int]int{},
	}
}

// Hydrate loads the persisted cart. A missing key yields an empty cart.
// Corrupt stored data is treated as no saved state: the anomaly is logged
// and the engine starts empty rather than failing.
func (s *CartService) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	data, err := s.store.Get(ctx, storage.KeyCart)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hydrated = true
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "discarding malformed persisted cart",
			slog.String("key", storage.KeyCart),
			slog.String("error", err.Error()),
		)
		s.hydrated = true
		return nil
	}

	s.items = items
	s.rebuildIndex()
	s.hydrated = true

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart hydrated",
		slog.Int("line_items", len(s.items)),
	)
	return nil
}

// AddItem adds a product to the cart. If a line item for the same product
// already exists its quantity is increased in place, preserving its
// position; otherwise a new line item is appended. The returned outcome
// distinguishes the two cases.
func (s *CartService) AddItem(ctx context.Context, product domain.Product, quantity int) (AddOutcome, error) {
	if quantity <= 0 {
		return "", apperrors.InvalidInput("quantity must be greater than 0")
	}
	if quantity > MaxQuantityPerItem {
		return "", apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return "", err
	}

	outcome := OutcomeInserted
	if pos, ok := s.index[product.ID]; ok {
		newQty := s.items[pos].Quantity + quantity
		if newQty > MaxQuantityPerItem {
			return "", apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		s.items[pos].Quantity = newQty
		// Refresh product fields in case the catalog changed.
		s.items[pos].Product = product
		outcome = OutcomeMerged
	} else {
		if len(s.items) >= MaxItemsPerCart {
			return "", apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		s.index[product.ID] = len(s.items)
		s.items = append(s.items, domain.LineItem{Product: product, Quantity: quantity})
	}

	if err := s.persist(ctx); err != nil {
		return "", err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "item added to cart",
		slog.Int("product_id", product.ID),
		slog.Int("quantity", quantity),
		slog.String("outcome", string(outcome)),
	)
	return outcome, nil
}

// RemoveItem deletes the line item with the given product ID. Removing an
// absent ID is a silent no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return err
	}

	pos, ok := s.index[productID]
	if !ok {
		return nil
	}

	s.items = append(s.items[:pos], s.items[pos+1:]...)
	s.rebuildIndex()

	if err := s.persist(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "item removed from cart",
		slog.Int("product_id", productID),
	)
	return nil
}

// UpdateQuantity sets the line item's quantity to exactly the given value.
// A quantity of 0 or below removes the item entirely. Updating an absent ID
// is a silent no-op.
func (s *CartService) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	if quantity > MaxQuantityPerItem {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return err
	}

	pos, ok := s.index[productID]
	if !ok {
		return nil
	}

	s.items[pos].Quantity = quantity

	if err := s.persist(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart item quantity updated",
		slog.Int("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return nil
}

// Clear empties the cart and persists the empty state.
func (s *CartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return err
	}

	s.items = []domain.LineItem{}
	s.index = map[int]int{}

	if err := s.persist(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart cleared")
	return nil
}

// Items returns a copy of the cart's line items in insertion order.
func (s *CartService) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Total returns the sum of price times quantity over all line items, in cents.
func (s *CartService) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := domain.Cart{Items: s.items}
	return cart.TotalCents()
}

// Count returns the total number of units in the cart.
func (s *CartService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := domain.Cart{Items: s.items}
	return cart.ItemCount()
}

// Contains reports whether the cart holds a line item for the given product ID.
func (s *CartService) Contains(productID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[productID]
	return ok
}

// ensureReady guards mutations against running before hydration completes.
// Callers must hold the write lock.
func (s *CartService) ensureReady() error {
	if !s.hydrated {
		return apperrors.NotReady("cart is still hydrating")
	}
	return nil
}

// persist writes the full cart to the store. Callers must hold the write lock.
func (s *CartService) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// rebuildIndex recomputes the product ID index after positions shift.
// Callers must hold the write lock.
func (s *CartService) rebuildIndex() {
	s.index = make(map[int]int, len(s.items))
	for i := range s.items {
		s.index[s.items[i].ID] = i
	}
}

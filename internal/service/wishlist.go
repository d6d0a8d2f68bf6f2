package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/internal/storage"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
	"github.com/Pritam-devloper/shophub/pkg/logger"
)

// WishlistService is the sole owner of the wishlist state: an ordered set
// of products, unique by ID, persisted under its own key.
type WishlistService struct {
	store  storage.Store
	logger *slog.Logger

	mu       sync.RWMutex
	items    []domain.Product
	index    map[int]struct{}
	hydrated bool
}

// NewWishlistService creates a wishlist engine. Like the cart, it rejects
// mutations until Hydrate has completed.
func NewWishlistService(store storage.Store, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		store:  store,
		logger: logger,
		items:  []domain.Product{},
		index:  map[int]struct{}{},
	}
}

// Hydrate loads the persisted wishlist. Missing or corrupt stored data
// yields an empty wishlist; corruption is logged, not fatal.
func (s *WishlistService) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	data, err := s.store.Get(ctx, storage.KeyWishlist)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hydrated = true
			return nil
		}
		return fmt.Errorf("load wishlist: %w", err)
	}

	var items []domain.Product
	if err := json.Unmarshal(data, &items); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "discarding malformed persisted wishlist",
			slog.String("key", storage.KeyWishlist),
			slog.String("error", err.Error()),
		)
		s.hydrated = true
		return nil
	}

	s.items = items
	s.index = make(map[int]struct{}, len(items))
	for i := range items {
		s.index[items[i].ID] = struct{}{}
	}
	s.hydrated = true

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "wishlist hydrated",
		slog.Int("products", len(s.items)),
	)
	return nil
}

// Add appends the product to the wishlist. Adding a product that is already
// present is a conflict: the wishlist is left unchanged and an
// already-exists error is returned so the caller can surface the rejection.
func (s *WishlistService) Add(ctx context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return err
	}

	if _, ok := s.index[product.ID]; ok {
		return apperrors.AlreadyExists("wishlist item", "product id", strconv.Itoa(product.ID))
	}

	s.items = append(s.items, product)
	s.index[product.ID] = struct{}{}

	if err := s.persist(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product added to wishlist",
		slog.Int("product_id", product.ID),
	)
	return nil
}

// Remove deletes the product with the given ID. Removing an absent ID is a
// silent no-op.
func (s *WishlistService) Remove(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReady(); err != nil {
		return err
	}

	if _, ok := s.index[productID]; !ok {
		return nil
	}

	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.index, productID)

	if err := s.persist(ctx); err != nil {
		return err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product removed from wishlist",
		slog.Int("product_id", productID),
	)
	return nil
}

// Items returns a copy of the wishlisted products in insertion order.
func (s *WishlistService) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Product, len(s.items))
	copy(items, s.items)
	return items
}

// Contains reports whether the product is wishlisted.
func (s *WishlistService) Contains(productID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[productID]
	return ok
}

func (s *WishlistService) ensureReady() error {
	if !s.hydrated {
		return apperrors.NotReady("wishlist is still hydrating")
	}
	return nil
}

// persist writes the full wishlist to the store. Callers must hold the write lock.
func (s *WishlistService) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyWishlist, data); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

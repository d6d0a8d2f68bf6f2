package storage

import "context"

// Persisted storage keys. These names are stable for compatibility with
// previously saved sessions and must not change.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyUser     = "user"
	KeyToken    = "token"
)

// Store is a generic key-value byte store for JSON-serializable state.
// Get returns an error wrapping apperrors.ErrNotFound when the key is absent.
// Each engine owns its key exclusively; no two engines write the same key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

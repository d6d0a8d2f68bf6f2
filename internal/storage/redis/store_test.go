package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pritam-devloper/shophub/internal/storage"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewStore(client, 24*time.Hour)
	return store, mr
}

// ---------------------------------------------------------------------------
// Get
// ---------------------------------------------------------------------------

func TestStore_Get_Success(t *testing.T) {
	store, mr := setupTestStore(t)

	require.NoError(t, mr.Set(keyPrefix+storage.KeyCart, `[{"id":1,"quantity":2}]`))

	data, err := store.Get(context.Background(), storage.KeyCart)

	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, string(data))
}

func TestStore_Get_MissingKey_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Get(context.Background(), storage.KeyWishlist)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

// ---------------------------------------------------------------------------
// Set
// ---------------------------------------------------------------------------

func TestStore_Set_WritesValueWithTTL(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyToken, []byte("opaque-token")))

	got, err := mr.Get(keyPrefix + storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)
	assert.Equal(t, 24*time.Hour, mr.TTL(keyPrefix+storage.KeyToken))
}

func TestStore_Set_OverwritesExisting(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte("[]")))
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`[{"id":9}]`)))

	data, err := store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":9}]`, string(data))
}

// ---------------------------------------------------------------------------
// Remove
// ---------------------------------------------------------------------------

func TestStore_Remove_DeletesKey(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyUser, []byte(`{"username":"mor_2314"}`)))
	require.NoError(t, store.Remove(ctx, storage.KeyUser))

	_, err := store.Get(ctx, storage.KeyUser)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_Remove_AbsentKey_NoError(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.Remove(context.Background(), storage.KeyUser)

	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Keys are isolated per engine
// ---------------------------------------------------------------------------

func TestStore_KeysDoNotCollide(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte("cart-data")))
	require.NoError(t, store.Set(ctx, storage.KeyWishlist, []byte("wishlist-data")))

	cart, err := store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	wishlist, err := store.Get(ctx, storage.KeyWishlist)
	require.NoError(t, err)

	assert.Equal(t, "cart-data", string(cart))
	assert.Equal(t, "wishlist-data", string(wishlist))
}

func TestStore_ConnectionFailure_ReturnsError(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), storage.KeyCart)

	assert.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
}

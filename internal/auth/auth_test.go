package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pritam-devloper/shophub/internal/domain"
	"github.com/Pritam-devloper/shophub/internal/storage"
	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
	"github.com/Pritam-devloper/shophub/pkg/httpclient"
	"github.com/Pritam-devloper/shophub/pkg/validator"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, apperrors.NotFound("stored value", key)
	}
	return data, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T, handler http.Handler) (*Service, *memStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := newTestLogger()
	base := httpclient.New(httpclient.Config{
		Timeout:         5 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("auth-test"), logger)
	store := newMemStore()
	return NewService(cb, srv.URL, store, logger), store
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_PersistsTokenAndUser(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var input LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "mor_2314", input.Username)

		w.Write([]byte(`{"token":"opaque-jwt"}`))
	}))
	ctx := context.Background()

	user, err := svc.Login(ctx, "mor_2314", "83r5^_")

	require.NoError(t, err)
	require.NotNil(t, user)
	// The demo API returns only a token; a minimal user record is stored.
	assert.Equal(t, "mor_2314", user.Username)

	token, err := store.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "opaque-jwt", string(token))

	data, err := store.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, "mor_2314", stored.Username)

	assert.True(t, svc.IsAuthenticated(ctx))
}

func TestLogin_UsesUserRecordWhenPresent(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"opaque-jwt","user":{"id":4,"username":"mor_2314","email":"mor@example.com"}}`))
	}))

	user, err := svc.Login(context.Background(), "mor_2314", "83r5^_")

	require.NoError(t, err)
	assert.Equal(t, 4, user.ID)
	assert.Equal(t, "mor@example.com", user.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("username or password is incorrect"))
	}))
	ctx := context.Background()

	_, err := svc.Login(ctx, "mor_2314", "wrong")

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	assert.False(t, svc.IsAuthenticated(ctx))
	_, err = store.Get(ctx, storage.KeyToken)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLogin_MissingCredentials_Rejected(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid input")
	}))

	_, err := svc.Login(context.Background(), "", "")

	var valErr *validator.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestLogin_EmptyTokenResponse_Rejected(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := svc.Login(context.Background(), "mor_2314", "83r5^_")

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegister_CreatesUser(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":11,"username":"newshopper","email":"new@example.com"}`))
	}))
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username:  "newshopper",
		Email:     "new@example.com",
		Password:  "Sup3rSecret",
		FirstName: "New",
		LastName:  "Shopper",
	})

	require.NoError(t, err)
	assert.Equal(t, 11, user.ID)
	// Registration does not log the user in.
	assert.False(t, svc.IsAuthenticated(ctx))
	_, err = store.Get(ctx, storage.KeyUser)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRegister_WeakPassword_Rejected(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid input")
	}))

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:  "newshopper",
		Email:     "new@example.com",
		Password:  "alllowercase1",
		FirstName: "New",
		LastName:  "Shopper",
	})

	var valErr *validator.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields(), "Password")
}

// ---------------------------------------------------------------------------
// UpdateProfile
// ---------------------------------------------------------------------------

func TestUpdateProfile_PersistsUpdatedUser(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/4", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		w.Write([]byte(`{"id":4,"username":"mor_2314","email":"updated@example.com"}`))
	}))
	ctx := context.Background()

	user, err := svc.UpdateProfile(ctx, 4, ProfileInput{Email: "updated@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "updated@example.com", user.Email)

	current, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "updated@example.com", current.Email)
}

// ---------------------------------------------------------------------------
// Logout / CurrentUser
// ---------------------------------------------------------------------------

func TestLogout_RemovesBothSessionKeys(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"opaque-jwt"}`))
	}))
	ctx := context.Background()

	_, err := svc.Login(ctx, "mor_2314", "83r5^_")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))

	assert.False(t, svc.IsAuthenticated(ctx))
	_, err = store.Get(ctx, storage.KeyUser)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLogout_WithoutSession_NoError(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	assert.NoError(t, svc.Logout(context.Background()))
}

func TestCurrentUser_NoSession(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	user, err := svc.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_MalformedRecord_TreatedAsAbsent(t *testing.T) {
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyUser, []byte("{broken")))

	user, err := svc.CurrentUser(ctx)

	require.NoError(t, err)
	assert.Nil(t, user)
}

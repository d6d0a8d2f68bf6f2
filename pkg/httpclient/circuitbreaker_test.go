package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBreakerClient(name string) *CircuitBreakerClient {
	cfg := fastConfig()
	cfg.MaxRetries = 0

	cbCfg := CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 1.0,
		MinRequests:  2,
	}
	return NewCircuitBreakerClient(New(cfg), cbCfg, newTestLogger())
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newBreakerClient("success-breaker")
	resp, err := client.Get(context.Background(), server.URL)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestCircuitBreaker_OpensAfterRepeatedServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := newBreakerClient("open-breaker")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server error 500")
	}

	require.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.Get(ctx, server.URL)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}

func TestCircuitBreaker_FallbackInvokedWhenOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var fallbackCalls atomic.Int32
	client := newBreakerClient("fallback-breaker").WithFallback(
		func(_ context.Context, err error) (*http.Response, error) {
			fallbackCalls.Add(1)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`[]`)),
			}, nil
		})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, client.State())

	resp, err := client.Get(ctx, server.URL)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), fallbackCalls.Load())
}

func TestCircuitBreaker_FallbackNotInvokedForOrdinaryErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var fallbackCalls atomic.Int32
	client := newBreakerClient("no-fallback-breaker").WithFallback(
		func(_ context.Context, err error) (*http.Response, error) {
			fallbackCalls.Add(1)
			return nil, err
		})

	// Breaker is still closed; a plain server error must surface as-is.
	_, err := client.Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(0), fallbackCalls.Load())
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Pritam-devloper/shophub/internal/auth"
	"github.com/Pritam-devloper/shophub/internal/catalog"
	"github.com/Pritam-devloper/shophub/internal/checkout"
	"github.com/Pritam-devloper/shophub/internal/config"
	"github.com/Pritam-devloper/shophub/internal/pricing"
	"github.com/Pritam-devloper/shophub/internal/service"
	"github.com/Pritam-devloper/shophub/internal/storage"
	redisstore "github.com/Pritam-devloper/shophub/internal/storage/redis"
	"github.com/Pritam-devloper/shophub/pkg/httpclient"
	"github.com/Pritam-devloper/shophub/pkg/logger"
)

// App wires together the storefront engines and hands them to whatever
// composes the UI. Engines are constructed at app start; a short-lived
// client process needs no teardown beyond Close.
type App struct {
	Cart     *service.CartService
	Wishlist *service.WishlistService
	Catalog  *catalog.Cache
	Auth     *auth.Service
	Checkout *checkout.Service

	cfg    *config.Config
	logger *slog.Logger
	rdb    *redis.Client
}

// New creates the application, connects its collaborators, and hydrates the
// persisted engines. The catalog is fetched afterwards; a fetch failure
// degrades the catalog to empty but does not fail construction.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New("storefront", cfg.LogLevel)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	sessionTTL := time.Duration(cfg.SessionTTL) * time.Hour
	var store storage.Store = redisstore.NewStore(rdb, sessionTTL)
	store = storage.NewInstrumentedStore(store)

	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	httpClient := httpclient.New(httpclient.DefaultConfig())
	apiClient := httpclient.NewCircuitBreakerClient(
		httpClient,
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		log,
	)

	cartEngine := service.NewCartService(store, log)
	wishlistEngine := service.NewWishlistService(store, log)

	// Hydrate before anything can mutate, so saved state is never clobbered.
	if err := cartEngine.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate cart: %w", err)
	}
	if err := wishlistEngine.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate wishlist: %w", err)
	}

	catalogClient := catalog.NewClient(apiClient, baseURL, log)
	catalogCache := catalog.NewCache(catalogClient, log)
	if err := catalogCache.Refresh(ctx); err != nil {
		log.Warn("catalog fetch failed, starting with an empty catalog",
			slog.String("error", err.Error()),
		)
	}

	pricingCfg := pricing.Config{
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		FlatShippingFeeCents:       cfg.FlatShippingFeeCents,
		TaxRateBasisPoints:         cfg.TaxRateBasisPoints,
	}

	return &App{
		Cart:     cartEngine,
		Wishlist: wishlistEngine,
		Catalog:  catalogCache,
		Auth:     auth.NewService(apiClient, baseURL, store, log),
		Checkout: checkout.NewService(cartEngine, pricingCfg, log),
		cfg:      cfg,
		logger:   log,
		rdb:      rdb,
	}, nil
}

// Close releases the storage connection.
func (a *App) Close() error {
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		return err
	}
	a.logger.Info("application shutdown complete")
	return nil
}

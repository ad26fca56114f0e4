package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/sadonamonday/crtvsite/internal/booking"
	"github.com/sadonamonday/crtvsite/internal/catalog"
	appconfig "github.com/sadonamonday/crtvsite/internal/config"
	"github.com/sadonamonday/crtvsite/internal/sessions"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, catalog cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildCatalogLoader wires the remote fetcher, the optional Redis cache and
// the fallback catalog (a file when configured, else the built-in list).
func BuildCatalogLoader(cfg *appconfig.Config, fetcher catalog.Fetcher, redisClient *redis.Client, observer catalog.LoadObserver, logger *logging.Logger) (*catalog.Loader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := catalog.Options{
		BaseURL:          cfg.StudioAPIBaseURL,
		PlaceholderImage: cfg.CatalogPlaceholderImage,
		CurrencySymbol:   cfg.CurrencySymbol,
	}

	var fallback []catalog.Service
	if path := strings.TrimSpace(cfg.CatalogFallbackFile); path != "" {
		services, err := catalog.LoadFallbackFile(path, catalog.NewNormalizer(opts, logger))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: fallback catalog: %w", err)
		}
		fallback = services
		logger.Info("fallback catalog loaded from file", "path", path, "services", len(services))
	}

	var cache catalog.Cache
	if redisClient != nil && cfg.CatalogCacheTTL > 0 {
		cache = catalog.NewRedisCache(redisClient, cfg.CatalogCacheTTL)
		logger.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL.String())
	}

	return catalog.NewLoader(fetcher, catalog.LoaderConfig{
		Options:  opts,
		Fallback: fallback,
		Cache:    cache,
		Observer: observer,
	}, logger), nil
}

// CatalogSource supplies the catalog a new booking session starts with.
type CatalogSource interface {
	Load(ctx context.Context) catalog.Catalog
}

// BuildSessionStore returns a store whose sessions load the catalog on
// creation and submit through submitter.
func BuildSessionStore(cfg *appconfig.Config, source CatalogSource, submitter booking.Submitter, observer booking.TransitionObserver, logger *logging.Logger) *sessions.Store {
	if logger == nil {
		logger = logging.Default()
	}
	factory := func(ctx context.Context) *booking.Controller {
		return booking.NewController(booking.ControllerConfig{
			Catalog:        source.Load(ctx),
			Submitter:      submitter,
			CurrencySymbol: cfg.CurrencySymbol,
			Observer:       observer,
		}, logger)
	}
	return sessions.NewStore(factory, cfg.SessionIdleTimeout, logger)
}

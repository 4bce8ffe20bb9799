// Command server runs the apartment search HTTP API.
//
//	@title						Apartment Search API
//	@version					1.0
//	@description				Location-based apartment search with result caching and a geocoding proxy.
//	@BasePath					/
//	@schemes					http https
//	@produce					json
//	@accept						json
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "github.com/tbourn/go-apartment-search/docs"
	"github.com/tbourn/go-apartment-search/internal/cache"
	"github.com/tbourn/go-apartment-search/internal/config"
	"github.com/tbourn/go-apartment-search/internal/geocode"
	httpapi "github.com/tbourn/go-apartment-search/internal/http"
	"github.com/tbourn/go-apartment-search/internal/observability"
	"github.com/tbourn/go-apartment-search/internal/repo"
	"github.com/tbourn/go-apartment-search/internal/search"
	"github.com/tbourn/go-apartment-search/internal/services"
	"github.com/tbourn/go-apartment-search/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("cache store unavailable")
	}
	defer closeStore()

	c := cache.New(store,
		cache.WithResultTTL(cfg.Cache.ResultTTL),
		cache.WithListingTTL(cfg.Cache.ListingTTL),
	)
	go c.RunSweeper(ctx, cfg.Cache.SweepInterval)

	resolver := geocode.NewResolver([]geocode.Strategy{
		geocode.NewProxyStrategy(cfg.Geocode.ProxyURL),
		geocode.NewProviderStrategy(cfg.Geocode.ProviderURL, cfg.Geocode.APIKey),
		geocode.StaticStrategy{},
	}, geocode.WithTimeout(cfg.Geocode.Timeout))

	sources, unknown := search.SelectSources(cfg.Search.Sources)
	if len(unknown) > 0 {
		log.Warn().Strs("unknown", unknown).Msg("ignoring unknown listing sources")
	}
	if len(sources) == 0 {
		log.Fatal().Strs("configured", cfg.Search.Sources).Msg("no known listing sources enabled")
	}
	agg := search.NewAggregator(
		search.WithSources(sources...),
		search.WithPerSource(cfg.Search.PerSource),
	)

	deps := httpapi.Deps{
		Search: &services.SearchService{
			Cache:            c,
			Geocoder:         resolver,
			Aggregator:       agg,
			MaxRadiusMiles:   cfg.Search.MaxRadiusMiles,
			RememberListings: cfg.Cache.RememberListings,
		},
		Listings: &services.ListingService{Cache: c, Catalog: agg},
		Geocoder: geocode.NewProviderClient(cfg.Geocode.ProviderURL, cfg.Geocode.ServerAPIKey),
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", ver).
			Str("cache_backend", cfg.Cache.Backend).
			Strs("geocode_strategies", resolver.Strategies()).
			Strs("sources", agg.Sources()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// openStore returns the configured cache substrate and its closer.
func openStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryStore(), func() {}, nil
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		log.Warn().Err(err).Msg("gorm tracing plugin not installed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	kv := repo.NewKVStore(db)
	if n, err := kv.Count(ctx); err != nil {
		log.Warn().Err(err).Msg("cache store: could not count entries")
	} else {
		log.Info().Str("path", cfg.DBPath).Int64("entries", n).Msg("cache store opened")
	}
	return kv, closer, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/config"
	"github.com/kailas-cloud/bikeval/internal/db"
	dbRedis "github.com/kailas-cloud/bikeval/internal/db/redis"
	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
	logpkg "github.com/kailas-cloud/bikeval/internal/logger"
	"github.com/kailas-cloud/bikeval/internal/metrics"
	"github.com/kailas-cloud/bikeval/internal/model"
	catalogrepo "github.com/kailas-cloud/bikeval/internal/repository/catalog"
	"github.com/kailas-cloud/bikeval/internal/repository/predcache"
	"github.com/kailas-cloud/bikeval/internal/resources"
	chiTransport "github.com/kailas-cloud/bikeval/internal/transport/chi"
	"github.com/kailas-cloud/bikeval/internal/transport/modelserver"
	openaiNarr "github.com/kailas-cloud/bikeval/internal/transport/openai"
	"github.com/kailas-cloud/bikeval/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/bikeval/internal/usecase/health"
	"github.com/kailas-cloud/bikeval/internal/usecase/pricing"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
	valuationuc "github.com/kailas-cloud/bikeval/internal/usecase/valuation"
	"github.com/kailas-cloud/bikeval/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bikeval API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog", cfg.Catalog.Path),
		zap.String("predictor_driver", cfg.Predictor.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("narrator", cfg.Narrator.Enabled),
	)

	// Register valuation metrics explicitly (no init())
	metrics.RegisterValuationMetrics()

	ctx := context.Background()

	// Optional prediction cache
	var store db.Store
	if cfg.Cache.Enabled {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer s.Close()

		if err := s.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeoutSec)*time.Second); err != nil {
			// The cache is best-effort: run without it rather than refuse to start.
			logger.Warn("Cache not ready, continuing without it", zap.Error(err))
		} else {
			store = s
			logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
		}
	}

	// Catalog and predictor are loaded once and shared by every request.
	loader := resources.New(
		func() (*catalog.Catalog, error) { return loadCatalog(cfg.Catalog, logger) },
		func() (domain.Predictor, error) { return buildPredictor(cfg.Predictor, store, cfg.Cache, logger) },
	)
	if err := loader.Load(); err != nil {
		logger.Fatal("Failed to load resources", zap.Error(err))
	}

	profiles, err := buildProfiles(cfg.Comparables)
	if err != nil {
		logger.Fatal("Invalid comparables profiles", zap.Error(err))
	}

	logos := assets.NewResolver(cfg.Assets.ImagesDir, cfg.Assets.FallbackURL)

	pricingSvc := pricing.New(loader, cfg.Pricing.ReferenceYear).
		WithMinYear(cfg.Pricing.MinYear).
		WithValidation(cfg.Pricing.Validating())
	logger.Info("Pricing configured",
		zap.Int("reference_year", pricingSvc.ReferenceYear()),
		zap.Bool("validate_inputs", cfg.Pricing.Validating()),
	)
	valuationSvc := valuationuc.New(pricingSvc, comparables.New(profiles), loader).
		WithLogos(logos)
	if cfg.Narrator.Enabled {
		valuationSvc = valuationSvc.WithNarrator(openaiNarr.NewNarrator(&openaiNarr.Config{
			APIKey:  cfg.Narrator.APIKey,
			BaseURL: cfg.Narrator.BaseURL,
			Model:   cfg.Narrator.Model,
			Timeout: time.Duration(cfg.Narrator.TimeoutSec) * time.Second,
			Logger:  logger,
		}))
		logger.Info("Narrator enabled", zap.String("model", cfg.Narrator.Model))
	}

	// Pass nil interface (not typed nil pointer) when the cache is off.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(loader, loader, cachePinger)

	server := chiTransport.NewServer(loader, selectionuc.New(logos), valuationSvc, healthSvc, logos, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func loadCatalog(cfg config.CatalogConfig, logger *zap.Logger) (*catalog.Catalog, error) {
	c, stats, err := catalogrepo.New(logger).Load(cfg.Path)
	if err != nil {
		return nil, err
	}
	metrics.CatalogListings.Set(float64(c.Len()))
	logger.Info("Catalog loaded",
		zap.String("path", stats.Path),
		zap.String("format", stats.Format),
		zap.Int("rows", stats.Rows),
		zap.Int("listings", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
	)
	return c, nil
}

// buildPredictor assembles the decorator chain: base -> Cached -> Instrumented.
func buildPredictor(
	cfg config.PredictorConfig,
	store db.Store,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) (domain.Predictor, error) {
	var base domain.Predictor
	switch cfg.Driver {
	case config.PredictorRemote:
		c, err := modelserver.New(modelserver.Config{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		base = c
	default:
		p, err := model.Open(cfg.ArtifactPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Model artifact loaded",
			zap.String("path", cfg.ArtifactPath),
			zap.String("kind", string(p.Kind())),
			zap.String("model_version", p.ModelVersion()),
		)
		base = p
	}

	predictor := base
	if store != nil {
		predictor = predcache.New(base, store, metrics.PredictionCacheTotal, logger,
			predcache.WithKeyPrefix(cacheCfg.KeyPrefix),
			predcache.WithTTL(time.Duration(cacheCfg.TTLSec)*time.Second),
			predcache.WithModelVersion(cacheCfg.ModelVersion),
		)
	}

	return pricing.NewInstrumentedPredictor(predictor, cfg.Driver, logger), nil
}

func buildProfiles(cfg config.ComparablesConfig) (*profile.Set, error) {
	extra := make([]profile.Profile, 0, len(cfg.Profiles))
	for _, pc := range cfg.Profiles {
		p, err := profile.New(pc.Name, pc.LowerFactor, pc.UpperFactor, pc.Limit, pc.SortByPrice)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", pc.Name, err)
		}
		extra = append(extra, p)
	}
	return profile.NewSet(cfg.DefaultProfile, extra...)
}

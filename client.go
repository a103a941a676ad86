package bikeval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/db"
	dbRedis "github.com/kailas-cloud/bikeval/internal/db/redis"
	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/metrics"
	"github.com/kailas-cloud/bikeval/internal/model"
	"github.com/kailas-cloud/bikeval/internal/report"
	catalogrepo "github.com/kailas-cloud/bikeval/internal/repository/catalog"
	"github.com/kailas-cloud/bikeval/internal/repository/predcache"
	"github.com/kailas-cloud/bikeval/internal/resources"
	"github.com/kailas-cloud/bikeval/internal/transport/modelserver"
	openaiNarr "github.com/kailas-cloud/bikeval/internal/transport/openai"
	"github.com/kailas-cloud/bikeval/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/bikeval/internal/usecase/health"
	"github.com/kailas-cloud/bikeval/internal/usecase/pricing"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
	valuationuc "github.com/kailas-cloud/bikeval/internal/usecase/valuation"
)

const (
	defaultCatalogPath      = "data/Used_Bikes.csv"
	defaultModelPath        = "data/bike_model.json"
	defaultImagesDir        = "images"
	defaultReadinessTimeout = 10 * time.Second
	defaultRemoteTimeout    = 5 * time.Second
	defaultNarratorModel    = "gpt-4o-mini"
)

// DefaultYear and DefaultKmsDriven are the form defaults.
const (
	DefaultYear      = valuationuc.DefaultYear
	DefaultKmsDriven = valuationuc.DefaultKmsDriven
)

// Internal interfaces for substitution in tests.
type catalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

type valuationUseCase interface {
	Valuate(ctx context.Context, req valuationuc.Request) (*valuation.Valuation, error)
}

type selectionUseCase interface {
	View(name string, c *catalog.Catalog) selectionuc.View
}

// Client is the bikeval library entry point.
type Client struct {
	store      db.Store
	catalog    catalogSource
	selection  selectionUseCase
	valuations valuationUseCase
	healthSvc  healthUseCase
	profiles   *profile.Set
	obs        *observer
	now        func() time.Time
}

// New creates a Client, loading the catalog and the model eagerly.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		catalogPath: defaultCatalogPath,
		modelPath:   defaultModelPath,
		imagesDir:   defaultImagesDir,
		fallbackURL: assets.FallbackLogoURL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.zapLogger == nil {
		cfg.zapLogger = zap.NewNop()
	}
	if cfg.narratorModel == "" {
		cfg.narratorModel = defaultNarratorModel
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	profiles, err := buildProfiles(cfg)
	if err != nil {
		return nil, fmt.Errorf("bikeval: %w", err)
	}

	var store db.Store
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("bikeval: create cache store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("bikeval: cache not ready: %w", err)
		}
		store = s
	}

	loader := resources.New(
		func() (*catalog.Catalog, error) {
			c, _, err := catalogrepo.New(cfg.zapLogger).Load(cfg.catalogPath)
			return c, err
		},
		func() (domain.Predictor, error) { return buildPredictor(cfg, store) },
	)
	if err := loader.Load(); err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("bikeval: %w", err)
	}

	return wireClient(cfg, loader, store, profiles, obs), nil
}

func buildProfiles(cfg *clientConfig) (*profile.Set, error) {
	extra := make([]profile.Profile, 0, len(cfg.profiles))
	for _, ps := range cfg.profiles {
		p, err := profile.New(ps.name, ps.lower, ps.upper, ps.limit, ps.sortByPrice)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", ps.name, err)
		}
		extra = append(extra, p)
	}
	return profile.NewSet(cfg.defaultProfile, extra...)
}

// buildPredictor assembles the decorator chain: base -> Cached -> Instrumented.
func buildPredictor(cfg *clientConfig, store db.Store) (domain.Predictor, error) {
	var (
		base domain.Predictor
		name string
	)
	switch {
	case cfg.predictor != nil:
		base, name = &predictorAdapter{inner: cfg.predictor}, "custom"
	case cfg.remoteEndpoint != "":
		timeout := cfg.remoteTimeout
		if timeout <= 0 {
			timeout = defaultRemoteTimeout
		}
		c, err := modelserver.New(modelserver.Config{
			Endpoint: cfg.remoteEndpoint,
			APIKey:   cfg.remoteAPIKey,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		base, name = c, "remote"
	default:
		p, err := model.Open(cfg.modelPath)
		if err != nil {
			return nil, err
		}
		base, name = p, "local"
	}

	if store != nil {
		base = predcache.New(base, store, metrics.PredictionCacheTotal, cfg.zapLogger,
			predcache.WithTTL(cfg.cacheTTL),
		)
	}
	return pricing.NewInstrumentedPredictor(base, name, cfg.zapLogger), nil
}

func wireClient(
	cfg *clientConfig,
	loader *resources.Loader,
	store db.Store,
	profiles *profile.Set,
	obs *observer,
) *Client {
	logos := assets.NewResolver(cfg.imagesDir, cfg.fallbackURL)

	pricingSvc := pricing.New(loader, cfg.referenceYear).
		WithMinYear(cfg.minYear).
		WithValidation(!cfg.skipValidation)

	valuationSvc := valuationuc.New(pricingSvc, comparables.New(profiles), loader).WithLogos(logos)
	if cfg.narratorKey != "" {
		valuationSvc = valuationSvc.WithNarrator(openaiNarr.NewNarrator(&openaiNarr.Config{
			APIKey:  cfg.narratorKey,
			BaseURL: cfg.narratorBaseURL,
			Model:   cfg.narratorModel,
			Logger:  cfg.zapLogger,
		}))
	}

	// Pass nil interface (not typed nil pointer) when there is no cache.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}

	return &Client{
		store:      store,
		catalog:    loader,
		selection:  selectionuc.New(logos),
		valuations: valuationSvc,
		healthSvc:  healthuc.New(loader, loader, cachePinger),
		profiles:   profiles,
		obs:        obs,
		now:        time.Now,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Models returns catalog model names containing query (case-insensitive),
// sorted and unique. An empty query returns every name.
func (c *Client) Models(query string) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("models", start, err) }()

	cat, err := c.catalog.Catalog()
	if err != nil {
		return nil, fmt.Errorf("models: %w", err)
	}
	return cat.Search(query), nil
}

// Profiles returns the available comparables profile names.
func (c *Client) Profiles() []string {
	return c.profiles.Names()
}

// Resolve returns the form defaults for a model name. Unknown or empty names
// yield a 150 cc default and no brand.
func (c *Client) Resolve(name string) (sel Selection, err error) {
	start := time.Now()
	defer func() { c.obs.observe("resolve", start, err) }()

	cat, err := c.catalog.Catalog()
	if err != nil {
		return Selection{}, fmt.Errorf("resolve: %w", err)
	}
	v := c.selection.View(name, cat)
	return Selection{
		Name:         v.Name,
		Found:        v.Found,
		DefaultPower: v.DefaultPower,
		Brand:        v.Brand,
		Logo:         v.Logo,
		Category:     v.Category.String(),
	}, nil
}

// Valuate estimates the price and collects comparable listings.
func (c *Client) Valuate(ctx context.Context, req Request) (v *Valuation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("valuate", start, err) }()

	dv, err := c.valuate(ctx, req)
	if err != nil {
		return nil, err
	}
	return fromValuation(dv), nil
}

// Export renders a valuation as a PDF or XLSX report.
func (c *Client) Export(ctx context.Context, f Format, req Request) (r *Report, err error) {
	start := time.Now()
	defer func() { c.obs.observe("export", start, err) }()

	rf, err := report.ParseFormat(string(f))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	dv, err := c.valuate(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := report.Build(rf, dv, c.now())
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return &Report{
		Filename:    rf.Filename(dv.Label),
		ContentType: rf.ContentType(),
		Data:        data,
	}, nil
}

func (c *Client) valuate(ctx context.Context, req Request) (*valuation.Valuation, error) {
	cat, err := c.catalog.Catalog()
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}

	in := valuationuc.Request{
		Name:      req.Name,
		KmsDriven: req.KmsDriven,
		Year:      req.Year,
		Power:     req.Power,
		Profile:   req.Profile,
	}
	if in.Year == 0 {
		in.Year = DefaultYear
	}
	if in.Power == 0 {
		in.Power = selectionuc.Resolve(strings.TrimSpace(req.Name), cat).DefaultPower
	}

	v, err := c.valuations.Valuate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}
	return v, nil
}

func fromValuation(v *valuation.Valuation) *Valuation {
	comps := make([]Listing, len(v.Comparables))
	for i := range v.Comparables {
		l := &v.Comparables[i]
		comps[i] = Listing{
			Name:      l.Name(),
			Brand:     l.Brand(),
			City:      l.City(),
			Power:     l.Power(),
			KmsDriven: l.KmsDriven(),
			Price:     l.Price(),
		}
	}
	return &Valuation{
		Label: v.Label,
		Year:  v.Year,
		Features: Features{
			KmsDriven: v.Features.KmsDriven,
			Age:       v.Features.Age,
			Power:     v.Features.Power,
		},
		Category:    v.Category.String(),
		Estimate:    v.Estimate,
		Range:       Range{Lower: v.Range.Lower, Upper: v.Range.Upper},
		Profile:     v.Profile,
		Comparables: comps,
		Logo:        v.Logo,
		Summary:     v.Summary,
	}
}

package bikeval

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type profileSpec struct {
	name        string
	lower       float64
	upper       float64
	limit       int
	sortByPrice bool
}

type clientConfig struct {
	catalogPath string

	modelPath      string
	remoteEndpoint string
	remoteAPIKey   string
	remoteTimeout  time.Duration
	predictor      Predictor

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	narratorKey     string
	narratorBaseURL string
	narratorModel   string

	referenceYear  int
	minYear        int
	skipValidation bool

	defaultProfile string
	profiles       []profileSpec

	imagesDir   string
	fallbackURL string

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithCatalog sets the listings file (.csv or .parquet).
// Default: data/Used_Bikes.csv.
func WithCatalog(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithModel sets the local model artifact (.json or .yaml).
// Default: data/bike_model.json.
func WithModel(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelPath = path
	})
}

// WithRemoteModel predicts through a model server instead of a local artifact.
func WithRemoteModel(endpoint, apiKey string, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.remoteEndpoint = endpoint
		c.remoteAPIKey = apiKey
		c.remoteTimeout = timeout
	})
}

// WithPredictor plugs in a custom price model. It takes precedence over
// WithModel and WithRemoteModel.
func WithPredictor(p Predictor) Option {
	return optionFunc(func(c *clientConfig) {
		c.predictor = p
	})
}

// WithRedisCache caches predictions in Redis or Valkey. ttl 0 keeps entries forever.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithNarrator adds a short LLM-written summary to every valuation.
// Empty baseURL uses the OpenAI API; empty model uses gpt-4o-mini.
func WithNarrator(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.narratorKey = apiKey
		c.narratorBaseURL = baseURL
		c.narratorModel = model
	})
}

// WithReferenceYear sets the year age is measured against. Default: 2026.
func WithReferenceYear(year int) Option {
	return optionFunc(func(c *clientConfig) {
		c.referenceYear = year
	})
}

// WithMinYear sets the earliest accepted manufacturing year. Default: 1990.
func WithMinYear(year int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minYear = year
	})
}

// WithoutValidation passes inputs to the model unchecked, including years
// after the reference year.
func WithoutValidation() Option {
	return optionFunc(func(c *clientConfig) {
		c.skipValidation = true
	})
}

// WithProfile registers a custom comparables profile. A profile named like a
// built-in one replaces it.
func WithProfile(name string, lowerFactor, upperFactor float64, limit int, sortByPrice bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.profiles = append(c.profiles, profileSpec{
			name:        name,
			lower:       lowerFactor,
			upper:       upperFactor,
			limit:       limit,
			sortByPrice: sortByPrice,
		})
	})
}

// WithDefaultProfile selects the profile used when a request names none.
// Default: standard.
func WithDefaultProfile(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultProfile = name
	})
}

// WithImagesDir sets the brand logo directory. Default: images.
func WithImagesDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.imagesDir = dir
	})
}

// WithLogger enables structured logging for library operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger routes internal component logs (catalog load, cache
// failures, predictor calls) to a zap logger. Default: discarded.
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers library metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// Package predcache caches model predictions in a key-value store.
package predcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "bikeval:pred:"

var _ domain.Predictor = (*CachedPredictor)(nil)

// store is the consumer interface for the prediction cache (ISP).
type store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedPredictor looks rows up in the store and only sends misses to inner.
// Store failures are logged and treated as misses.
type CachedPredictor struct {
	inner      domain.Predictor
	store      store
	version    string
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Option configures a CachedPredictor.
type Option func(*CachedPredictor)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(p string) Option {
	return func(c *CachedPredictor) {
		if p != "" {
			c.prefix = p
		}
	}
}

// WithTTL sets entry expiry. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedPredictor) { c.ttl = ttl }
}

// WithModelVersion pins the version used in keys. By default it is read from
// inner when inner implements domain.Versioned. An empty v keeps the default.
func WithModelVersion(v string) Option {
	return func(c *CachedPredictor) {
		if v != "" {
			c.version = v
		}
	}
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Predictor,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
	opts ...Option,
) *CachedPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CachedPredictor{
		inner:      inner,
		store:      s,
		prefix:     DefaultKeyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	if v, ok := inner.(domain.Versioned); ok {
		c.version = v.ModelVersion()
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ModelVersion forwards the inner version so decorators can be stacked.
func (c *CachedPredictor) ModelVersion() string { return c.version }

// HealthCheck forwards to inner when supported.
func (c *CachedPredictor) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// Predict returns cached prices where available and asks inner for the rest,
// preserving row order.
func (c *CachedPredictor) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = c.cacheKey(r)
	}

	out := make([]float64, len(rows))
	cached := c.getFromCache(ctx, keys)

	var missIdx []int
	var missRows []features.Vector
	for i := range rows {
		if v, ok := cached[i]; ok {
			out[i] = v
			c.incCache("hit")
			continue
		}
		c.incCache("miss")
		missIdx = append(missIdx, i)
		missRows = append(missRows, rows[i])
	}

	if len(missRows) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Predict(ctx, missRows)
	if err != nil {
		return nil, fmt.Errorf("predict uncached rows: %w", err)
	}
	if len(fresh) != len(missRows) {
		return nil, fmt.Errorf("%w: got %d predictions for %d rows",
			domain.ErrPredictorContract, len(fresh), len(missRows))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
		c.putToCache(ctx, keys[i], fresh[j])
	}
	return out, nil
}

func (c *CachedPredictor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the model version and the row in schema order.
func (c *CachedPredictor) cacheKey(r features.Vector) string {
	var b strings.Builder
	b.WriteString(c.version)
	for _, v := range r.Values() {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	h := sha256.Sum256([]byte(b.String()))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedPredictor) getFromCache(ctx context.Context, keys []string) map[int]float64 {
	data, err := c.store.MGet(ctx, keys)
	if err != nil {
		c.logger.Warn("Failed to read cached predictions", zap.Int("keys", len(keys)), zap.Error(err))
		return nil
	}

	hits := make(map[int]float64, len(data))
	for i, d := range data {
		if len(d) == 0 {
			continue
		}
		v, err := bytesToPrice(d)
		if err != nil {
			c.logger.Warn("Failed to parse cached prediction", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		hits[i] = v
	}
	return hits
}

func (c *CachedPredictor) putToCache(ctx context.Context, key string, v float64) {
	if err := c.store.SetWithTTL(ctx, key, priceToBytes(v), c.ttl); err != nil {
		c.logger.Warn("Failed to cache prediction", zap.String("key", key), zap.Error(err))
	}
}

func priceToBytes(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func bytesToPrice(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid prediction cache data: len=%d (want 8)", len(data))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
}

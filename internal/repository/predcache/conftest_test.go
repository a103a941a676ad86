package predcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

type mockPredictor struct {
	version string
	fn      func(rows []features.Vector) ([]float64, error)
	calls   [][]features.Vector
}

func (m *mockPredictor) Predict(_ context.Context, rows []features.Vector) ([]float64, error) {
	m.calls = append(m.calls, rows)
	if m.fn != nil {
		return m.fn(rows)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Power * 100
	}
	return out, nil
}

func (m *mockPredictor) ModelVersion() string { return m.version }

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	mgetFn func(ctx context.Context, keys []string) ([][]byte, error)
	setFn  func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if m.mgetFn != nil {
		return m.mgetFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memStore is a map-backed store for round-trip tests.
type memStore struct {
	data map[string][]byte
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func newTestCachedPredictor(t *testing.T, inner *mockPredictor, opts ...Option) (*CachedPredictor, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cp := New(inner, ms, nil, zap.NewNop(), opts...)
	return cp, ms
}

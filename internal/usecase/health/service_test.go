package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
)

// --- Mocks ---

type mockCatalog struct {
	err error
}

func (m *mockCatalog) Catalog() (*catalog.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return catalog.New([]listing.Listing{
		listing.Reconstruct("Honda CB Shine", "Honda", 124, 9000, 52000, "Delhi"),
		listing.Reconstruct("TVS Apache RTR 160", "TVS", 159, 14000, 68000, "Chennai"),
	})
}

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalog{}, &mockChecker{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, c := range []string{ComponentCatalog, ComponentPredictor, ComponentCache} {
		if r.Checks[c] != CheckOK {
			t.Errorf("expected %s %q, got %q", c, CheckOK, r.Checks[c])
		}
	}
	if r.Listings != 2 {
		t.Errorf("expected 2 listings, got %d", r.Listings)
	}
}

func TestCheck_CacheErrorDegrades(t *testing.T) {
	svc := New(&mockCatalog{}, &mockChecker{}, &mockPinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[ComponentCache])
	}
}

func TestCheck_PredictorErrorIsUnhealthy(t *testing.T) {
	svc := New(&mockCatalog{}, &mockChecker{err: domain.ErrPredictorUnavailable}, &mockPinger{err: errors.New("x")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentPredictor] != CheckError {
		t.Error("expected predictor error")
	}
}

func TestCheck_CatalogErrorIsUnhealthy(t *testing.T) {
	svc := New(&mockCatalog{err: domain.ErrCatalogMalformed}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Listings != 0 {
		t.Errorf("expected 0 listings, got %d", r.Listings)
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockCatalog{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentPredictor]; ok {
		t.Error("predictor check should be absent when predictor is nil")
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when cache is nil")
	}
}

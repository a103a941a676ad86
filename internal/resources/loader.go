// Package resources loads the catalog and predictor once per process.
package resources

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

var _ domain.Predictor = (*Loader)(nil)

// CatalogFunc loads the catalog.
type CatalogFunc func() (*catalog.Catalog, error)

// PredictorFunc opens the predictor.
type PredictorFunc func() (domain.Predictor, error)

// Loader runs each load function at most once. Concurrent callers block until
// the first call finishes and then share its result, error included.
type Loader struct {
	loadCatalog   CatalogFunc
	openPredictor PredictorFunc

	catalogOnce sync.Once
	catalog     *catalog.Catalog
	catalogErr  error

	predictorOnce sync.Once
	predictor     domain.Predictor
	predictorErr  error
}

// New creates a Loader. Nothing is loaded until first use.
func New(loadCatalog CatalogFunc, openPredictor PredictorFunc) *Loader {
	return &Loader{loadCatalog: loadCatalog, openPredictor: openPredictor}
}

// Catalog returns the process-wide catalog.
func (l *Loader) Catalog() (*catalog.Catalog, error) {
	l.catalogOnce.Do(func() {
		l.catalog, l.catalogErr = l.loadCatalog()
		if l.catalogErr != nil {
			l.catalogErr = fmt.Errorf("load catalog: %w", l.catalogErr)
		}
	})
	return l.catalog, l.catalogErr
}

// Predictor returns the process-wide predictor.
func (l *Loader) Predictor() (domain.Predictor, error) {
	l.predictorOnce.Do(func() {
		l.predictor, l.predictorErr = l.openPredictor()
		if l.predictorErr != nil {
			l.predictorErr = fmt.Errorf("load predictor: %w", l.predictorErr)
		}
	})
	return l.predictor, l.predictorErr
}

// Load forces both resources; used at startup so failures are fatal early.
func (l *Loader) Load() error {
	if _, err := l.Catalog(); err != nil {
		return err
	}
	if _, err := l.Predictor(); err != nil {
		return err
	}
	return nil
}

// Predict opens the predictor on first use and delegates to it.
func (l *Loader) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	p, err := l.Predictor()
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, rows)
}

// HealthCheck reports a failed open, then forwards to the predictor when it
// supports health checks.
func (l *Loader) HealthCheck(ctx context.Context) error {
	p, err := l.Predictor()
	if err != nil {
		return err
	}
	if hc, ok := p.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("predictor health: %w", err)
		}
	}
	return nil
}

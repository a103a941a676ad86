package health

import (
	"context"

	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
)

// CatalogSource provides the loaded catalog.
type CatalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

// PredictorChecker checks predictor availability.
type PredictorChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks prediction cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

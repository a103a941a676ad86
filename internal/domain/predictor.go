package domain

import (
	"context"

	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// Predictor is the opaque price model contract shared between layers.
// One value is returned per input row, in row order.
type Predictor interface {
	Predict(ctx context.Context, rows []features.Vector) ([]float64, error)
}

// HealthChecker verifies predictor backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Versioned exposes an identifier of the model behind a predictor.
// Cache keys include it so a model swap never serves stale prices.
type Versioned interface {
	ModelVersion() string
}

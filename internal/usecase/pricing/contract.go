package pricing

import (
	"context"

	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// Predictor maps feature rows to prices, one output per row.
type Predictor interface {
	Predict(ctx context.Context, rows []features.Vector) ([]float64, error)
}

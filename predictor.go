package bikeval

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// Predictor maps feature rows to prices, one output per row in row order.
type Predictor interface {
	Predict(ctx context.Context, rows []Features) ([]float64, error)
}

// predictorAdapter wraps public Predictor to satisfy internal domain.Predictor.
type predictorAdapter struct {
	inner Predictor
}

var _ domain.Predictor = (*predictorAdapter)(nil)

func (a *predictorAdapter) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	in := make([]Features, len(rows))
	for i, r := range rows {
		in[i] = Features{KmsDriven: r.KmsDriven, Age: r.Age, Power: r.Power}
	}
	out, err := a.inner.Predict(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("custom predictor: %w", err)
	}
	return out, nil
}

// ModelVersion keys the prediction cache for custom predictors.
func (a *predictorAdapter) ModelVersion() string {
	if v, ok := a.inner.(domain.Versioned); ok {
		return v.ModelVersion()
	}
	return fmt.Sprintf("custom:%T", a.inner)
}

package pricing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
	"github.com/kailas-cloud/bikeval/internal/metrics"
)

// InstrumentedPredictor wraps a predictor with metrics and logging.
type InstrumentedPredictor struct {
	inner  domain.Predictor
	name   string
	logger *zap.Logger
}

// NewInstrumentedPredictor wraps inner. name labels metrics ("local", "remote").
func NewInstrumentedPredictor(inner domain.Predictor, name string, logger *zap.Logger) *InstrumentedPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedPredictor{inner: inner, name: name, logger: logger}
}

// Predict delegates to inner and records the outcome.
func (p *InstrumentedPredictor) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	start := time.Now()

	out, err := p.inner.Predict(ctx, rows)

	duration := time.Since(start)
	metrics.PredictionRequestDuration.WithLabelValues(p.name).Observe(duration.Seconds())
	metrics.PredictionRowsTotal.WithLabelValues(p.name).Add(float64(len(rows)))

	if err != nil {
		metrics.PredictionRequestsTotal.WithLabelValues(p.name, "error").Inc()
		p.logger.Error("Prediction request failed",
			zap.String("predictor", p.name),
			zap.Int("rows", len(rows)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("predict: %w", err)
	}

	metrics.PredictionRequestsTotal.WithLabelValues(p.name, "ok").Inc()
	p.logger.Debug("Prediction request completed",
		zap.String("predictor", p.name),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", duration),
	)
	return out, nil
}

// ModelVersion forwards to inner when it is versioned.
func (p *InstrumentedPredictor) ModelVersion() string {
	if v, ok := p.inner.(domain.Versioned); ok {
		return v.ModelVersion()
	}
	return p.name
}

// HealthCheck forwards to inner when supported.
func (p *InstrumentedPredictor) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

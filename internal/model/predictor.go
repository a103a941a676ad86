package model

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

var (
	_ domain.Predictor = (*Predictor)(nil)
	_ domain.Versioned = (*Predictor)(nil)
)

// Predictor evaluates a validated artifact in-process. It is immutable and
// safe for concurrent use.
type Predictor struct {
	artifact *Artifact
	eval     func(x []float64) float64
}

// NewPredictor validates the artifact and prepares its evaluator.
func NewPredictor(a *Artifact) (*Predictor, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", domain.ErrModelArtifact)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	p := &Predictor{artifact: a}
	switch a.Kind {
	case KindLinear:
		p.eval = a.Linear.eval
	case KindTreeEnsemble:
		p.eval = a.Ensemble.eval
	}
	return p, nil
}

// Open loads the artifact at path and returns a ready Predictor.
func Open(path string) (*Predictor, error) {
	a, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(a)
}

// Predict returns one price per row.
func (p *Predictor) Predict(ctx context.Context, rows []features.Vector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = p.inverse(p.eval(r.Values()))
	}
	return out, nil
}

// ModelVersion identifies the artifact for cache keys and logs.
func (p *Predictor) ModelVersion() string {
	if p.artifact.Version != "" {
		return p.artifact.Version
	}
	return string(p.artifact.Kind)
}

// Kind returns the model family.
func (p *Predictor) Kind() Kind { return p.artifact.Kind }

func (p *Predictor) inverse(y float64) float64 {
	switch p.artifact.TargetTransform {
	case TransformLog:
		return math.Exp(y)
	case TransformLog1p:
		return math.Expm1(y)
	default:
		return y
	}
}

func (l *Linear) eval(x []float64) float64 {
	y := l.Intercept
	for i, c := range l.Coefficients {
		y += c * x[i]
	}
	return y
}

func (e *Ensemble) eval(x []float64) float64 {
	var sum float64
	for i := range e.Trees {
		sum += e.Trees[i].eval(x)
	}
	if e.Aggregation == AggregationMean {
		return e.BaseScore + sum/float64(len(e.Trees))
	}
	lr := e.LearningRate
	if lr == 0 {
		lr = 1
	}
	return e.BaseScore + lr*sum
}

func (t *Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

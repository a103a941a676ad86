// Package model evaluates exported regression models locally.
//
// The artifact is a JSON or YAML document (format "bikeval-model/v1") produced
// by the offline training job. Two kinds are supported: a linear model and a
// tree ensemble (gradient boosting when aggregated by sum, random forest when
// aggregated by mean).
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// FormatV1 is the only artifact format understood by this package.
const FormatV1 = "bikeval-model/v1"

// Kind is the model family stored in an artifact.
type Kind string

// Supported model kinds.
const (
	KindLinear       Kind = "linear"
	KindTreeEnsemble Kind = "tree_ensemble"
)

// Transform is the inverse target transform applied to the raw model output.
type Transform string

// Supported target transforms.
const (
	TransformNone  Transform = "none"
	TransformLog   Transform = "log"
	TransformLog1p Transform = "log1p"
)

// Aggregation combines per-tree outputs.
type Aggregation string

// Supported ensemble aggregations.
const (
	AggregationSum  Aggregation = "sum"
	AggregationMean Aggregation = "mean"
)

// Artifact is the serialized model document.
type Artifact struct {
	Format          string    `json:"format" yaml:"format"`
	Version         string    `json:"version" yaml:"version"`
	Kind            Kind      `json:"kind" yaml:"kind"`
	Features        []string  `json:"features" yaml:"features"`
	TargetTransform Transform `json:"target_transform,omitempty" yaml:"target_transform,omitempty"`
	Linear          *Linear   `json:"linear,omitempty" yaml:"linear,omitempty"`
	Ensemble        *Ensemble `json:"ensemble,omitempty" yaml:"ensemble,omitempty"`
}

// Linear holds linear regression parameters in feature order.
type Linear struct {
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
}

// Ensemble holds a list of regression trees.
type Ensemble struct {
	Aggregation  Aggregation `json:"aggregation" yaml:"aggregation"`
	BaseScore    float64     `json:"base_score" yaml:"base_score"`
	LearningRate float64     `json:"learning_rate" yaml:"learning_rate"`
	Trees        []Tree      `json:"trees" yaml:"trees"`
}

// Tree is a flat array of nodes; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Node is either a split (Leaf=false) or a leaf carrying Value.
// A split sends rows with feature value <= Threshold to Left.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Feature   int     `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int     `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int     `json:"right,omitempty" yaml:"right,omitempty"`
}

// LoadFile reads and validates an artifact. The decoder is picked by extension:
// .yaml/.yml use YAML, anything else JSON.
func LoadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var a Artifact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &a)
	default:
		err = json.Unmarshal(data, &a)
	}
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w: %w", path, domain.ErrModelArtifact, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &a, nil
}

// Validate checks the artifact is evaluable against the feature schema.
func (a *Artifact) Validate() error {
	if a.Format != FormatV1 {
		return invalid("format must be %q, got %q", FormatV1, a.Format)
	}
	if !features.SameSchema(a.Features) {
		return invalid("features must be %v in this order, got %v", features.Columns, a.Features)
	}
	switch a.TargetTransform {
	case "", TransformNone, TransformLog, TransformLog1p:
	default:
		return invalid("unknown target_transform %q", a.TargetTransform)
	}

	switch a.Kind {
	case KindLinear:
		if a.Linear == nil {
			return invalid("linear section is required for kind %q", a.Kind)
		}
		if len(a.Linear.Coefficients) != len(features.Columns) {
			return invalid("linear model needs %d coefficients, got %d",
				len(features.Columns), len(a.Linear.Coefficients))
		}
	case KindTreeEnsemble:
		if a.Ensemble == nil {
			return invalid("ensemble section is required for kind %q", a.Kind)
		}
		return a.Ensemble.validate()
	default:
		return invalid("unknown kind %q", a.Kind)
	}
	return nil
}

func (e *Ensemble) validate() error {
	switch e.Aggregation {
	case AggregationSum, AggregationMean:
	default:
		return invalid("unknown aggregation %q", e.Aggregation)
	}
	if len(e.Trees) == 0 {
		return invalid("ensemble has no trees")
	}
	for ti, t := range e.Trees {
		if len(t.Nodes) == 0 {
			return invalid("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(features.Columns) {
				return invalid("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			// Children must point forward; this also rules out cycles.
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return invalid("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrModelArtifact, fmt.Sprintf(format, args...))
}

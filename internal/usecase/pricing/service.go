// Package pricing turns raw bike inputs into a model estimate.
package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/category"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

// Defaults for the year window.
const (
	DefaultReferenceYear = 2026
	DefaultMinYear       = 1990
)

// Service builds feature vectors and calls the predictor.
type Service struct {
	predictor     Predictor
	referenceYear int
	minYear       int
	validate      bool
}

// New creates a Service. referenceYear <= 0 selects DefaultReferenceYear.
// Input validation is enabled by default.
func New(p Predictor, referenceYear int) *Service {
	if referenceYear <= 0 {
		referenceYear = DefaultReferenceYear
	}
	return &Service{
		predictor:     p,
		referenceYear: referenceYear,
		minYear:       DefaultMinYear,
		validate:      true,
	}
}

// WithMinYear sets the earliest accepted manufacturing year.
func (s *Service) WithMinYear(y int) *Service {
	if y > 0 {
		s.minYear = y
	}
	return s
}

// WithValidation toggles range checks on inputs. With validation off, inputs
// reach the predictor as given, including a negative age.
func (s *Service) WithValidation(on bool) *Service {
	s.validate = on
	return s
}

// ReferenceYear returns the year age is measured against.
func (s *Service) ReferenceYear() int { return s.referenceYear }

// Validate checks inputs against the accepted ranges.
func (s *Service) Validate(kms float64, year int, power float64) error {
	switch {
	case math.IsNaN(kms) || math.IsInf(kms, 0):
		return domain.NewInputError("kms_driven", "must be a finite number")
	case kms < 0:
		return domain.NewInputError("kms_driven", "must not be negative")
	case year < s.minYear || year > s.referenceYear:
		return domain.NewInputError("year",
			fmt.Sprintf("must be between %d and %d", s.minYear, s.referenceYear))
	case math.IsNaN(power) || math.IsInf(power, 0):
		return domain.NewInputError("power", "must be a finite number")
	case power <= 0:
		return domain.NewInputError("power", "must be positive")
	}
	return nil
}

// Features builds the model input row for the given inputs.
func (s *Service) Features(kms float64, year int, power float64) (features.Vector, error) {
	if s.validate {
		if err := s.Validate(kms, year, power); err != nil {
			return features.Vector{}, err
		}
	}
	return features.New(kms, year, s.referenceYear, power), nil
}

// EstimatePrice predicts the market price. The predictor is called with
// exactly one row and its output is returned unmodified.
func (s *Service) EstimatePrice(ctx context.Context, kms float64, year int, power float64) (float64, error) {
	row, err := s.Features(kms, year, power)
	if err != nil {
		return 0, err
	}

	out, err := s.predictor.Predict(ctx, []features.Vector{row})
	if err != nil {
		return 0, fmt.Errorf("predict price: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%w: expected 1 prediction, got %d", domain.ErrPredictorContract, len(out))
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, fmt.Errorf("%w: non-finite prediction %v", domain.ErrPredictorContract, out[0])
	}
	return out[0], nil
}

// Classify returns the display category for an engine size.
func (s *Service) Classify(power float64) category.Category {
	return category.Classify(power)
}

// Package valuation runs the full submit flow: pricing, range, comparables
// and an optional narrative.
package valuation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/logger"
	"github.com/kailas-cloud/bikeval/internal/metrics"
	"github.com/kailas-cloud/bikeval/internal/usecase/comparables"
)

// Form defaults for fields the caller leaves unset.
const (
	DefaultKmsDriven = 25000.0
	DefaultYear      = 2021
)

// Request holds the submitted form values.
type Request struct {
	Name      string
	KmsDriven float64
	Year      int
	Power     float64
	Profile   string
}

// Service orchestrates a valuation.
type Service struct {
	pricer   Pricer
	profiles ProfileResolver
	catalog  CatalogSource
	logos    LogoResolver
	narrator Narrator
}

// New creates a Service. Logos and narrator are attached with the With* methods.
func New(pricer Pricer, profiles ProfileResolver, catalog CatalogSource) *Service {
	return &Service{pricer: pricer, profiles: profiles, catalog: catalog}
}

// WithLogos attaches a logo resolver.
func (s *Service) WithLogos(l LogoResolver) *Service {
	s.logos = l
	return s
}

// WithNarrator attaches an optional narrator.
func (s *Service) WithNarrator(n Narrator) *Service {
	s.narrator = n
	return s
}

// Valuate prices the bike and collects comparables for the chosen profile.
// Narrator failures are logged and leave Summary empty.
func (s *Service) Valuate(ctx context.Context, req Request) (*valuation.Valuation, error) {
	name := strings.TrimSpace(req.Name)

	p, err := s.profiles.Profile(req.Profile)
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}
	cat, err := s.catalog.Catalog()
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}

	row, err := s.pricer.Features(req.KmsDriven, req.Year, req.Power)
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}
	estimate, err := s.pricer.EstimatePrice(ctx, req.KmsDriven, req.Year, req.Power)
	if err != nil {
		return nil, fmt.Errorf("valuate: %w", err)
	}

	comps := comparables.Find(estimate, cat, p)
	metrics.ComparablesReturned.WithLabelValues(p.Name()).Observe(float64(len(comps)))

	// A name missing from the catalog counts as no selection.
	selected, found := cat.First(name)
	label := valuation.CustomLabel
	if found {
		label = valuation.Label(name)
	}

	v := &valuation.Valuation{
		Label:       label,
		Year:        req.Year,
		Features:    row,
		Category:    s.pricer.Classify(req.Power),
		Estimate:    estimate,
		Range:       valuation.NewRange(estimate, p),
		Profile:     p.Name(),
		Comparables: comps,
	}

	if s.logos != nil {
		brand := assets.DefaultBrand
		if found {
			brand = selected.Brand()
		}
		v.Logo = s.logos.Resolve(brand)
	}

	if s.narrator != nil {
		summary, err := s.narrator.Summarize(ctx, v)
		if err != nil {
			logger.FromContext(ctx).Warn("Valuation summary skipped", zap.Error(err))
		} else {
			v.Summary = summary
		}
	}

	return v, nil
}

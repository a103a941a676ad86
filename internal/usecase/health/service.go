package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates valuations cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentCatalog   = "catalog"
	ComponentPredictor = "predictor"
	ComponentCache     = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Listings int
}

// Service coordinates health checks.
type Service struct {
	catalog   CatalogSource
	predictor PredictorChecker
	cache     CachePinger
}

// New creates a Service. predictor and cache can be nil.
func New(catalog CatalogSource, predictor PredictorChecker, cache CachePinger) *Service {
	return &Service{catalog: catalog, predictor: predictor, cache: cache}
}

// Check runs health checks against all components. Catalog or predictor
// failures make the service unhealthy; a cache failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	r := Report{Status: Healthy, Checks: checks}

	if c, err := s.catalog.Catalog(); err != nil {
		checks[ComponentCatalog] = CheckError
		r.Status = Unhealthy
	} else {
		checks[ComponentCatalog] = CheckOK
		r.Listings = c.Len()
	}

	if s.predictor != nil {
		if err := s.predictor.HealthCheck(ctx); err != nil {
			checks[ComponentPredictor] = CheckError
			r.Status = Unhealthy
		} else {
			checks[ComponentPredictor] = CheckOK
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks[ComponentCache] = CheckError
			if r.Status == Healthy {
				r.Status = Degraded
			}
		} else {
			checks[ComponentCache] = CheckOK
		}
	}

	return r
}

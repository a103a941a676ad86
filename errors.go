package bikeval

import "github.com/kailas-cloud/bikeval/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrCatalogEmpty         = domain.ErrCatalogEmpty
	ErrCatalogMalformed     = domain.ErrCatalogMalformed
	ErrModelArtifact        = domain.ErrModelArtifact
	ErrPredictorContract    = domain.ErrPredictorContract
	ErrPredictorUnavailable = domain.ErrPredictorUnavailable
	ErrInvalidInput         = domain.ErrInvalidInput
	ErrUnknownProfile       = domain.ErrUnknownProfile
	ErrUnsupportedFormat    = domain.ErrUnsupportedFormat
)

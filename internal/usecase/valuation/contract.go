package valuation

import (
	"context"

	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/category"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
)

// Pricer builds features and predicts the price.
type Pricer interface {
	Features(kms float64, year int, power float64) (features.Vector, error)
	EstimatePrice(ctx context.Context, kms float64, year int, power float64) (float64, error)
	Classify(power float64) category.Category
}

// ProfileResolver resolves a comparables profile by name.
type ProfileResolver interface {
	Profile(name string) (profile.Profile, error)
}

// CatalogSource provides the loaded catalog.
type CatalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

// LogoResolver maps a brand to a logo path or URL.
type LogoResolver interface {
	Resolve(brand string) string
}

// Narrator writes a short human-readable summary of a valuation.
type Narrator interface {
	Summarize(ctx context.Context, v *valuation.Valuation) (string, error)
}

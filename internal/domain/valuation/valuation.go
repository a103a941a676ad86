package valuation

import (
	"github.com/kailas-cloud/bikeval/internal/domain/category"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
)

// CustomLabel names a valuation made without a catalog selection.
const CustomLabel = "Custom Bike"

// Range is the display band around a point estimate.
type Range struct {
	Lower float64
	Upper float64
}

// NewRange multiplies the estimate by the profile factors.
func NewRange(estimate float64, p profile.Profile) Range {
	return Range{
		Lower: estimate * p.LowerFactor(),
		Upper: estimate * p.UpperFactor(),
	}
}

// Contains reports whether price lies within the range, both ends inclusive.
func (r Range) Contains(price float64) bool {
	return r.Lower <= price && price <= r.Upper
}

// Label returns the selected model name, or CustomLabel when nothing is selected.
func Label(name string) string {
	if name == "" {
		return CustomLabel
	}
	return name
}

// Valuation is the full outcome of a price estimate request.
type Valuation struct {
	Label       string
	Year        int
	Features    features.Vector
	Category    category.Category
	Estimate    float64
	Range       Range
	Profile     string
	Comparables []listing.Listing
	Logo        string
	Summary     string
}

package chi

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/bikeval/internal/domain/listing"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/format"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
)

const logosPath = "/api/v1/logos/"

// ModelsResponse lists catalog model names.
type ModelsResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// SelectionResponse carries the form defaults for a chosen model.
type SelectionResponse struct {
	Name         string  `json:"name"`
	Found        bool    `json:"found"`
	DefaultPower float64 `json:"default_power"`
	Brand        *string `json:"brand"`
	Category     string  `json:"category"`
	LogoURL      string  `json:"logo_url,omitempty"`
}

// ValuationRequest is the POST /api/v1/valuations body. Unset numbers take
// the form defaults; power falls back to the selected model's power.
type ValuationRequest struct {
	Name      string   `json:"name"`
	KmsDriven *float64 `json:"kms_driven"`
	Year      *int     `json:"year"`
	Power     *float64 `json:"power"`
	Profile   string   `json:"profile"`
}

// FeaturesResponse echoes the model input row.
type FeaturesResponse struct {
	KmsDriven float64 `json:"kms_driven"`
	Age       int     `json:"age"`
	Power     float64 `json:"power"`
}

// RangeResponse is the price band with exact and display values.
type RangeResponse struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Display string  `json:"display"`
}

// ListingResponse is a comparable listing.
type ListingResponse struct {
	Name         string  `json:"bike_name"`
	Brand        string  `json:"brand"`
	City         string  `json:"city"`
	Power        float64 `json:"power"`
	KmsDriven    float64 `json:"kms_driven"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"price_display"`
}

// ValuationResponse is the full valuation result.
type ValuationResponse struct {
	Label           string            `json:"label"`
	Year            int               `json:"year"`
	Features        FeaturesResponse  `json:"features"`
	Category        string            `json:"category"`
	Estimate        float64           `json:"estimate"`
	EstimateDisplay string            `json:"estimate_display"`
	Range           RangeResponse     `json:"range"`
	Profile         string            `json:"profile"`
	Comparables     []ListingResponse `json:"comparables"`
	LogoURL         string            `json:"logo_url,omitempty"`
	Summary         string            `json:"summary,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Listings int               `json:"listings"`
}

// logoURL maps a resolved logo to a client URL. Local files are served
// under /api/v1/logos/{brand}; remote fallbacks pass through.
func logoURL(resolved string) string {
	if resolved == "" || strings.HasPrefix(resolved, "http://") || strings.HasPrefix(resolved, "https://") {
		return resolved
	}
	base := filepath.Base(resolved)
	return logosPath + url.PathEscape(strings.TrimSuffix(base, filepath.Ext(base)))
}

func selectionToResponse(v selectionuc.View) SelectionResponse {
	return SelectionResponse{
		Name:         v.Name,
		Found:        v.Found,
		DefaultPower: v.DefaultPower,
		Brand:        v.Brand,
		Category:     v.Category.String(),
		LogoURL:      logoURL(v.Logo),
	}
}

func valuationToResponse(v *valuation.Valuation, money *format.Money) ValuationResponse {
	comps := make([]ListingResponse, 0, len(v.Comparables))
	for i := range v.Comparables {
		comps = append(comps, listingToResponse(&v.Comparables[i], money))
	}
	return ValuationResponse{
		Label: v.Label,
		Year:  v.Year,
		Features: FeaturesResponse{
			KmsDriven: v.Features.KmsDriven,
			Age:       v.Features.Age,
			Power:     v.Features.Power,
		},
		Category:        v.Category.String(),
		Estimate:        v.Estimate,
		EstimateDisplay: money.Format(v.Estimate),
		Range: RangeResponse{
			Lower:   v.Range.Lower,
			Upper:   v.Range.Upper,
			Display: money.Range(v.Range),
		},
		Profile:     v.Profile,
		Comparables: comps,
		LogoURL:     logoURL(v.Logo),
		Summary:     v.Summary,
	}
}

func listingToResponse(l *listing.Listing, money *format.Money) ListingResponse {
	return ListingResponse{
		Name:         l.Name(),
		Brand:        l.Brand(),
		City:         l.City(),
		Power:        l.Power(),
		KmsDriven:    l.KmsDriven(),
		Price:        l.Price(),
		PriceDisplay: money.Format(l.Price()),
	}
}

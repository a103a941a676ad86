// Package comparables finds catalog listings priced near an estimate.
package comparables

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
)

// Find returns up to p.Limit() listings whose price lies inside the profile's
// band around estimate, bounds inclusive. With SortByPrice the matches are
// stably sorted ascending, otherwise catalog order is kept. An empty result
// is not an error.
func Find(estimate float64, c *catalog.Catalog, p profile.Profile) []listing.Listing {
	band := valuation.NewRange(estimate, p)

	var matches []listing.Listing
	c.Each(func(_ int, l *listing.Listing) bool {
		if band.Contains(l.Price()) {
			matches = append(matches, *l)
		}
		// Catalog order already fixes the first Limit() matches.
		return p.SortByPrice() || len(matches) < p.Limit()
	})

	if p.SortByPrice() {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Price() < matches[j].Price()
		})
	}
	if len(matches) > p.Limit() {
		matches = matches[:p.Limit()]
	}
	return matches
}

// Service resolves named profiles and runs Find.
type Service struct {
	profiles *profile.Set
}

// New creates a Service over the configured profiles.
func New(profiles *profile.Set) *Service {
	return &Service{profiles: profiles}
}

// Profile returns the named profile; an empty name selects the default.
func (s *Service) Profile(name string) (profile.Profile, error) {
	p, err := s.profiles.Get(name)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("resolve profile: %w", err)
	}
	return p, nil
}

// Profiles lists the available profile names.
func (s *Service) Profiles() []string { return s.profiles.Names() }

// Find looks up comparables using the named profile.
func (s *Service) Find(estimate float64, c *catalog.Catalog, profileName string) ([]listing.Listing, profile.Profile, error) {
	p, err := s.Profile(profileName)
	if err != nil {
		return nil, profile.Profile{}, err
	}
	return Find(estimate, c, p), p, nil
}

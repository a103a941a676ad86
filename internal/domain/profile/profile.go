package profile

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/bikeval/internal/domain"
)

// Built-in profile names.
const (
	StandardName = "standard"
	WideName     = "wide"
)

// DefaultLimit caps the number of comparables shown.
const DefaultLimit = 5

// Profile is a named comparables configuration: price tolerance band,
// result limit and ordering.
type Profile struct {
	name        string
	lowerFactor float64
	upperFactor float64
	limit       int
	sortByPrice bool
}

// New validates and creates a Profile.
func New(name string, lowerFactor, upperFactor float64, limit int, sortByPrice bool) (Profile, error) {
	if name == "" {
		return Profile{}, fmt.Errorf("profile name is required")
	}
	if lowerFactor <= 0 {
		return Profile{}, fmt.Errorf("profile %q: lower factor must be positive, got %v", name, lowerFactor)
	}
	if upperFactor < lowerFactor {
		return Profile{}, fmt.Errorf("profile %q: upper factor %v is below lower factor %v", name, upperFactor, lowerFactor)
	}
	if limit <= 0 {
		return Profile{}, fmt.Errorf("profile %q: limit must be positive, got %d", name, limit)
	}
	return Profile{
		name:        name,
		lowerFactor: lowerFactor,
		upperFactor: upperFactor,
		limit:       limit,
		sortByPrice: sortByPrice,
	}, nil
}

// Standard is the canonical profile: ±10%, five cheapest first.
func Standard() Profile {
	return Profile{name: StandardName, lowerFactor: 0.9, upperFactor: 1.1, limit: DefaultLimit, sortByPrice: true}
}

// Wide is the relaxed profile: ±15%, first five in catalog order.
func Wide() Profile {
	return Profile{name: WideName, lowerFactor: 0.85, upperFactor: 1.15, limit: DefaultLimit, sortByPrice: false}
}

// Name returns the profile identifier.
func (p *Profile) Name() string { return p.name }

// LowerFactor returns the multiplier applied to the estimate for the lower bound.
func (p *Profile) LowerFactor() float64 { return p.lowerFactor }

// UpperFactor returns the multiplier applied to the estimate for the upper bound.
func (p *Profile) UpperFactor() float64 { return p.upperFactor }

// Limit returns the maximum number of comparables.
func (p *Profile) Limit() int { return p.limit }

// SortByPrice reports whether comparables are ordered by ascending price.
func (p *Profile) SortByPrice() bool { return p.sortByPrice }

// Set is a registry of profiles with a default.
type Set struct {
	profiles map[string]Profile
	def      string
}

// NewSet creates a registry holding the built-in profiles plus extra ones.
// Extra profiles override built-ins with the same name.
func NewSet(def string, extra ...Profile) (*Set, error) {
	s := &Set{profiles: map[string]Profile{
		StandardName: Standard(),
		WideName:     Wide(),
	}}
	for _, p := range extra {
		s.profiles[p.name] = p
	}
	if def == "" {
		def = StandardName
	}
	if _, ok := s.profiles[def]; !ok {
		return nil, fmt.Errorf("default %q: %w", def, domain.ErrUnknownProfile)
	}
	s.def = def
	return s, nil
}

// Get returns the named profile; an empty name selects the default.
func (s *Set) Get(name string) (Profile, error) {
	if name == "" {
		name = s.def
	}
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%q: %w", name, domain.ErrUnknownProfile)
	}
	return p, nil
}

// Default returns the default profile.
func (s *Set) Default() Profile { return s.profiles[s.def] }

// Names returns the registered profile names in ascending order.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.profiles))
	for n := range s.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Package selection derives form defaults from a chosen catalog model.
package selection

import (
	"strings"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/category"
)

// DefaultPower is used when nothing is selected or the name is unknown.
const DefaultPower = 150.0

// Selection is the resolver output.
type Selection struct {
	DefaultPower float64
	Brand        *string
}

// Resolve returns the first matching listing's power and brand, or
// DefaultPower with a nil brand when name is empty or not in the catalog.
func Resolve(name string, c *catalog.Catalog) Selection {
	if name == "" || c == nil {
		return Selection{DefaultPower: DefaultPower}
	}
	l, ok := c.First(name)
	if !ok {
		return Selection{DefaultPower: DefaultPower}
	}
	brand := l.Brand()
	return Selection{DefaultPower: l.Power(), Brand: &brand}
}

// View is a Selection decorated for display.
type View struct {
	Name         string
	Found        bool
	DefaultPower float64
	Brand        *string
	Logo         string
	Category     category.Category
}

// Service builds selection views.
type Service struct {
	logos LogoResolver
}

// New creates a Service. logos may be nil, leaving Logo empty.
func New(logos LogoResolver) *Service {
	return &Service{logos: logos}
}

// View resolves name and attaches the logo and the category of the default power.
// Without a selection the "default" brand logo is looked up.
func (s *Service) View(name string, c *catalog.Catalog) View {
	name = strings.TrimSpace(name)
	sel := Resolve(name, c)

	v := View{
		Name:         name,
		Found:        sel.Brand != nil,
		DefaultPower: sel.DefaultPower,
		Brand:        sel.Brand,
		Category:     category.Classify(sel.DefaultPower),
	}
	if s.logos != nil {
		brand := assets.DefaultBrand
		if sel.Brand != nil {
			brand = *sel.Brand
		}
		v.Logo = s.logos.Resolve(brand)
	}
	return v
}

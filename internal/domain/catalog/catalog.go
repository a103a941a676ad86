package catalog

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
)

// Catalog is the immutable, ordered set of listings loaded at startup.
type Catalog struct {
	listings []listing.Listing
	names    []string
	byName   map[string]int
}

// New creates a Catalog preserving the given row order.
// An empty input is rejected: a catalog without listings is not operable.
func New(listings []listing.Listing) (*Catalog, error) {
	if len(listings) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	rows := make([]listing.Listing, len(listings))
	copy(rows, listings)

	byName := make(map[string]int, len(rows))
	names := make([]string, 0, len(rows))
	for i := range rows {
		name := rows[i].Name()
		if _, seen := byName[name]; seen {
			continue
		}
		byName[name] = i
		names = append(names, name)
	}
	sort.Strings(names)

	return &Catalog{listings: rows, names: names, byName: byName}, nil
}

// Len returns the number of listings.
func (c *Catalog) Len() int { return len(c.listings) }

// First returns the first listing with the given name in stored order.
func (c *Catalog) First(name string) (listing.Listing, bool) {
	i, ok := c.byName[name]
	if !ok {
		return listing.Listing{}, false
	}
	return c.listings[i], true
}

// Names returns unique listing names in ascending order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Search returns unique names containing query, case-insensitively, in ascending order.
// An empty query returns all names.
func (c *Catalog) Search(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Names()
	}
	var out []string
	for _, n := range c.names {
		if strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	return out
}

// Each calls fn for every listing in stored order until fn returns false.
func (c *Catalog) Each(fn func(i int, l *listing.Listing) bool) {
	for i := range c.listings {
		if !fn(i, &c.listings[i]) {
			return
		}
	}
}

// Package assets resolves brand logos from a local image directory.
package assets

import (
	"os"
	"path/filepath"
	"strings"
)

// FallbackLogoURL is returned when no local logo matches.
const FallbackLogoURL = "https://cdn-icons-png.flaticon.com/512/6750/6750554.png"

// DefaultBrand is looked up when no bike is selected.
const DefaultBrand = "default"

// Extensions are probed in this order.
var Extensions = []string{"png", "jpg", "jpeg", "svg"}

// Resolver maps a brand to a logo file path or the fallback URL.
type Resolver struct {
	dir      string
	fallback string
}

// NewResolver creates a Resolver over dir. An empty fallback selects FallbackLogoURL.
func NewResolver(dir, fallback string) *Resolver {
	if fallback == "" {
		fallback = FallbackLogoURL
	}
	return &Resolver{dir: dir, fallback: fallback}
}

// Resolve returns the first existing {dir}/{brand}.{ext}, else the fallback URL.
func (r *Resolver) Resolve(brand string) string {
	if p, ok := r.Lookup(brand); ok {
		return p
	}
	return r.fallback
}

// Lookup probes the directory only. Brands that would escape the directory
// never match.
func (r *Resolver) Lookup(brand string) (string, bool) {
	brand = strings.TrimSpace(brand)
	if brand == "" || r.dir == "" || strings.ContainsAny(brand, `/\`) || brand == "." || brand == ".." {
		return "", false
	}
	if fi, err := os.Stat(r.dir); err != nil || !fi.IsDir() {
		return "", false
	}
	for _, ext := range Extensions {
		p := filepath.Join(r.dir, brand+"."+ext)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Fallback returns the remote URL used when no file matches.
func (r *Resolver) Fallback() string { return r.fallback }

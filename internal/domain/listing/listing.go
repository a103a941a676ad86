package listing

import (
	"fmt"
	"math"
	"strings"
)

// Listing is a single catalog row (immutable value object).
type Listing struct {
	name      string
	brand     string
	power     float64
	kmsDriven float64
	price     float64
	city      string
}

// New validates and creates a Listing.
// Name is required; power must be positive; kms and price must be non-negative.
func New(name, brand string, power, kmsDriven, price float64, city string) (Listing, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Listing{}, fmt.Errorf("bike name is required")
	}
	if !finite(power) || power <= 0 {
		return Listing{}, fmt.Errorf("power must be positive, got %v", power)
	}
	if !finite(kmsDriven) || kmsDriven < 0 {
		return Listing{}, fmt.Errorf("kms_driven must be non-negative, got %v", kmsDriven)
	}
	if !finite(price) || price < 0 {
		return Listing{}, fmt.Errorf("price must be non-negative, got %v", price)
	}
	return Reconstruct(name, brand, power, kmsDriven, price, city), nil
}

// Reconstruct creates a Listing without validation (trusted sources, tests).
func Reconstruct(name, brand string, power, kmsDriven, price float64, city string) Listing {
	return Listing{
		name:      name,
		brand:     brand,
		power:     power,
		kmsDriven: kmsDriven,
		price:     price,
		city:      city,
	}
}

// Name returns the model name used as selection key.
func (l *Listing) Name() string { return l.name }

// Brand returns the free-text brand used for logo lookup.
func (l *Listing) Brand() string { return l.brand }

// Power returns the engine displacement in cc.
func (l *Listing) Power() float64 { return l.power }

// KmsDriven returns the odometer reading.
func (l *Listing) KmsDriven() float64 { return l.kmsDriven }

// Price returns the asking price.
func (l *Listing) Price() float64 { return l.price }

// City returns the listing location.
func (l *Listing) City() string { return l.city }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

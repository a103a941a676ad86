package category

// Category is the informational engine class of a motorcycle.
type Category string

// Category constants. Bands are half-open and inclusive on the lower bound.
const (
	Commuter  Category = "Commuter/Scooter"
	Sport     Category = "Sport/Performance"
	Superbike Category = "Superbike/Cruiser"
)

// Band thresholds in cubic centimetres.
const (
	SportThreshold     = 150.0
	SuperbikeThreshold = 300.0
)

// Classify maps engine displacement to exactly one category.
func Classify(power float64) Category {
	switch {
	case power < SportThreshold:
		return Commuter
	case power < SuperbikeThreshold:
		return Sport
	default:
		return Superbike
	}
}

// String returns the display label.
func (c Category) String() string { return string(c) }

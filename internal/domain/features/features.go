// Package features defines the exact input row consumed by the price model.
package features

// Column names in model input order. The order is part of the model contract.
const (
	KmsDriven = "kms_driven"
	Age       = "age"
	Power     = "power"
)

// Columns lists the model input schema in positional order.
var Columns = []string{KmsDriven, Age, Power}

// Vector is a single model input row.
type Vector struct {
	KmsDriven float64 `json:"kms_driven"`
	Age       int     `json:"age"`
	Power     float64 `json:"power"`
}

// New builds a Vector from raw inputs. Age is reference year minus manufacturing
// year and is not clamped: a future manufacturing year yields a negative age.
func New(kmsDriven float64, manufacturingYear, referenceYear int, power float64) Vector {
	return Vector{
		KmsDriven: kmsDriven,
		Age:       referenceYear - manufacturingYear,
		Power:     power,
	}
}

// Values returns the row in Columns order.
func (v Vector) Values() []float64 {
	return []float64{v.KmsDriven, float64(v.Age), v.Power}
}

// SameSchema reports whether names equals Columns exactly, order included.
func SameSchema(names []string) bool {
	if len(names) != len(Columns) {
		return false
	}
	for i, n := range names {
		if n != Columns[i] {
			return false
		}
	}
	return true
}

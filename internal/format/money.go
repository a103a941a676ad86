// Package format renders prices for people.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
)

// Currency symbols.
const (
	Rupee      = "₹"
	RupeeASCII = "Rs."
)

// Money formats whole currency amounts with digit grouping.
type Money struct {
	p      *message.Printer
	symbol string
}

// NewMoney creates a formatter for the given locale and currency symbol.
func NewMoney(tag language.Tag, symbol string) *Money {
	return &Money{p: message.NewPrinter(tag), symbol: symbol}
}

// Default groups digits in threes and uses the rupee sign.
func Default() *Money { return NewMoney(language.English, Rupee) }

// Format drops the fractional part (toward zero) and groups digits, e.g. "₹ 140,000".
// Only the display is rounded; stored values keep full precision.
func (m *Money) Format(v float64) string {
	return m.p.Sprintf("%s %d", m.symbol, int64(v))
}

// Range formats a price band as "low - high".
func (m *Money) Range(r valuation.Range) string {
	return m.Format(r.Lower) + " - " + m.Format(r.Upper)
}

// Number groups a plain quantity such as kilometres.
func (m *Money) Number(v float64) string {
	return m.p.Sprintf("%d", int64(v))
}

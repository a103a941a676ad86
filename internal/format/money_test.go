package format

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
)

func TestMoney_Format(t *testing.T) {
	m := Default()
	tests := []struct {
		in   float64
		want string
	}{
		{140000, "₹ 140,000"},
		{150800.99, "₹ 150,800"},
		{999, "₹ 999"},
		{0, "₹ 0"},
		{-1500.7, "₹ -1,500"},
		{1234567, "₹ 1,234,567"},
	}
	for _, tc := range tests {
		if got := m.Format(tc.in); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoney_Range(t *testing.T) {
	m := NewMoney(language.English, RupeeASCII)
	got := m.Range(valuation.Range{Lower: 126000, Upper: 154000.00000000003})
	if got != "Rs. 126,000 - Rs. 154,000" {
		t.Errorf("Range() = %q", got)
	}
}

func TestMoney_Number(t *testing.T) {
	if got := Default().Number(25000); got != "25,000" {
		t.Errorf("Number() = %q", got)
	}
}

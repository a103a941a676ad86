package category

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		power float64
		want  Category
	}{
		{0, Commuter},
		{97.2, Commuter},
		{149.99, Commuter},
		{150, Sport},
		{150.01, Sport},
		{249, Sport},
		{299.999, Sport},
		{300, Superbike},
		{349, Superbike},
		{1200, Superbike},
	}
	for _, tc := range tests {
		if got := Classify(tc.power); got != tc.want {
			t.Errorf("Classify(%v) = %q, want %q", tc.power, got, tc.want)
		}
	}
}

func TestClassify_BoundariesGoUp(t *testing.T) {
	if Classify(SportThreshold) != Sport {
		t.Errorf("150 must classify as %q", Sport)
	}
	if Classify(SuperbikeThreshold) != Superbike {
		t.Errorf("300 must classify as %q", Superbike)
	}
}

package profile

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/bikeval/internal/domain"
)

func TestBuiltins(t *testing.T) {
	s := Standard()
	if s.LowerFactor() != 0.9 || s.UpperFactor() != 1.1 || s.Limit() != 5 || !s.SortByPrice() {
		t.Errorf("standard = %+v", s)
	}
	w := Wide()
	if w.LowerFactor() != 0.85 || w.UpperFactor() != 1.15 || w.Limit() != 5 || w.SortByPrice() {
		t.Errorf("wide = %+v", w)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name         string
		pname        string
		lower, upper float64
		limit        int
		wantErr      bool
	}{
		{"valid", "tight", 0.95, 1.05, 3, false},
		{"equal factors", "exact", 1, 1, 1, false},
		{"no name", "", 0.9, 1.1, 5, true},
		{"zero lower", "x", 0, 1.1, 5, true},
		{"inverted", "x", 1.2, 1.1, 5, true},
		{"zero limit", "x", 0.9, 1.1, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.pname, tc.lower, tc.upper, tc.limit, true)
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSet_GetDefaultAndUnknown(t *testing.T) {
	s, err := NewSet("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := s.Get("")
	if err != nil || p.Name() != StandardName {
		t.Errorf("Get(\"\") = %q, %v", p.Name(), err)
	}

	if _, err := s.Get("nope"); !errors.Is(err, domain.ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestSet_ExtraOverridesAndDefault(t *testing.T) {
	tight, _ := New("tight", 0.95, 1.05, 3, true)
	s, err := NewSet("tight", tight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := s.Default(); d.Name() != "tight" {
		t.Errorf("Default() = %q, want tight", d.Name())
	}

	names := s.Names()
	want := []string{"standard", "tight", "wide"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestNewSet_UnknownDefault(t *testing.T) {
	if _, err := NewSet("missing"); !errors.Is(err, domain.ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
}

package comparables

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
)

func mustCatalog(t *testing.T, prices ...float64) *catalog.Catalog {
	t.Helper()
	rows := make([]listing.Listing, len(prices))
	for i, p := range prices {
		rows[i] = listing.Reconstruct(string(rune('A'+i)), "Brand", 150, 1000, p, "Pune")
	}
	c, err := catalog.New(rows)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func names(ls []listing.Listing) string {
	out := ""
	for i := range ls {
		out += ls[i].Name()
	}
	return out
}

func TestFind_StandardBandInclusiveAndSorted(t *testing.T) {
	// A..H
	c := mustCatalog(t, 110000, 90000, 100000, 89999, 110001, 95000, 105000, 100000)

	got := Find(100000, c, profile.Standard())

	// A(110000), B(90000), C(100000), F(95000), G(105000), H(100000) in band.
	// Sorted ascending, ties keep catalog order, truncated to 5.
	if names(got) != "BFCHG" {
		t.Errorf("got %q, want BFCHG", names(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Price() > got[i].Price() {
			t.Fatalf("result not sorted: %v", got)
		}
	}
}

func TestFind_BoundsInvariant(t *testing.T) {
	c := mustCatalog(t, 50, 80, 90, 95, 100, 105, 110, 120, 200)
	for _, p := range []profile.Profile{profile.Standard(), profile.Wide()} {
		got := Find(100, c, p)
		if len(got) > p.Limit() {
			t.Errorf("%s: %d results exceed limit %d", p.Name(), len(got), p.Limit())
		}
		for i := range got {
			price := got[i].Price()
			if price < 100*p.LowerFactor() || price > 100*p.UpperFactor() {
				t.Errorf("%s: price %v outside band", p.Name(), price)
			}
		}
	}
}

func TestFind_WideKeepsCatalogOrder(t *testing.T) {
	c := mustCatalog(t, 114000, 86000, 100000, 84000, 116000, 99000, 101000, 102000)

	got := Find(100000, c, profile.Wide())
	if names(got) != "ABCFG" {
		t.Errorf("got %q, want ABCFG", names(got))
	}
}

func TestFind_NoMatches(t *testing.T) {
	c := mustCatalog(t, 10, 20, 30)
	if got := Find(1000, c, profile.Standard()); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
	if got := Find(-500, c, profile.Standard()); len(got) != 0 {
		t.Errorf("negative estimate: expected empty result, got %d", len(got))
	}
}

func TestFind_Idempotent(t *testing.T) {
	c := mustCatalog(t, 100, 100, 100, 100, 100, 100, 100)
	a := Find(100, c, profile.Standard())
	b := Find(100, c, profile.Standard())
	if names(a) != names(b) {
		t.Errorf("results differ: %q vs %q", names(a), names(b))
	}
	if names(a) != "ABCDE" {
		t.Errorf("ties must keep catalog order, got %q", names(a))
	}
}

func TestService_Profiles(t *testing.T) {
	tight, err := profile.New("tight", 0.99, 1.01, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	set, err := profile.NewSet("", tight)
	if err != nil {
		t.Fatal(err)
	}
	svc := New(set)
	c := mustCatalog(t, 101, 100, 99)

	got, p, err := svc.Find(100, c, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != profile.StandardName || len(got) != 3 {
		t.Errorf("default profile: got %s with %d results", p.Name(), len(got))
	}

	got, p, err = svc.Find(100, c, "tight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "tight" || names(got) != "C" {
		t.Errorf("tight profile: got %s %q", p.Name(), names(got))
	}

	if _, _, err := svc.Find(100, c, "nope"); !errors.Is(err, domain.ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
	if len(svc.Profiles()) != 3 {
		t.Errorf("expected 3 profiles, got %v", svc.Profiles())
	}
}

package catalog

import (
	"testing"

	"storefront-backend/internal/domain"
)

func TestInspect(t *testing.T) {
	e := NewEngine(DefaultRuleSet())
	lookup := BuildLookup(e.Key, []domain.VariantImageEntry{
		{Match: "GEEKBAR X 25K BANANA ICE", ImageURL: "/banana.webp"},
	})

	got := e.Inspect("geek bar 25k banana ice", lookup)
	if got.Normalized != "GEEKBAR X 25K BANANA ICE" {
		t.Errorf("Normalized = %q", got.Normalized)
	}
	if got.BaseKey != "GEEKBAR X 25K" || got.Flavor != "Banana Ice" {
		t.Errorf("BaseKey = %q, Flavor = %q", got.BaseKey, got.Flavor)
	}
	if !got.Featured || got.Restricted || got.Discontinued || got.Fallback {
		t.Errorf("unexpected flags: %+v", got)
	}
	if got.Image == nil || got.Image.ImageURL != "/banana.webp" {
		t.Errorf("Image = %+v", got.Image)
	}

	zero := e.Inspect("RAZ LTX ZERO NIC STRAWBERRY", nil)
	if !zero.Restricted || zero.Marker != "ZERO NIC" || zero.Image != nil {
		t.Errorf("zero nic inspection = %+v", zero)
	}

	gone := e.Inspect("RAZ 9K CACTUS JACK", nil)
	if !gone.Discontinued {
		t.Error("RAZ 9K CACTUS JACK should be discontinued")
	}
}

func TestFallbackNames(t *testing.T) {
	e := NewEngine(DefaultRuleSet())
	got := e.FallbackNames([]string{
		"CUVIE PLUS LUSH ICE",
		"ZYN 3MG MINT",
		"CUVIE PLUS LUSH ICE",
		"",
		"JUUL",
	})
	want := []string{"CUVIE PLUS LUSH ICE", "JUUL"}
	if len(got) != len(want) {
		t.Fatalf("FallbackNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FallbackNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

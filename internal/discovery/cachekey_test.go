package discovery

import (
	"testing"

	"github.com/creatorlens/creatorlens-go/internal/domain"
)

func TestMakeCacheKeyStableUnderReorderAndCase(t *testing.T) {
	filters := domain.DefaultFilterState()

	a := MakeCacheKey("search_my_niche", "Home Espresso", []string{"espresso recipes", "latte art", "coffee gear"}, filters)
	b := MakeCacheKey("search_my_niche", "home espresso", []string{"latte art", "coffee gear", "espresso recipes"}, filters)

	if a != b {
		t.Fatalf("expected identical keys, got %s vs %s", a, b)
	}
}

func TestMakeCacheKeyChangesWithFilters(t *testing.T) {
	terms := []string{"espresso recipes", "latte art"}

	base := domain.DefaultFilterState()
	narrowed := domain.DefaultFilterState()
	narrowed.MinViewsPerDay = 100

	a := MakeCacheKey("search_my_niche", "home espresso", terms, base)
	b := MakeCacheKey("search_my_niche", "home espresso", terms, narrowed)

	if a == b {
		t.Fatalf("expected minViewsPerDay change to mint a new key")
	}
}

func TestMakeCacheKeyChangesWithMode(t *testing.T) {
	terms := []string{"espresso recipes"}
	filters := domain.DefaultFilterState()

	a := MakeCacheKey("search_my_niche", "home espresso", terms, filters)
	b := MakeCacheKey("competitor_search", "home espresso", terms, filters)

	if a == b {
		t.Fatalf("expected different modes to produce different keys")
	}
}

func TestMakeCacheKeyIgnoresBlankTerms(t *testing.T) {
	filters := domain.DefaultFilterState()

	a := MakeCacheKey("search_my_niche", "home espresso", []string{"latte art", "", "  "}, filters)
	b := MakeCacheKey("search_my_niche", "home espresso", []string{"latte art"}, filters)

	if a != b {
		t.Fatalf("expected blank terms to be ignored, got %s vs %s", a, b)
	}
}

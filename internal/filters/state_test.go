package filters

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToggleAddsAndDeduplicates(t *testing.T) {
	t.Parallel()

	state := State{}.
		Toggle(KindBrand, true, "Aqualis").
		Toggle(KindBrand, true, "Aqualis", "Botanica", " ")

	if diff := cmp.Diff([]string{"Aqualis", "Botanica"}, state.Values(KindBrand)); diff != "" {
		t.Fatalf("brand values mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleOffLastValueRemovesKind(t *testing.T) {
	t.Parallel()

	for _, kind := range setKinds {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			state := State{}.Toggle(kind, true, "value").Toggle(kind, false, "value")
			if state.Has(kind) {
				t.Fatalf("expected %s to be absent after removing its last value", kind)
			}
			if state.Values(kind) != nil {
				t.Fatalf("expected no stored values, got %v", state.Values(kind))
			}
			if !state.Empty() {
				t.Fatal("expected empty state")
			}
		})
	}
}

func TestToggleDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	original := State{}.Toggle(KindLabel, true, "vegan")
	_ = original.Toggle(KindLabel, true, "organic")
	_ = original.Toggle(KindLabel, false, "vegan")

	if diff := cmp.Diff([]string{"vegan"}, original.Values(KindLabel)); diff != "" {
		t.Fatalf("receiver mutated (-want +got):\n%s", diff)
	}
}

func TestToggleNaturalPercentageReplacesRange(t *testing.T) {
	t.Parallel()

	state := State{}.Toggle(KindNaturalPercentage, true, "10-40")
	state = state.Toggle(KindNaturalPercentage, true, "50", "90")

	r, ok := state.Natural()
	if !ok || r != (Range{Min: 50, Max: 90}) {
		t.Fatalf("expected replaced range 50-90, got %+v (ok=%t)", r, ok)
	}
	if !state.IsActive(KindNaturalPercentage, "50-90") {
		t.Fatal("expected exact range to be active")
	}
	if state.IsActive(KindNaturalPercentage, "10-40") {
		t.Fatal("expected previous range to be gone")
	}

	state = state.Toggle(KindNaturalPercentage, false)
	if state.Has(KindNaturalPercentage) {
		t.Fatal("expected range to be removed")
	}
}

func TestToggleIgnoresUnknownKindAndBadRange(t *testing.T) {
	t.Parallel()

	state := State{}.Toggle(Kind("colour"), true, "red").Toggle(KindNaturalPercentage, true, "lots")
	if !state.Empty() {
		t.Fatalf("expected empty state, got count %d", state.Count())
	}
}

func TestClearResetsEverything(t *testing.T) {
	t.Parallel()

	state := State{}.Toggle(KindBrand, true, "A").SetRange(Range{Min: 1, Max: 2})
	if state.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", state.Count())
	}
	if !state.Clear().Empty() {
		t.Fatal("expected Clear to return an empty state")
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if kind, ok := ParseKind(" additive "); !ok || kind != KindAdditive {
		t.Fatalf("ParseKind(additive) = %q, %t", kind, ok)
	}
	if _, ok := ParseKind("price"); ok {
		t.Fatal("expected unknown kind to be rejected")
	}
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	values := url.Values{}
	values.Set("brand", "Aqualis,Botanica,,Aqualis")
	values.Set("label", "vegan")
	values.Set("naturalMin", "20")
	values.Set("naturalMax", "80")

	state := ParseQuery(values)
	if diff := cmp.Diff([]string{"Aqualis", "Botanica"}, state.Values(KindBrand)); diff != "" {
		t.Fatalf("brands mismatch (-want +got):\n%s", diff)
	}
	if r, ok := state.Natural(); !ok || r != (Range{Min: 20, Max: 80}) {
		t.Fatalf("expected natural range 20-80, got %+v", r)
	}
	if state.Has(KindIngredient) {
		t.Fatal("expected ingredient kind to be absent")
	}
}

func TestParseQueryIgnoresPartialRange(t *testing.T) {
	t.Parallel()

	cases := []url.Values{
		{"naturalMin": {"20"}},
		{"naturalMax": {"80"}},
		{"naturalMin": {"twenty"}, "naturalMax": {"80"}},
	}
	for _, values := range cases {
		if ParseQuery(values).Has(KindNaturalPercentage) {
			t.Fatalf("expected partial range %v to be ignored", values)
		}
	}
}

func TestEncodeRoundTripsThroughParseSearch(t *testing.T) {
	t.Parallel()

	q := Query{
		Q:     "serum",
		State: State{}.Toggle(KindAdditive, true, "E100", "E200").SetRange(Range{Min: 0, Max: 60}),
		Sort:  SortChemicalLow,
		Page:  3,
	}
	encoded := Encode(q)
	if got := encoded.Get("additive"); got != "E100,E200" {
		t.Fatalf("additive param = %q", got)
	}

	parsed := ParseSearch(encoded)
	if parsed.Q != q.Q || parsed.Sort != q.Sort || parsed.Page != q.Page || !parsed.State.Equal(q.State) {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, q)
	}
}

func TestEncodeOmitsDefaults(t *testing.T) {
	t.Parallel()

	if got := (Query{Sort: SortRelevance, Page: 1}).URL("/search"); got != "/search" {
		t.Fatalf("URL() = %q, want bare path", got)
	}
}

func TestParseSortDefaultsToRelevance(t *testing.T) {
	t.Parallel()

	if ParseSort("natural-high") != SortNaturalHigh {
		t.Fatal("expected natural-high to parse")
	}
	if ParseSort("price-low") != SortRelevance {
		t.Fatal("expected unknown sort to default to relevance")
	}
	if SortChemicalHigh.Label() == "" {
		t.Fatal("expected label for sort option")
	}
}

package effects

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"switchmarket/models"
)

func TestAggregateEmptyInput(t *testing.T) {
	t.Parallel()

	got := Aggregate(nil)
	if got.Benefits == nil || got.Concerns == nil {
		t.Fatalf("expected non-nil empty slices, got %+v", got)
	}
	if len(got.Benefits) != 0 || len(got.Concerns) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestAggregateGroupsBenefits(t *testing.T) {
	t.Parallel()

	input := []models.EffectRecord{
		{Functions: "Moisturizing", EcoScore: 8, ToxicityScore: 2, Ingredient: "Glycerin", Percent: 5},
		{Functions: "Moisturizing", EcoScore: 6, ToxicityScore: 1, Ingredient: "Aloe", Percent: 3},
	}

	got := Aggregate(input)
	want := Result{
		Benefits: []models.AggregatedEffect{{
			Function: "Moisturizing",
			Score:    8,
			Ingredients: []models.EffectIngredient{
				{Name: "Glycerin", Percent: 5},
				{Name: "Aloe", Percent: 3},
			},
		}},
		Concerns: []models.AggregatedEffect{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCountsRecordOnBothSides(t *testing.T) {
	t.Parallel()

	got := Aggregate([]models.EffectRecord{
		{Functions: "Preservative", EcoScore: 5, ToxicityScore: 7, Ingredient: "Phenoxyethanol", Percent: 1},
	})
	if len(got.Benefits) != 1 || len(got.Concerns) != 1 {
		t.Fatalf("expected record on both sides, got %+v", got)
	}
	if got.Benefits[0].Score != 5 || got.Concerns[0].Score != 7 {
		t.Fatalf("expected side-specific scores, got %v and %v", got.Benefits[0].Score, got.Concerns[0].Score)
	}
}

func TestAggregateKeepsFirstSeenPercent(t *testing.T) {
	t.Parallel()

	got := Aggregate([]models.EffectRecord{
		{Functions: "Soothing", EcoScore: 6, Ingredient: "Aloe", Percent: 3},
		{Functions: "Soothing", EcoScore: 9, Ingredient: "Aloe", Percent: 40},
	})
	want := []models.AggregatedEffect{{
		Function:    "Soothing",
		Score:       9,
		Ingredients: []models.EffectIngredient{{Name: "Aloe", Percent: 3}},
	}}
	if diff := cmp.Diff(want, got.Benefits); diff != "" {
		t.Fatalf("benefits mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSortsDescendingAndStable(t *testing.T) {
	t.Parallel()

	got := Aggregate([]models.EffectRecord{
		{Functions: "A", ToxicityScore: 6, Ingredient: "a"},
		{Functions: "B", ToxicityScore: 9, Ingredient: "b"},
		{Functions: "C", ToxicityScore: 6, Ingredient: "c"},
		{Functions: "D", ToxicityScore: 4, Ingredient: "d"},
	})

	var order []string
	for _, group := range got.Concerns {
		order = append(order, group.Function)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateInvariants(t *testing.T) {
	t.Parallel()

	input := []models.EffectRecord{
		{Functions: "Emollient", EcoScore: 5, ToxicityScore: 5, Ingredient: "Shea", Percent: 4},
		{Functions: "Emollient", EcoScore: 7, ToxicityScore: 6, Ingredient: "Jojoba", Percent: 2},
		{Functions: "Fragrance", EcoScore: 2, ToxicityScore: 8, Ingredient: "Parfum", Percent: 1},
		{Functions: "Emollient", EcoScore: 9, ToxicityScore: 5, Ingredient: "Shea", Percent: 9},
		{Functions: "Fragrance", EcoScore: 1, ToxicityScore: 5, Ingredient: "Linalool", Percent: 1},
	}
	got := Aggregate(input)

	check := func(side string, groups []models.AggregatedEffect, score func(models.EffectRecord) float64) {
		seen := map[string]bool{}
		for _, group := range groups {
			if seen[group.Function] {
				t.Fatalf("%s: duplicate group %q", side, group.Function)
			}
			seen[group.Function] = true

			max := 0.0
			for _, record := range input {
				if record.Functions == group.Function && score(record) >= Threshold && score(record) > max {
					max = score(record)
				}
			}
			if group.Score != max {
				t.Fatalf("%s: group %q score = %v, want %v", side, group.Function, group.Score, max)
			}
		}
	}
	check("benefits", got.Benefits, func(r models.EffectRecord) float64 { return r.EcoScore })
	check("concerns", got.Concerns, func(r models.EffectRecord) float64 { return r.ToxicityScore })
}

type stubSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]models.EffectRecord
	fail    map[string]bool
}

func (s *stubSearcher) SearchEffects(_ context.Context, query string) ([]models.EffectRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()
	if s.fail[query] {
		return nil, errors.New("upstream unavailable")
	}
	return s.results[query], nil
}

func TestCollectKeepsIngredientOrderAndSkipsFailures(t *testing.T) {
	t.Parallel()

	searcher := &stubSearcher{
		results: map[string][]models.EffectRecord{
			"Aqua":     {{Functions: "Solvent", EcoScore: 9}},
			"Glycerin": {{Functions: "Moisturizing", EcoScore: 8, Ingredient: "Glycerin", Percent: 5}},
		},
		fail: map[string]bool{"Parfum": true},
	}
	ingredients := []models.Ingredient{
		{Text: "Aqua", Percent: 70},
		{Text: "Parfum", Percent: 1},
		{Text: " "},
		{Text: "Glycerin", Percent: 5},
	}

	got, err := Collect(context.Background(), searcher, ingredients)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []models.EffectRecord{
		{Functions: "Solvent", EcoScore: 9, Ingredient: "Aqua", Percent: 70},
		{Functions: "Moisturizing", EcoScore: 8, Ingredient: "Glycerin", Percent: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Collect mismatch (-want +got):\n%s", diff)
	}
	if len(searcher.calls) != 3 {
		t.Fatalf("expected 3 lookups, got %v", searcher.calls)
	}
}

func TestCollectStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &stubSearcher{fail: map[string]bool{"Aqua": true}}
	if _, err := Collect(ctx, searcher, []models.Ingredient{{Text: "Aqua"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// Package effects groups ingredient effect records into benefits and concerns.
package effects

import (
	"sort"

	"switchmarket/models"
)

// Threshold is the score from which an effect counts as a benefit (eco score)
// or a concern (toxicity score).
const Threshold = 5

// Result holds the aggregated benefits and concerns, strongest first.
type Result struct {
	Benefits []models.AggregatedEffect `json:"benefits"`
	Concerns []models.AggregatedEffect `json:"concerns"`
}

// Aggregate partitions records into benefits and concerns, groups each partition by
// effect function and sorts the groups by descending score. A record whose eco and
// toxicity scores both reach the threshold is counted on both sides.
func Aggregate(records []models.EffectRecord) Result {
	benefits := newGrouping()
	concerns := newGrouping()

	for _, record := range records {
		if record.EcoScore >= Threshold {
			benefits.add(record, record.EcoScore)
		}
		if record.ToxicityScore >= Threshold {
			concerns.add(record, record.ToxicityScore)
		}
	}

	return Result{
		Benefits: benefits.sorted(),
		Concerns: concerns.sorted(),
	}
}

// grouping keeps groups in encounter order so the stable sort preserves ties.
type grouping struct {
	index  map[string]int
	groups []models.AggregatedEffect
}

func newGrouping() *grouping {
	return &grouping{index: make(map[string]int)}
}

func (g *grouping) add(record models.EffectRecord, score float64) {
	ingredient := models.EffectIngredient{Name: record.Ingredient, Percent: record.Percent}

	pos, ok := g.index[record.Functions]
	if !ok {
		g.index[record.Functions] = len(g.groups)
		g.groups = append(g.groups, models.AggregatedEffect{
			Function:    record.Functions,
			Score:       score,
			Ingredients: []models.EffectIngredient{ingredient},
		})
		return
	}

	group := &g.groups[pos]
	if score > group.Score {
		group.Score = score
	}
	for _, existing := range group.Ingredients {
		if existing.Name == ingredient.Name {
			return
		}
	}
	group.Ingredients = append(group.Ingredients, ingredient)
}

func (g *grouping) sorted() []models.AggregatedEffect {
	out := make([]models.AggregatedEffect, len(g.groups))
	copy(out, g.groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

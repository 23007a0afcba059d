package models

// EffectRecord is a single ingredient effect as produced by the effect-search endpoint.
type EffectRecord struct {
	Functions     string  `json:"functions"`
	EcoScore      float64 `json:"eco_score"`
	ToxicityScore float64 `json:"toxicity_score"`
	Ingredient    string  `json:"ingredient"`
	Percent       float64 `json:"percent"`
}

// AggregatedEffect groups the ingredients sharing an effect category.
type AggregatedEffect struct {
	Function    string             `json:"function"`
	Score       float64            `json:"score"`
	Ingredients []EffectIngredient `json:"ingredients"`
}

// EffectIngredient is an ingredient contributing to an aggregated effect.
type EffectIngredient struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

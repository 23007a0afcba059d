package backendmock

import (
	"time"

	"switchmarket/models"
)

// Seeded accounts. Both share DefaultPassword.
const (
	AdminEmail      = "admin@switchmarket.dev"
	UserEmail       = "ana@switchmarket.dev"
	DefaultPassword = "switchmarket"
)

func seedAdditives() []models.AdditiveInfo {
	return []models.AdditiveInfo{
		{Tag: "en:e330", Names: map[string]string{"en": "Citric acid", "fr": "Acide citrique"}, Function: "Acidity regulator", Risk: "low", Family: "acid"},
		{Tag: "en:e320", Names: map[string]string{"en": "Butylated hydroxyanisole", "fr": "BHA"}, Function: "Antioxidant", Risk: "high", Family: "phenol", Allergy: true, DailyIntake: 1},
		{Tag: "en:e171", Names: map[string]string{"en": "Titanium dioxide", "fr": "Dioxyde de titane"}, Function: "Colour", Risk: "moderate", Family: "mineral"},
		{Tag: "en:e307", Names: map[string]string{"en": "Alpha-tocopherol", "fr": "Alpha-tocophérol"}, Function: "Antioxidant", Risk: "low", Family: "vitamin"},
	}
}

func seedLabels() []models.Label {
	return []models.Label{
		{ID: "l1", Tag: "vegan", Name: "Vegan", Description: "No ingredient of animal origin."},
		{ID: "l2", Tag: "organic", Name: "Organic", Description: "Certified organic farming ingredients."},
		{ID: "l3", Tag: "cruelty-free", Name: "Cruelty free", Description: "Not tested on animals."},
	}
}

func seedNews(now time.Time) []models.News {
	return []models.News{
		{ID: "n1", Title: "Titanium dioxide under review", Summary: "Regulators reopen the file on E171 in cosmetics.", PublishedAt: now.AddDate(0, 0, -2)},
		{ID: "n2", Title: "1,000 products documented", Summary: "Thanks to contributors the catalogue keeps growing.", PublishedAt: now.AddDate(0, 0, -9)},
	}
}

func seedEffects() map[string][]models.EffectRecord {
	return map[string][]models.EffectRecord{
		"aqua":                   {{Functions: "Solvent", EcoScore: 9, ToxicityScore: 0}},
		"glycerin":               {{Functions: "Hydration", EcoScore: 8, ToxicityScore: 1}},
		"sodium laureth sulfate": {{Functions: "Cleansing", EcoScore: 4, ToxicityScore: 6}},
		"parfum":                 {{Functions: "Fragrance", EcoScore: 2, ToxicityScore: 7}},
		"limonene":               {{Functions: "Fragrance", EcoScore: 5, ToxicityScore: 6}},
		"shea butter":            {{Functions: "Hydration", EcoScore: 9, ToxicityScore: 0}},
		"tocopherol":             {{Functions: "Antioxidant", EcoScore: 7, ToxicityScore: 0}},
		"citric acid":            {{Functions: "pH adjuster", EcoScore: 6, ToxicityScore: 2}},
	}
}

func seedProducts() []models.Product {
	return []models.Product{
		{
			Name:  "Gentle Shampoo",
			Brand: "Aqualis",
			EAN:   "3600523614455",
			Ingredients: []models.Ingredient{
				{Text: "Aqua", Percent: 70},
				{Text: "Sodium Laureth Sulfate", Percent: 12},
				{Text: "Glycerin", Percent: 5},
				{Text: "Parfum", Percent: 1},
				{Text: "Citric Acid"},
			},
			Additives:            []models.Additive{{Tag: "en:e330", ShortName: "E330"}},
			LabelTags:            []string{"cruelty-free"},
			CompletionPercentage: models.Percent(90),
			NaturalPercentage:    models.Percent(35),
			ChemicalPercentage:   models.Percent(65),
		},
		{
			Name:  "Shea Body Cream",
			Brand: "Botanica",
			EAN:   "3337875597388",
			Ingredients: []models.Ingredient{
				{Text: "Aqua", Percent: 55},
				{Text: "Shea Butter", Percent: 20},
				{Text: "Glycerin", Percent: 8},
				{Text: "Tocopherol", Percent: 0.5},
			},
			Additives:            []models.Additive{{Tag: "en:e307", ShortName: "E307"}},
			LabelTags:            []string{"vegan", "organic"},
			CompletionPercentage: models.Percent(100),
			NaturalPercentage:    models.Percent(92),
			ChemicalPercentage:   models.Percent(8),
		},
		{
			Name:  "Citrus Deodorant",
			Brand: "Aqualis",
			EAN:   "3014230021404",
			Ingredients: []models.Ingredient{
				{Text: "Aqua"},
				{Text: "Parfum"},
				{Text: "Limonene"},
			},
			Additives:            []models.Additive{{Tag: "en:e320", ShortName: "E320"}, {Tag: "en:e171", ShortName: "E171"}},
			LabelTags:            []string{},
			CompletionPercentage: models.Percent(60),
			NaturalPercentage:    models.Percent(20),
			ChemicalPercentage:   models.Percent(80),
		},
		{
			Name:  "Organic Lip Balm",
			Brand: "Botanica",
			Ingredients: []models.Ingredient{
				{Text: "Shea Butter", Percent: 60},
				{Text: "Tocopherol", Percent: 1},
			},
			LabelTags: []string{"vegan", "organic", "cruelty-free"},
		},
	}
}

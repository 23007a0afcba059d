package filters

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"switchmarket/models"
)

// Apply narrows products to those matching every active filter kind and orders
// them by sortOption. With no active filter and relevance order the input slice
// itself is returned. The input is never modified.
func Apply(products []models.Product, state State, sortOption SortOption) []models.Product {
	sortOption = ParseSort(string(sortOption))
	if state.Empty() && sortOption == SortRelevance {
		return products
	}

	result := products
	filtered := false

	if brands := state.sets[KindBrand]; len(brands) > 0 {
		result = keep(result, func(p models.Product) bool {
			return slices.Contains(brands, p.Brand)
		})
		filtered = true
	}
	if labels := state.sets[KindLabel]; len(labels) > 0 {
		result = keep(result, func(p models.Product) bool {
			return slices.ContainsFunc(p.LabelTags, func(tag string) bool { return slices.Contains(labels, tag) })
		})
		filtered = true
	}
	if needles := state.sets[KindIngredient]; len(needles) > 0 {
		lowered := make([]string, len(needles))
		for i, needle := range needles {
			lowered[i] = strings.ToLower(needle)
		}
		result = keep(result, func(p models.Product) bool {
			return slices.ContainsFunc(p.Ingredients, func(ingredient models.Ingredient) bool {
				text := strings.ToLower(ingredient.Text)
				return slices.ContainsFunc(lowered, func(needle string) bool { return strings.Contains(text, needle) })
			})
		})
		filtered = true
	}
	if tags := state.sets[KindAdditive]; len(tags) > 0 {
		result = keep(result, func(p models.Product) bool {
			return slices.ContainsFunc(p.Additives, func(additive models.Additive) bool { return slices.Contains(tags, additive.Tag) })
		})
		filtered = true
	}
	if r, ok := state.Natural(); ok {
		result = keep(result, func(p models.Product) bool {
			return r.Contains(p.Natural())
		})
		filtered = true
	}

	if sortOption == SortRelevance {
		return result
	}
	if !filtered {
		result = slices.Clone(result)
	}
	sortProducts(result, sortOption)
	return result
}

func keep(products []models.Product, match func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, product := range products {
		if match(product) {
			out = append(out, product)
		}
	}
	return out
}

func sortProducts(products []models.Product, option SortOption) {
	var value func(models.Product) float64
	descending := false
	switch option {
	case SortNaturalHigh:
		value, descending = models.Product.Natural, true
	case SortNaturalLow:
		value = models.Product.Natural
	case SortChemicalHigh:
		value, descending = models.Product.Chemical, true
	case SortChemicalLow:
		value = models.Product.Chemical
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		if descending {
			return value(products[i]) > value(products[j])
		}
		return value(products[i]) < value(products[j])
	})
}

// BrandOptions returns the distinct brands of products, sorted.
func BrandOptions(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	brands := make([]string, 0)
	for _, product := range products {
		if product.Brand == "" {
			continue
		}
		if _, ok := seen[product.Brand]; ok {
			continue
		}
		seen[product.Brand] = struct{}{}
		brands = append(brands, product.Brand)
	}
	sort.Strings(brands)
	return brands
}

// Memo caches the most recent Apply result and recomputes only when the product
// slice, the filter state or the sort option changes.
type Memo struct {
	mu       sync.Mutex
	valid    bool
	products []models.Product
	state    State
	sort     SortOption
	result   []models.Product
}

// Apply returns the cached result for identical inputs, computing it otherwise.
func (m *Memo) Apply(products []models.Product, state State, sortOption SortOption) []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && sameSlice(m.products, products) && m.state.Equal(state) && m.sort == sortOption {
		return m.result
	}
	m.result = Apply(products, state, sortOption)
	m.products = products
	m.state = state
	m.sort = sortOption
	m.valid = true
	return m.result
}

func sameSlice(a, b []models.Product) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"switchmarket/internal/inci"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/pages"
	"switchmarket/models"
)

var errInvalidShare = errors.New("percentages must be numbers between 0 and 100")

// formFromProduct fills the product form with the stored values.
func formFromProduct(product models.Product) pages.ProductForm {
	return pages.ProductForm{
		ID:          product.ID,
		Name:        product.Name,
		Brand:       product.Brand,
		EAN:         product.EAN,
		Ingredients: ingredientsText(product.Ingredients),
		Labels:      strings.Join(product.LabelTags, ", "),
		Natural:     shareText(product.NaturalPercentage),
		Chemical:    shareText(product.ChemicalPercentage),
		Completion:  shareText(product.CompletionPercentage),
	}
}

// productForm reads the posted product form as typed.
func productForm(r *http.Request) pages.ProductForm {
	return pages.ProductForm{
		ID:          strings.TrimSpace(r.PostFormValue("id")),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Brand:       strings.TrimSpace(r.PostFormValue("brand")),
		EAN:         strings.TrimSpace(r.PostFormValue("ean")),
		Ingredients: strings.TrimSpace(r.PostFormValue("ingredients")),
		Labels:      strings.TrimSpace(r.PostFormValue("labels")),
		Natural:     strings.TrimSpace(r.PostFormValue("natural")),
		Chemical:    strings.TrimSpace(r.PostFormValue("chemical")),
		Completion:  strings.TrimSpace(r.PostFormValue("completion")),
	}
}

// productFromForm validates form and converts it into a product.
func productFromForm(form pages.ProductForm) (models.Product, error) {
	if form.Name == "" {
		return models.Product{}, errors.New("a product name is required")
	}
	natural, err := parseShare(form.Natural)
	if err != nil {
		return models.Product{}, err
	}
	chemical, err := parseShare(form.Chemical)
	if err != nil {
		return models.Product{}, err
	}
	completion, err := parseShare(form.Completion)
	if err != nil {
		return models.Product{}, err
	}

	labels := make([]string, 0)
	for _, label := range strings.Split(form.Labels, ",") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}

	return models.Product{
		ID:                   form.ID,
		Name:                 form.Name,
		Brand:                form.Brand,
		EAN:                  form.EAN,
		Ingredients:          inci.Parse(form.Ingredients),
		Additives:            []models.Additive{},
		LabelTags:            labels,
		NaturalPercentage:    natural,
		ChemicalPercentage:   chemical,
		CompletionPercentage: completion,
		Effects:              []models.EffectRecord{},
	}, nil
}

func parseShare(value string) (*float64, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 100 {
		return nil, errInvalidShare
	}
	return &v, nil
}

func shareText(v *float64) string {
	if v == nil {
		return ""
	}
	return components.FormatNumber(*v)
}

// ingredientsText writes ingredients back in the form inci.Parse reads.
func ingredientsText(ingredients []models.Ingredient) string {
	parts := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		text := ingredient.Text
		if ingredient.Percent > 0 {
			text += " (" + components.FormatNumber(ingredient.Percent) + "%)"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, ", ")
}

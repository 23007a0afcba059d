package pages

import (
	"switchmarket/internal/effects"
	"switchmarket/models"
)

// ProductView is the product detail page.
type ProductView struct {
	Product models.Product
	Image   string
	Effects effects.Result
	Locale  string
}

// additiveInfo falls back to the bare tag when the additive is not in the reference list.
func additiveInfo(additive models.Additive) models.AdditiveInfo {
	if additive.Info != nil {
		return *additive.Info
	}
	return models.AdditiveInfo{Tag: additive.Tag}
}

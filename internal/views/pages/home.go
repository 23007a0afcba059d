// Package pages renders the page contents placed inside layout.Base, and the
// fragments swapped in by HTMX.
package pages

import "switchmarket/models"

// HomeView is the content of the landing page.
type HomeView struct {
	Products  []models.Product
	Images    map[string]string
	Additives []models.AdditiveInfo
	News      []models.News
	Locale    string
}

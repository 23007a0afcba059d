package pages

import (
	"net/url"
	"strconv"

	"switchmarket/models"
)

var contributionFilters = []struct{ value, label string }{
	{models.ContributionPending, "Pending"},
	{models.ContributionApproved, "Approved"},
	{models.ContributionRejected, "Rejected"},
	{"", "All"},
}

// roleAction is the role change offered for user and its button label.
func roleAction(user models.User) (action, label string) {
	if user.IsAdmin() {
		return "demote", "Revoke admin"
	}
	return "promote", "Make admin"
}

// AdminProductsView is the catalogue management page.
type AdminProductsView struct {
	Query    string
	Page     int
	HasMore  bool
	Products []models.Product
}

func (v AdminProductsView) pageURL(page int) string {
	return "/admin/products?q=" + url.QueryEscape(v.Query) + "&page=" + strconv.Itoa(page)
}

// productFormTarget is where the product form posts and the heading it shows.
func productFormTarget(form ProductForm) (action, title string) {
	if form.ID == "" {
		return "/admin/products/new", "New product"
	}
	return "/admin/products/" + form.ID + "/edit", "Edit " + form.Name
}

// Package layout renders the document shell around every page.
package layout

import (
	"switchmarket/internal/views/components"
	"switchmarket/models"
)

// Page describes the shell of a full document.
type Page struct {
	Title   string
	Section string
	User    *models.User
	Toasts  []components.Toast
	Locale  string
}

// Locale is a display language offered in the footer.
type Locale struct {
	Code  string
	Label string
}

// Locales lists the languages additive names are published in.
var Locales = []Locale{
	{Code: "en", Label: "English"},
	{Code: "fr", Label: "Français"},
	{Code: "pt", Label: "Português"},
}

func (p Page) title() string {
	if p.Title == "" {
		return "SwitchMarket"
	}
	return p.Title + " | SwitchMarket"
}

func (p Page) lang() string {
	if p.Locale == "" {
		return "en"
	}
	return p.Locale
}

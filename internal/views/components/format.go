// Package components holds the HTML building blocks shared by the pages.
package components

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate -path ..

import (
	"net/url"
	"strconv"
	"strings"
)

// ProductURL is the detail page of product id.
func ProductURL(id string) string {
	return "/products/" + url.PathEscape(id)
}

// DefaultDash returns a dash when value is blank.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// Percent formats an optional share, or a dash when it is unknown.
func Percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return FormatNumber(*v) + "%"
}

// FormatNumber prints v without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

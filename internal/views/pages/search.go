package pages

import (
	"strconv"

	"switchmarket/internal/filters"
	"switchmarket/internal/search"
	"switchmarket/internal/views/components"
	"switchmarket/models"
)

// SearchView is everything the search page shows.
type SearchView struct {
	Query    filters.Query
	Products []models.Product
	Loaded   int
	Images   map[string]string
	Options  search.Options
	Brands   []string
	HasMore  bool
	Error    string
	Locale   string
}

// State is the canonical query string of the view, carried by every action.
func (v SearchView) State() string {
	return filters.Encode(v.Query).Encode()
}

func (v SearchView) stateVals() string {
	return hxVals(map[string]string{"state": v.State()})
}

func (v SearchView) toggleVals(kind filters.Kind, value string, checked bool) string {
	return hxVals(map[string]string{
		"state":   v.State(),
		"action":  "toggle",
		"kind":    string(kind),
		"value":   value,
		"checked": strconv.FormatBool(checked),
	})
}

// naturalRange is the active natural share filter, or the full range.
func (v SearchView) naturalRange() (filters.Range, bool) {
	r, active := v.Query.State.Natural()
	if !active {
		r = filters.Range{Min: 0, Max: 100}
	}
	return r, active
}

type filterOption struct {
	value string
	label string
}

func (v SearchView) brandOptions() []filterOption {
	options := make([]filterOption, 0, len(v.Brands))
	for _, brand := range v.Brands {
		options = append(options, filterOption{value: brand, label: brand})
	}
	return options
}

func (v SearchView) labelOptions() []filterOption {
	options := make([]filterOption, 0, len(v.Options.Labels))
	for _, label := range v.Options.Labels {
		options = append(options, filterOption{value: label.Tag, label: components.DefaultDash(label.Name)})
	}
	return options
}

func (v SearchView) additiveOptions() []filterOption {
	options := make([]filterOption, 0, len(v.Options.Additives))
	for _, additive := range v.Options.Additives {
		options = append(options, filterOption{value: additive.Tag, label: additive.Name(v.Locale)})
	}
	return options
}

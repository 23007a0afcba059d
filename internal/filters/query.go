package filters

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameter names of the search page.
const (
	ParamQuery      = "q"
	ParamNaturalMin = "naturalMin"
	ParamNaturalMax = "naturalMax"
	ParamSort       = "sort"
	ParamPage       = "page"
)

// Query is everything the search page keeps in its URL.
type Query struct {
	Q     string
	State State
	Sort  SortOption
	Page  int
}

// ParseQuery reads the filter state from URL parameters. Set kinds are comma-joined
// lists; the natural percentage range is only installed when both bounds are integers.
func ParseQuery(values url.Values) State {
	state := State{}
	for _, kind := range setKinds {
		raw := values.Get(string(kind))
		if raw == "" {
			continue
		}
		state = state.Toggle(kind, true, strings.Split(raw, ",")...)
	}

	if r, ok := parseRangePair(values.Get(ParamNaturalMin), values.Get(ParamNaturalMax)); ok {
		state = state.SetRange(r)
	}
	return state
}

// ParseSearch reads the full search page state from URL parameters.
func ParseSearch(values url.Values) Query {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage)))
	if err != nil || page < 1 {
		page = 1
	}
	return Query{
		Q:     strings.TrimSpace(values.Get(ParamQuery)),
		State: ParseQuery(values),
		Sort:  ParseSort(values.Get(ParamSort)),
		Page:  page,
	}
}

// Encode serialises q into URL parameters. Defaults (relevance sort, first page,
// empty query) are omitted so the canonical URL stays short.
func Encode(q Query) url.Values {
	values := url.Values{}
	if q.Q != "" {
		values.Set(ParamQuery, q.Q)
	}
	for _, kind := range setKinds {
		if selected := q.State.sets[kind]; len(selected) > 0 {
			values.Set(string(kind), strings.Join(selected, ","))
		}
	}
	if r, ok := q.State.Natural(); ok {
		values.Set(ParamNaturalMin, strconv.Itoa(r.Min))
		values.Set(ParamNaturalMax, strconv.Itoa(r.Max))
	}
	if q.Sort != "" && q.Sort != SortRelevance {
		values.Set(ParamSort, string(q.Sort))
	}
	if q.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return values
}

// URL renders q as a path plus encoded query string.
func (q Query) URL(path string) string {
	encoded := Encode(q).Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// SortOption orders the product grid.
type SortOption string

// Supported sort options. Relevance keeps the server order.
const (
	SortRelevance    SortOption = "relevance"
	SortNaturalHigh  SortOption = "natural-high"
	SortNaturalLow   SortOption = "natural-low"
	SortChemicalHigh SortOption = "chemical-high"
	SortChemicalLow  SortOption = "chemical-low"
)

var sortOptions = []SortOption{SortRelevance, SortNaturalHigh, SortNaturalLow, SortChemicalHigh, SortChemicalLow}

var sortLabels = map[SortOption]string{
	SortRelevance:    "Relevance",
	SortNaturalHigh:  "Most natural",
	SortNaturalLow:   "Least natural",
	SortChemicalHigh: "Most chemical",
	SortChemicalLow:  "Least chemical",
}

// ParseSort maps a query value to a SortOption, defaulting to relevance.
func ParseSort(value string) SortOption {
	option := SortOption(strings.TrimSpace(value))
	if slices.Contains(sortOptions, option) {
		return option
	}
	return SortRelevance
}

// SortOptions lists every option in display order.
func SortOptions() []SortOption {
	return slices.Clone(sortOptions)
}

// Label returns the display label of the option.
func (o SortOption) Label() string {
	if label, ok := sortLabels[o]; ok {
		return label
	}
	return sortLabels[SortRelevance]
}

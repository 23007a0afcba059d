// Package filters holds the product search filter state, its URL encoding and the
// in-memory filter and sort pass applied to fetched products.
package filters

import (
	"slices"
	"strconv"
	"strings"
)

// Kind names a filter dimension.
type Kind string

// Supported filter kinds.
const (
	KindBrand             Kind = "brand"
	KindLabel             Kind = "label"
	KindIngredient        Kind = "ingredient"
	KindAdditive          Kind = "additive"
	KindNaturalPercentage Kind = "naturalPercentage"
)

// setKinds are the kinds holding a set of strings, in URL order.
var setKinds = []Kind{KindBrand, KindLabel, KindIngredient, KindAdditive}

// ParseKind validates a kind received from a form or query string.
func ParseKind(value string) (Kind, bool) {
	kind := Kind(strings.TrimSpace(value))
	if kind == KindNaturalPercentage || slices.Contains(setKinds, kind) {
		return kind, true
	}
	return "", false
}

// Range is an inclusive natural percentage window.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= float64(r.Min) && v <= float64(r.Max)
}

// String renders the range as "min-max".
func (r Range) String() string {
	return strconv.Itoa(r.Min) + "-" + strconv.Itoa(r.Max)
}

// ParseRange reads "min-max" or "min,max".
func ParseRange(value string) (Range, bool) {
	value = strings.TrimSpace(value)
	sep := strings.IndexAny(value, ",-")
	if sep <= 0 {
		return Range{}, false
	}
	return parseRangePair(value[:sep], value[sep+1:])
}

func parseRangePair(minValue, maxValue string) (Range, bool) {
	lo, err := strconv.Atoi(strings.TrimSpace(minValue))
	if err != nil {
		return Range{}, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(maxValue))
	if err != nil {
		return Range{}, false
	}
	return Range{Min: lo, Max: hi}, true
}

// State is the set of active filters. A kind without values is unconstrained; a
// State never stores an empty value list. The zero value is an empty State.
// State values are immutable: every update returns a new State.
type State struct {
	sets    map[Kind][]string
	natural *Range
}

// Empty reports whether no filter is active.
func (s State) Empty() bool {
	return len(s.sets) == 0 && s.natural == nil
}

// Has reports whether kind constrains the results.
func (s State) Has(kind Kind) bool {
	if kind == KindNaturalPercentage {
		return s.natural != nil
	}
	_, ok := s.sets[kind]
	return ok
}

// Values returns a copy of the active values for a set kind.
func (s State) Values(kind Kind) []string {
	return slices.Clone(s.sets[kind])
}

// Natural returns the active natural percentage range, if any.
func (s State) Natural() (Range, bool) {
	if s.natural == nil {
		return Range{}, false
	}
	return *s.natural, true
}

// Toggle adds (checked) or removes values for kind. For the natural percentage kind
// the first value is read as a range which replaces any existing one when checked;
// unchecking removes the range altogether.
func (s State) Toggle(kind Kind, checked bool, values ...string) State {
	if kind == KindNaturalPercentage {
		if !checked {
			return s.ClearRange()
		}
		r, ok := rangeFromValues(values)
		if !ok {
			return s
		}
		return s.SetRange(r)
	}
	if !slices.Contains(setKinds, kind) {
		return s
	}

	next := s.clone()
	current := next.sets[kind]
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if checked {
			if !slices.Contains(current, value) {
				current = append(current, value)
			}
			continue
		}
		current = slices.DeleteFunc(current, func(existing string) bool { return existing == value })
	}

	if len(current) == 0 {
		delete(next.sets, kind)
	} else {
		next.sets[kind] = current
	}
	return next
}

// SetRange installs r as the single natural percentage range.
func (s State) SetRange(r Range) State {
	next := s.clone()
	next.natural = &r
	return next
}

// ClearRange removes the natural percentage constraint.
func (s State) ClearRange() State {
	next := s.clone()
	next.natural = nil
	return next
}

// Clear returns the empty State.
func (s State) Clear() State {
	return State{}
}

// IsActive reports whether value is selected for kind. Ranges match exactly.
func (s State) IsActive(kind Kind, value string) bool {
	if kind == KindNaturalPercentage {
		r, ok := ParseRange(value)
		return ok && s.natural != nil && *s.natural == r
	}
	return slices.Contains(s.sets[kind], strings.TrimSpace(value))
}

// Equal reports whether both states select the same filters.
func (s State) Equal(other State) bool {
	if (s.natural == nil) != (other.natural == nil) {
		return false
	}
	if s.natural != nil && *s.natural != *other.natural {
		return false
	}
	if len(s.sets) != len(other.sets) {
		return false
	}
	for kind, values := range s.sets {
		if !slices.Equal(values, other.sets[kind]) {
			return false
		}
	}
	return true
}

// Count returns the number of selected values, the range counting as one.
func (s State) Count() int {
	total := 0
	for _, values := range s.sets {
		total += len(values)
	}
	if s.natural != nil {
		total++
	}
	return total
}

func (s State) clone() State {
	next := State{sets: make(map[Kind][]string, len(s.sets)), natural: s.natural}
	for kind, values := range s.sets {
		next.sets[kind] = slices.Clone(values)
	}
	return next
}

func rangeFromValues(values []string) (Range, bool) {
	switch len(values) {
	case 0:
		return Range{}, false
	case 1:
		return ParseRange(values[0])
	default:
		return parseRangePair(values[0], values[1])
	}
}

// Package inci extracts INCI ingredient lists from free text such as a label
// transcription or the text layer of a PDF data sheet.
package inci

import (
	"regexp"
	"strconv"
	"strings"

	"switchmarket/models"
)

var (
	markerPattern  = regexp.MustCompile(`(?i)\b(?:ingredients?|ingr[ée]dients?|inci|composition)\s*:`)
	percentPattern = regexp.MustCompile(`\(?\s*(\d+(?:[.,]\d+)?)\s*%\s*\)?`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Parse returns the ingredients listed in text, in label order. When text carries
// an "Ingredients:" style marker, only what follows the first marker is read.
// Percentages written next to an ingredient ("Aqua (70%)") are extracted.
func Parse(text string) []models.Ingredient {
	if loc := markerPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	text = spacePattern.ReplaceAllString(text, " ")

	seen := make(map[string]struct{})
	ingredients := make([]models.Ingredient, 0)
	for _, part := range split(text) {
		ingredient, ok := parseEntry(part)
		if !ok {
			continue
		}
		key := strings.ToLower(ingredient.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients
}

// Names returns the ingredient texts of Parse(text).
func Names(text string) []string {
	parsed := Parse(text)
	names := make([]string, len(parsed))
	for i, ingredient := range parsed {
		names[i] = ingredient.Text
	}
	return names
}

// split cuts on commas and semicolons outside parentheses; a comma between digits
// is a decimal separator. The list ends at the first full stop followed by a space.
func split(text string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 && !(r == ',' && isDecimalPoint(text, i)) {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		case '.':
			if depth == 0 && (i+1 == len(text) || text[i+1] == ' ') && !isDecimalPoint(text, i) {
				return append(parts, text[start:i])
			}
		}
	}
	return append(parts, text[start:])
}

func isDecimalPoint(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isDigit(text[i-1]) && isDigit(text[i+1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func parseEntry(raw string) (models.Ingredient, bool) {
	entry := strings.TrimSpace(raw)
	var percent float64
	if m := percentPattern.FindStringSubmatchIndex(entry); m != nil {
		value := strings.Replace(entry[m[2]:m[3]], ",", ".", 1)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			percent = v
		}
		entry = entry[:m[0]] + entry[m[1]:]
	}
	entry = strings.Trim(strings.TrimSpace(entry), "*.-:")
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return models.Ingredient{}, false
	}
	return models.Ingredient{Text: entry, Percent: percent}, true
}

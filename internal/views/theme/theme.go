package theme

import "strings"

// Tone holds the classes used to colour a badge or a score.
type Tone struct {
	Key        string
	Label      string
	BadgeClass string
	TextClass  string
}

const (
	// DefaultKey is used for unknown risk levels and statuses.
	DefaultKey = "unknown"
)

var catalogue = map[string]Tone{
	"low": {
		Key:        "low",
		Label:      "Low risk",
		BadgeClass: "badge badge-success",
		TextClass:  "text-emerald-600",
	},
	"moderate": {
		Key:        "moderate",
		Label:      "Moderate risk",
		BadgeClass: "badge badge-warning",
		TextClass:  "text-amber-600",
	},
	"high": {
		Key:        "high",
		Label:      "High risk",
		BadgeClass: "badge badge-danger",
		TextClass:  "text-rose-600",
	},
	"pending": {
		Key:        "pending",
		Label:      "Pending",
		BadgeClass: "badge badge-info",
		TextClass:  "text-sky-600",
	},
	"approved": {
		Key:        "approved",
		Label:      "Approved",
		BadgeClass: "badge badge-success",
		TextClass:  "text-emerald-600",
	},
	"rejected": {
		Key:        "rejected",
		Label:      "Rejected",
		BadgeClass: "badge badge-danger",
		TextClass:  "text-rose-600",
	},
	DefaultKey: {
		Key:        DefaultKey,
		Label:      "Unknown",
		BadgeClass: "badge badge-muted",
		TextClass:  "text-slate-500",
	},
}

// Resolve returns the tone registered for key, falling back to the unknown tone.
func Resolve(key string) Tone {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// ForScore grades a 0-10 effect score.
func ForScore(score float64) Tone {
	switch {
	case score >= 7:
		return Resolve("low")
	case score >= 5:
		return Resolve("moderate")
	default:
		return Resolve("high")
	}
}

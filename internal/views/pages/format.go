package pages

import (
	"encoding/json"
	"time"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// hxVals encodes values for an hx-vals attribute.
func hxVals(values map[string]string) string {
	encoded, err := json.Marshal(values)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

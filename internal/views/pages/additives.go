package pages

import (
	"switchmarket/internal/views/components"
	"switchmarket/models"
)

// AdditivesView lists additives, optionally narrowed by a tag query.
type AdditivesView struct {
	Query     string
	Additives []models.AdditiveInfo
	Locale    string
}

func dailyIntake(additive models.AdditiveInfo) string {
	if additive.DailyIntake <= 0 {
		return "-"
	}
	return components.FormatNumber(additive.DailyIntake) + " mg/kg"
}

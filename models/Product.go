package models

// Product is the normalized view of a catalogue entry returned by the SwitchMarket API.
type Product struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Brand                string         `json:"brand"`
	EAN                  string         `json:"ean,omitempty"`
	Ingredients          []Ingredient   `json:"ingredients"`
	Additives            []Additive     `json:"additives"`
	LabelTags            []string       `json:"labeltags"`
	CompletionPercentage *float64       `json:"completionPercentage,omitempty"`
	NaturalPercentage    *float64       `json:"naturalPercentage,omitempty"`
	ChemicalPercentage   *float64       `json:"chemicalPercentage,omitempty"`
	Effects              []EffectRecord `json:"effects"`
}

// Ingredient is a single entry of a product composition, in label order.
type Ingredient struct {
	Text    string  `json:"text"`
	Percent float64 `json:"percent"`
}

// Additive references a regulated additive present in a product.
type Additive struct {
	Tag       string        `json:"tag"`
	ShortName string        `json:"shortName"`
	Info      *AdditiveInfo `json:"additive,omitempty"`
}

// AdditiveInfo carries the reference metadata for an additive tag.
type AdditiveInfo struct {
	Tag         string            `json:"tag"`
	Names       map[string]string `json:"name"`
	Function    string            `json:"function"`
	Risk        string            `json:"risk"`
	Family      string            `json:"family"`
	Allergy     bool              `json:"allergy"`
	DailyIntake float64           `json:"dailyIntake"`
}

// Natural returns the natural composition share, defaulting to zero when unknown.
func (p Product) Natural() float64 {
	return valueOrZero(p.NaturalPercentage)
}

// Chemical returns the chemical composition share, defaulting to zero when unknown.
func (p Product) Chemical() float64 {
	return valueOrZero(p.ChemicalPercentage)
}

// Completion returns how complete the product record is, defaulting to zero.
func (p Product) Completion() float64 {
	return valueOrZero(p.CompletionPercentage)
}

// Name returns the additive name for the locale, falling back to English then the tag.
func (a AdditiveInfo) Name(locale string) string {
	if name := a.Names[locale]; name != "" {
		return name
	}
	if name := a.Names["en"]; name != "" {
		return name
	}
	return a.Tag
}

// Percent returns a pointer to v, for building products with known shares.
func Percent(v float64) *float64 {
	return &v
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

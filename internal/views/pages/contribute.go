package pages

import "switchmarket/models"

// ProductForm holds the editable fields of a product as typed by the user.
type ProductForm struct {
	ID          string
	Name        string
	Brand       string
	EAN         string
	Ingredients string
	Labels      string
	Natural     string
	Chemical    string
	Completion  string
}

// carried lists the fields the extract form posts back so typed values survive.
func (f ProductForm) carried() [][2]string {
	var fields [][2]string
	for _, field := range [][2]string{
		{"id", f.ID}, {"name", f.Name}, {"brand", f.Brand}, {"ean", f.EAN},
		{"labels", f.Labels}, {"natural", f.Natural}, {"chemical", f.Chemical},
	} {
		if field[1] != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// ContributeView is the contribution page.
type ContributeView struct {
	Form          ProductForm
	Message       string
	Error         string
	Contributions []models.Contribution
}

var moderationActions = []struct{ status, label string }{
	{models.ContributionApproved, "Approve"},
	{models.ContributionRejected, "Reject"},
}

func authorName(c models.Contribution) string {
	if c.Author == nil {
		return "-"
	}
	return c.Author.DisplayName()
}

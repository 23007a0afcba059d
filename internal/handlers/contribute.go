package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"switchmarket/internal/api"
	"switchmarket/internal/inci"
	applog "switchmarket/internal/log"
	"switchmarket/internal/views/pages"
	"switchmarket/models"
)

const (
	maxDatasheetSize = 5 << 20
	contributionNew  = "new"
	contributionEdit = "update"
)

// Contribute shows the contribution form, prefilled from ?product=ID when
// correcting an existing product, and submits contributions for moderation.
func Contribute(w http.ResponseWriter, r *http.Request) {
	if apiClient == nil {
		http.Error(w, "contributions not available", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		view := pages.ContributeView{}
		if id := strings.TrimSpace(r.URL.Query().Get("product")); id != "" {
			product, err := apiClient.GetProduct(r.Context(), id)
			if err != nil {
				if api.IsStatus(err, http.StatusNotFound) {
					notFound(w, r, "This product does not exist or was removed.")
					return
				}
				applog.Error(r.Context(), "failed to load product for contribution", "id", id, "error", err)
				view.Error = "The product could not be loaded. You can still describe it below."
			} else {
				view.Form = formFromProduct(product)
			}
		}
		renderContribute(w, r, view)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		form := productForm(r)
		view := pages.ContributeView{Form: form}

		product, err := productFromForm(form)
		if err != nil {
			view.Error = sentence(err.Error())
			renderContribute(w, r, view)
			return
		}

		kind := contributionNew
		if form.ID != "" {
			kind = contributionEdit
		}
		_, err = apiClient.SubmitContribution(r.Context(), currentToken(r), api.ContributionInput{
			ProductID: form.ID,
			Type:      kind,
			Product:   product,
			Comment:   strings.TrimSpace(r.PostFormValue("comment")),
		})
		if err != nil {
			applog.Warn(r.Context(), "contribution rejected", "error", err)
			view.Error = api.Message(err, "Your contribution could not be sent. Please try again.")
			renderContribute(w, r, view)
			return
		}

		applog.Info(r.Context(), "contribution submitted", "type", kind, "product", form.ID)
		renderContribute(w, r, pages.ContributeView{Message: "Thank you! Your contribution will be reviewed by a moderator."})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ContributeExtract reads the ingredient list out of an uploaded data sheet and
// puts it into the contribution form.
func ContributeExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxDatasheetSize); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	form := productForm(r)
	view := pages.ContributeView{Form: form}

	name, text, err := readDatasheet(r)
	switch {
	case err != nil:
		applog.Warn(r.Context(), "failed to read data sheet", "file", name, "error", err)
		view.Error = "The data sheet could not be read. Only PDF and text files are supported."
	case name == "":
		view.Error = "Choose a data sheet to import."
	default:
		ingredients := inci.Parse(text)
		if len(ingredients) == 0 {
			view.Error = "No ingredient list was found in " + name + "."
		} else {
			view.Form.Ingredients = ingredientsText(ingredients)
			view.Message = fmt.Sprintf("Imported %d ingredients from %s. Please review them before submitting.", len(ingredients), name)
		}
	}
	renderContribute(w, r, view)
}

func renderContribute(w http.ResponseWriter, r *http.Request, view pages.ContributeView) {
	if apiClient != nil {
		contributions, err := apiClient.ListContributions(r.Context(), currentToken(r), "")
		if err != nil {
			applog.Warn(r.Context(), "failed to load own contributions", "error", err)
		}
		view.Contributions = ownContributions(contributions, currentUser(r))
	}
	renderPage(w, r, pageMeta{title: "Contribute", section: "contribute"}, pages.Contribute(view))
}

// ownContributions keeps the contributions authored by user; administrators
// receive every contribution from the API.
func ownContributions(contributions []models.Contribution, user *models.User) []models.Contribution {
	if user == nil {
		return nil
	}
	own := make([]models.Contribution, 0, len(contributions))
	for _, contribution := range contributions {
		if contribution.Author != nil && contribution.Author.ID == user.ID {
			own = append(own, contribution)
		}
	}
	return own
}

// readDatasheet returns the uploaded file name and its text. A missing file
// yields an empty name and no error.
func readDatasheet(r *http.Request) (string, string, error) {
	file, header, err := r.FormFile("datasheet")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", nil
		}
		return "", "", err
	}
	defer file.Close()

	if header.Size > maxDatasheetSize {
		return header.Filename, "", fmt.Errorf("file exceeds %d bytes", maxDatasheetSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return header.Filename, "", err
	}

	mime := header.Header.Get("Content-Type")
	isPDF := mime == "application/pdf" || strings.EqualFold(filepath.Ext(header.Filename), ".pdf")
	if !isPDF {
		if mime != "" && !strings.HasPrefix(mime, "text/") && mime != "application/octet-stream" {
			return header.Filename, "", fmt.Errorf("unsupported file type %q", mime)
		}
		return header.Filename, buf.String(), nil
	}

	text, err := extractTextFromPDF(buf.Bytes())
	if err != nil {
		return header.Filename, "", err
	}
	return header.Filename, text, nil
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"switchmarket/internal/api"
	"switchmarket/internal/backendmock"
	"switchmarket/models"
)

func datasheetRequest(t *testing.T, base, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("datasheet", filename)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, base+"/contribute/extract", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestContributeRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, _ := b.get("/contribute", false)
	expectRedirect(t, resp, "/login")

	resp, _ = b.get("/contribute", true)
	if got := resp.Header.Get("HX-Redirect"); got != "/login" {
		t.Fatalf("expected HX-Redirect to /login, got %q", got)
	}
}

func TestContributePrefillsExistingProduct(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login(backendmock.UserEmail)

	resp, body := b.get("/contribute?product=p1", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	for _, token := range []string{`value="Gentle Shampoo"`, `value="Aqualis"`, "Aqua (70%), Sodium Laureth Sulfate (12%)", `value="cruelty-free"`} {
		if !strings.Contains(body, token) {
			t.Fatalf("expected %q in the prefilled form: %s", token, body)
		}
	}

	resp, _ = b.get("/contribute?product=missing", false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestContributeValidatesForm(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login(backendmock.UserEmail)

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{name: "missing name", form: url.Values{"brand": {"Lavo"}}, message: "A product name is required."},
		{name: "share out of range", form: url.Values{"name": {"Soap"}, "natural": {"140"}}, message: "Percentages must be numbers between 0 and 100."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := b.post("/contribute", tc.form, true)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, tc.message) {
				t.Fatalf("expected %q in body: %s", tc.message, body)
			}
		})
	}
}

func TestContributionReviewPublishesProduct(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	member := app.browser(t)
	member.login(backendmock.UserEmail)
	resp, body := member.post("/contribute", url.Values{
		"name":        {"Lavender Balm"},
		"brand":       {"Lavo"},
		"ingredients": {"Shea Butter (80%), Lavender Oil"},
		"natural":     {"95"},
		"comment":     {"new on the shelves"},
	}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Thank you!") || !strings.Contains(body, "Lavender Balm") {
		t.Fatalf("expected confirmation and own contribution list: %s", body)
	}

	token, err := app.client.Login(ctx, api.Credentials{Email: backendmock.AdminEmail, Password: backendmock.DefaultPassword})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	pending, err := app.client.ListContributions(ctx, token, models.ContributionPending)
	if err != nil {
		t.Fatalf("failed to list contributions: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending contribution, got %d", len(pending))
	}
	id := pending[0].ID

	admin := app.browser(t)
	admin.login(backendmock.AdminEmail)
	resp, body = admin.get("/admin/contributions", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "/admin/contributions/"+id) {
		t.Fatalf("expected moderation controls for %s: %s", id, body)
	}

	resp, _ = admin.post("/admin/contributions/"+id, url.Values{"status": {"published"}}, false)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown status, got %d", resp.StatusCode)
	}

	resp, body = admin.post("/admin/contributions/"+id, url.Values{"status": {models.ContributionApproved}}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "/admin/contributions/"+id) {
		t.Fatal("expected the reviewed contribution to leave the pending list")
	}
	if !strings.Contains(body, "Contribution approved.") {
		t.Fatalf("expected an out of band toast: %s", body)
	}

	_, body = member.get("/search?q=lavender", false)
	if !strings.Contains(body, "Lavender Balm") {
		t.Fatalf("expected the approved product in the catalogue: %s", body)
	}
}

func TestContributeExtract(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login(backendmock.UserEmail)

	t.Run("text data sheet", func(t *testing.T) {
		req := datasheetRequest(t, app.url, "sheet.txt", "Cream 50ml\nIngredients: Aqua (70%), Glycerin, Parfum.", map[string]string{"name": "Day Cream"})
		resp, body := b.do(req, true)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		for _, token := range []string{"Imported 3 ingredients from sheet.txt.", "Aqua (70%), Glycerin, Parfum", `value="Day Cream"`} {
			if !strings.Contains(body, token) {
				t.Fatalf("expected %q in body: %s", token, body)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := datasheetRequest(t, app.url, "", "", map[string]string{"name": "Day Cream"})
		_, body := b.do(req, true)
		if !strings.Contains(body, "Choose a data sheet to import.") {
			t.Fatalf("expected a prompt for the file: %s", body)
		}
	})

	t.Run("no ingredient list", func(t *testing.T) {
		req := datasheetRequest(t, app.url, "empty.txt", "   ", nil)
		_, body := b.do(req, true)
		if !strings.Contains(body, "No ingredient list was found in empty.txt.") {
			t.Fatalf("expected an extraction error: %s", body)
		}
	})

	t.Run("broken pdf", func(t *testing.T) {
		req := datasheetRequest(t, app.url, "sheet.pdf", "not a pdf", nil)
		_, body := b.do(req, true)
		if !strings.Contains(body, "The data sheet could not be read.") {
			t.Fatalf("expected a read error: %s", body)
		}
	})
}

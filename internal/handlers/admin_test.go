package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"switchmarket/internal/api"
	"switchmarket/internal/backendmock"
	"switchmarket/models"
)

func adminToken(t *testing.T, app *testApp) string {
	t.Helper()
	token, err := app.client.Login(context.Background(), api.Credentials{Email: backendmock.AdminEmail, Password: backendmock.DefaultPassword})
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	return token
}

func findUser(t *testing.T, users []models.User, email string) models.User {
	t.Helper()
	for _, user := range users {
		if user.Email == email {
			return user
		}
	}
	t.Fatalf("user %s not found", email)
	return models.User{}
}

func TestAdminChangeRole(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	token := adminToken(t, app)

	users, err := app.client.ListUsers(ctx, token)
	if err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	self := findUser(t, users, backendmock.AdminEmail)
	member := findUser(t, users, backendmock.UserEmail)

	b := app.browser(t)
	b.login(backendmock.AdminEmail)

	_, body := b.get("/admin/users", false)
	if strings.Contains(body, "/admin/users/"+self.ID+"/") {
		t.Fatal("expected no role controls for the signed-in administrator")
	}
	if !strings.Contains(body, "/admin/users/"+member.ID+"/promote") {
		t.Fatalf("expected a promote control for %s: %s", member.Email, body)
	}

	resp, _ := b.post("/admin/users/"+self.ID+"/demote", url.Values{}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a self demotion, got %d", resp.StatusCode)
	}

	resp, _ = b.post("/admin/users/"+member.ID+"/explode", url.Values{}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an unknown action, got %d", resp.StatusCode)
	}

	resp, body = b.post("/admin/users/"+member.ID+"/promote", url.Values{}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Role updated.") || !strings.Contains(body, "/admin/users/"+member.ID+"/demote") {
		t.Fatalf("expected the refreshed user table: %s", body)
	}

	users, err = app.client.ListUsers(ctx, token)
	if err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if !findUser(t, users, backendmock.UserEmail).IsAdmin() {
		t.Fatal("expected the member to be promoted")
	}
}

func TestAdminProducts(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login(backendmock.AdminEmail)

	resp, body := b.get("/admin/products", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	for _, name := range []string{"Gentle Shampoo", "Shea Body Cream", "Citrus Deodorant", "Organic Lip Balm"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %q in the product table: %s", name, body)
		}
	}
	if strings.Contains(body, ">Next</a>") {
		t.Fatal("expected no next page for a short catalogue")
	}

	_, body = b.get("/admin/products?q=deodorant", false)
	if !strings.Contains(body, "Citrus Deodorant") || strings.Contains(body, "Gentle Shampoo") {
		t.Fatalf("expected the listing to be filtered: %s", body)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	b := app.browser(t)
	b.login(backendmock.AdminEmail)

	resp, body := b.post("/admin/products/new", url.Values{"brand": {"Lavo"}}, false)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "A product name is required.") {
		t.Fatalf("expected a validation message: %s", body)
	}

	resp, _ = b.post("/admin/products/new", url.Values{
		"name":        {"Rose Toner"},
		"brand":       {"Lavo"},
		"ingredients": {"Aqua (90%), Rose Water"},
		"labels":      {"vegan, organic"},
		"natural":     {"97"},
	}, false)
	expectRedirect(t, resp, "/admin/products")

	page, err := app.client.ListProducts(ctx, api.ProductQuery{All: "rose toner"})
	if err != nil || len(page.Products) != 1 {
		t.Fatalf("expected the created product to be listed, got %v (err %v)", page.Products, err)
	}
	created := page.Products[0]
	if created.Natural() != 97 || len(created.Ingredients) != 2 || len(created.LabelTags) != 2 {
		t.Fatalf("unexpected created product %+v", created)
	}

	resp, body = b.get("/admin/products/p2/edit", false)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="Shea Body Cream"`) {
		t.Fatalf("expected the edit form, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = b.post("/admin/products/p2/edit", url.Values{
		"name":        {"Shea Cream"},
		"brand":       {"Botanica"},
		"ingredients": {"Aqua (55%), Shea Butter (20%)"},
	}, false)
	expectRedirect(t, resp, "/admin/products")

	updated, err := app.client.GetProduct(ctx, "p2")
	if err != nil {
		t.Fatalf("failed to load the updated product: %v", err)
	}
	if updated.Name != "Shea Cream" {
		t.Fatalf("expected the new name, got %q", updated.Name)
	}
	if len(updated.Additives) != 1 || updated.Additives[0].Tag != "en:e307" {
		t.Fatalf("expected the stored additives to be kept, got %+v", updated.Additives)
	}

	resp, _ = b.get("/admin/products/missing/edit", false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}

	resp, body = b.post("/admin/products/p3/delete", url.Values{}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("HX-Reswap") != "" {
		t.Fatal("expected the row to be swapped out")
	}
	if !strings.Contains(body, "Product deleted.") {
		t.Fatalf("expected an out of band toast: %s", body)
	}
	if _, err := app.client.GetProduct(ctx, "p3"); !api.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected the product to be gone, got %v", err)
	}

	resp, _ = b.post("/admin/products/p3/delete", url.Values{}, true)
	if resp.Header.Get("HX-Reswap") != "none" {
		t.Fatal("expected a failed deletion to keep the row")
	}
}

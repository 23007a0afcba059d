package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"switchmarket/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "::not a url"}); err == nil {
		t.Fatal("expected error for invalid base url")
	}
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient() with defaults error = %v", err)
	}
	if client.BaseURL() != defaultBaseURL {
		t.Fatalf("BaseURL() = %q, want default", client.BaseURL())
	}
}

func TestListProductsSendsQueryAndNormalizes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("all") != "cream" || q.Get("page") != "2" || q.Get("limit") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"result": true,
			"products": []map[string]any{{
				"_id":               "p1",
				"name":              "  Hydra Cream ",
				"brand":             "Aqualis",
				"barcode":           "3600000000001",
				"ingredients":       []map[string]any{{"text": "Aqua", "percent": 70}, {"text": " ", "percent": 1}},
				"labeltags":         []string{"vegan", ""},
				"naturalPercentage": 80,
			}},
			"pagination": map[string]int{"total": 11, "page": 2, "limit": 10, "pages": 2},
		})
	})

	page, err := client.ListProducts(context.Background(), ProductQuery{All: "cream", Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}

	want := []models.Product{{
		ID:                "p1",
		Name:              "Hydra Cream",
		Brand:             "Aqualis",
		EAN:               "3600000000001",
		Ingredients:       []models.Ingredient{{Text: "Aqua", Percent: 70}},
		Additives:         []models.Additive{},
		LabelTags:         []string{"vegan"},
		NaturalPercentage: models.Percent(80),
		Effects:           []models.EffectRecord{},
	}}
	if diff := cmp.Diff(want, page.Products); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
	if page.Pagination == nil || page.Pagination.Pages != 2 {
		t.Fatalf("expected pagination metadata, got %+v", page.Pagination)
	}
}

func TestListProductsTreatsMissingResultAsEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"result": false, "products": []map[string]any{{"id": "ignored"}}})
	})

	page, err := client.ListProducts(context.Background(), ProductQuery{All: "x", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(page.Products) != 0 {
		t.Fatalf("expected empty product list, got %d", len(page.Products))
	}
}

func TestErrorsCarryServerMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{"result": false, "message": "admins only"})
	})

	err := client.DeleteProduct(context.Background(), "token", "p1")
	if !IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403 api error, got %v", err)
	}
	if got := Message(err, "fallback"); got != "admins only" {
		t.Fatalf("Message() = %q", got)
	}
}

func TestErrorsFallBackToStatusText(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListLabels(context.Background())
	if got := Message(err, "fallback"); got != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("Message() = %q", got)
	}
}

func TestMeSendsBearerToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"result": false, "message": "invalid token"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"result": true,
			"user":   map[string]any{"id": "u1", "username": "ada", "role": "admin"},
		})
	})

	user, err := client.Me(context.Background(), "secret")
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if user.Username != "ada" || !user.IsAdmin() {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := client.Me(context.Background(), "wrong"); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 for bad token, got %v", err)
	}
}

func TestLoginRequiresToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode credentials: %v", err)
		}
		if creds.Password == "good" {
			writeJSON(t, w, http.StatusOK, map[string]any{"result": true, "token": "tok"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"result": false, "message": "wrong password"})
	})

	token, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "good"})
	if err != nil || token != "tok" {
		t.Fatalf("Login() = %q, %v", token, err)
	}
	if _, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "bad"}); Message(err, "") != "wrong password" {
		t.Fatalf("expected wrong password error, got %v", err)
	}
}

func TestSearchEffectsEncodesQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/effects/search" || r.URL.Query().Get("query") != "Aloe Vera" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"result":  true,
			"effects": []map[string]any{{"functions": "Soothing", "eco_score": 7, "toxicity_score": 1, "ingredient": "Aloe Vera", "percent": 2}},
		})
	})

	effects, err := client.SearchEffects(context.Background(), "Aloe Vera")
	if err != nil {
		t.Fatalf("SearchEffects() error = %v", err)
	}
	want := []models.EffectRecord{{Functions: "Soothing", EcoScore: 7, ToxicityScore: 1, Ingredient: "Aloe Vera", Percent: 2}}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewContributionValidatesStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	if _, err := client.ReviewContribution(context.Background(), "tok", "c1", ContributionReview{Status: "maybe"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

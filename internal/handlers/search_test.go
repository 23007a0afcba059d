package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSearchAccumulatesPages(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, body := b.get("/search", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	for _, token := range []string{"<html", "2 of 2 loaded products", "Gentle Shampoo", "Load more"} {
		if !strings.Contains(body, token) {
			t.Fatalf("expected %q in search page: %s", token, body)
		}
	}
	if got := resp.Header.Get("HX-Replace-Url"); got != "" {
		t.Fatalf("expected no url update for the first page, got %q", got)
	}

	resp, body = b.get("/search/more?state=", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "<html") {
		t.Fatal("expected a fragment for htmx requests")
	}
	if !strings.Contains(body, "4 of 4 loaded products") {
		t.Fatalf("expected both pages to be shown: %s", body)
	}
	if strings.Contains(body, "Load more") {
		t.Fatal("expected load more to disappear once the listing is exhausted")
	}
	if got := resp.Header.Get("HX-Replace-Url"); got != "/search?page=2" {
		t.Fatalf("expected url to record page 2, got %q", got)
	}

	resp, body = b.get("/search/more?state=page%3D2", true)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "4 of 4 loaded products") {
		t.Fatalf("expected an exhausted listing to stay unchanged, got %d: %s", resp.StatusCode, body)
	}
}

func TestSearchRestoresSharedPage(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, body := b.get("/search?page=2&brand=Aqualis", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "2 of 4 loaded products") {
		t.Fatalf("expected every page up to 2 with the brand filter applied: %s", body)
	}
	if strings.Contains(body, "Shea Body Cream") {
		t.Fatal("expected other brands to be filtered out")
	}
}

func TestSearchMoreWithoutHTMXRedirects(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	b.get("/search", false)
	resp, _ := b.get("/search/more?state=q%3D", false)
	expectRedirect(t, resp, "/search?page=2")
}

func TestSearchFilters(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.get("/search", false)
	b.get("/search/more?state=", true)

	resp, body := b.post("/search/filters", url.Values{
		"state":   {"page=2"},
		"action":  {"toggle"},
		"kind":    {"brand"},
		"value":   {"Botanica"},
		"checked": {"true"},
	}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("HX-Replace-Url"); got != "/search?brand=Botanica&page=2" {
		t.Fatalf("unexpected url update %q", got)
	}
	if !strings.Contains(body, `id="search-panel"`) || !strings.Contains(body, "2 of 4 loaded products") {
		t.Fatalf("expected the filtered panel: %s", body)
	}
	if strings.Contains(body, "Gentle Shampoo") {
		t.Fatal("expected Aqualis products to be hidden")
	}

	resp, body = b.post("/search/filters", url.Values{
		"state":  {"brand=Botanica&page=2"},
		"action": {"sort"},
		"sort":   {"natural-high"},
	}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Replace-Url"); got != "/search?brand=Botanica&page=2&sort=natural-high" {
		t.Fatalf("unexpected url update %q", got)
	}
	if strings.Index(body, "Shea Body Cream") > strings.Index(body, "Organic Lip Balm") {
		t.Fatal("expected the product with a natural share to come first")
	}

	resp, _ = b.post("/search/filters", url.Values{
		"state":  {"brand=Botanica&page=2&sort=natural-high"},
		"action": {"clear"},
	}, true)
	if got := resp.Header.Get("HX-Replace-Url"); got != "/search?page=2&sort=natural-high" {
		t.Fatalf("unexpected url after clearing %q", got)
	}
}

func TestSearchFiltersQueryResetsPaging(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.get("/search", false)
	b.get("/search/more?state=", true)

	resp, body := b.post("/search/filters", url.Values{
		"state":  {"page=2"},
		"action": {"query"},
		"q":      {"shea"},
	}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Replace-Url"); got != "/search?q=shea" {
		t.Fatalf("unexpected url update %q", got)
	}
	if !strings.Contains(body, "2 of 2 loaded products") {
		t.Fatalf("expected a fresh listing for the new query: %s", body)
	}
}

func TestSearchFiltersRejectsBadInput(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "unknown kind", form: url.Values{"action": {"toggle"}, "kind": {"colour"}, "value": {"red"}}},
		{name: "unknown action", form: url.Values{"action": {"explode"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := b.post("/search/filters", tc.form, true)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.StatusCode)
			}
		})
	}

	resp, _ := b.get("/search/filters", false)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", resp.StatusCode)
	}
}

func TestSearchRetriesFailedPage(t *testing.T) {
	var calls atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			http.NotFound(w, r)
			return
		}
		// one attempt plus one retry fail, the next load succeeds
		if calls.Add(1) <= 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"result":false,"message":"catalogue offline"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":true,"products":[{"id":"p9","name":"Retry Soap","brand":"Lavo"}],"pagination":{"total":1,"page":1,"limit":2,"pages":1}}`)
	}))
	t.Cleanup(failing.Close)

	app := newTestAppWithAPI(t, failing.URL)
	b := app.browser(t)

	resp, body := b.get("/search", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "catalogue offline") || !strings.Contains(body, "Retry") {
		t.Fatalf("expected error with a retry control: %s", body)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected one retry before giving up, got %d calls", got)
	}

	resp, body = b.get("/search/more?state=", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Retry Soap") || strings.Contains(body, "catalogue offline") {
		t.Fatalf("expected the retried page to replace the error: %s", body)
	}
}

func TestNormalizeRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lo, hi string
		want   []string
	}{
		{"20", "80", []string{"20", "80"}},
		{"80", "20", []string{"20", "80"}},
		{"abc", "20", []string{"abc", "20"}},
		{" 5", "5", []string{" 5", "5"}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, normalizeRange(tc.lo, tc.hi)); diff != "" {
			t.Fatalf("normalizeRange(%q, %q) mismatch (-want +got):\n%s", tc.lo, tc.hi, diff)
		}
	}
}

func TestURLRecorderKeepsLastTarget(t *testing.T) {
	t.Parallel()

	var rec urlRecorder
	rec.ReplaceURL("/search?page=2")
	rec.ReplaceURL("/search?page=3")
	if got := rec.Target(); got != "/search?page=3" {
		t.Fatalf("expected last target, got %q", got)
	}
}

package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestHomeRendersSections(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, body := b.get("/", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	for _, token := range []string{"What is really in your cosmetics?", "Additives to know", "<h2>News</h2>"} {
		if !strings.Contains(body, token) {
			t.Fatalf("expected %q on the landing page: %s", token, body)
		}
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestHomeUnknownPathIsNotFound(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, body := b.get("/nowhere", false)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "This page does not exist.") {
		t.Fatalf("expected not found page: %s", body)
	}
}

func TestHomeWithoutAPIStillRenders(t *testing.T) {
	app := newTestAppWithAPI(t, "http://127.0.0.1:1")
	b := app.browser(t)

	resp, body := b.get("/", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "No news yet.") {
		t.Fatalf("expected empty sections when the api is unreachable: %s", body)
	}
}

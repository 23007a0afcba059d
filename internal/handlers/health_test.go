package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.get("/search", false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Time.IsZero() {
		t.Fatalf("unexpected health response %+v", resp)
	}
	if resp.API != app.client.BaseURL() {
		t.Fatalf("expected api %q, got %q", app.client.BaseURL(), resp.API)
	}
	if resp.Searches != 1 {
		t.Fatalf("expected one search session, got %d", resp.Searches)
	}
}

func TestHealthRejectsPost(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", w.Code)
	}
}

package obf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"switchmarket/models"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]models.ImageLookup
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]models.ImageLookup{}}
}

func (c *memoryCache) Get(_ context.Context, ean string) (models.ImageLookup, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lookup, ok := c.entries[ean]
	return lookup, ok, nil
}

func (c *memoryCache) Put(_ context.Context, lookup models.ImageLookup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[lookup.EAN] = lookup
	return nil
}

func TestPatternURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ean  string
		want string
		ok   bool
	}{
		{name: "ean13", ean: "3600523614455", want: "https://img.test/images/products/360/052/361/4455/front_fr.3.400.jpg", ok: true},
		{name: "short", ean: "12345678", want: "https://img.test/images/products/12345678/front_fr.3.400.jpg", ok: true},
		{name: "not digits", ean: "abc", ok: false},
		{name: "empty", ean: " ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := PatternURL("https://img.test/", tt.ean)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("PatternURL(%q) = %q, %v; want %q, %v", tt.ean, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveUsesProductImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/product/3600523614455.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":1,"product":{"image_front_url":"https://img.test/front.jpg"}}`))
	}))
	t.Cleanup(srv.Close)

	cache := newMemoryCache()
	r := NewResolver(Config{BaseURL: srv.URL, ImageBaseURL: srv.URL}, cache)

	got := r.Resolve(context.Background(), "3600523614455")
	if got != "https://img.test/front.jpg" {
		t.Fatalf("unexpected image %q", got)
	}
	if cache.entries["3600523614455"].Source != models.ImageSourceOBF {
		t.Fatalf("expected cached obf lookup, got %+v", cache.entries["3600523614455"])
	}
}

func TestResolveFallsBackToProbedPattern(t *testing.T) {
	t.Parallel()

	var heads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead && r.URL.Path == "/images/products/360/052/361/4455/front_fr.3.400.jpg" {
			heads.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"status":0}`))
	}))
	t.Cleanup(srv.Close)

	r := NewResolver(Config{BaseURL: srv.URL, ImageBaseURL: srv.URL}, nil)
	want := srv.URL + "/images/products/360/052/361/4455/front_fr.3.400.jpg"
	if got := r.Resolve(context.Background(), "3600523614455"); got != want {
		t.Fatalf("unexpected image %q", got)
	}
	if heads.Load() != 1 {
		t.Fatalf("expected one probe, got %d", heads.Load())
	}
}

func TestResolvePlaceholderAndCacheTTL(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	cache := newMemoryCache()
	r := NewResolver(Config{BaseURL: srv.URL, ImageBaseURL: srv.URL, CacheTTL: time.Hour}, cache)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	if got := r.Resolve(context.Background(), "3600523614455"); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	first := calls.Load()

	r.Resolve(context.Background(), "3600523614455")
	if calls.Load() != first {
		t.Fatal("fresh cache entry must not hit the network")
	}

	now = now.Add(2 * time.Hour)
	r.Resolve(context.Background(), "3600523614455")
	if calls.Load() == first {
		t.Fatal("stale cache entry must be refreshed")
	}

	if got := r.Resolve(context.Background(), ""); got != Placeholder {
		t.Fatalf("empty barcode should map to the placeholder, got %q", got)
	}
}

func TestResolveDoesNotCacheTransientFailures(t *testing.T) {
	t.Parallel()

	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if gets.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":1,"product":{"image_front_url":"https://img.test/front.jpg"}}`))
	}))
	t.Cleanup(srv.Close)

	cache := newMemoryCache()
	r := NewResolver(Config{BaseURL: srv.URL, ImageBaseURL: srv.URL}, cache)

	if got := r.Resolve(context.Background(), "3600523614455"); got != Placeholder {
		t.Fatalf("expected placeholder while the service is down, got %q", got)
	}
	if _, ok := cache.entries["3600523614455"]; ok {
		t.Fatal("a failed lookup must not be cached")
	}

	if got := r.Resolve(context.Background(), "3600523614455"); got != "https://img.test/front.jpg" {
		t.Fatalf("expected the product image once the service recovers, got %q", got)
	}
	if cache.entries["3600523614455"].Source != models.ImageSourceOBF {
		t.Fatalf("expected cached obf lookup, got %+v", cache.entries["3600523614455"])
	}
}

func TestResolveWithCancelledContextIsNotCached(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	cache := newMemoryCache()
	r := NewResolver(Config{BaseURL: srv.URL, ImageBaseURL: srv.URL}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := r.Resolve(ctx, "3600523614455"); got != Placeholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if len(cache.entries) != 0 {
		t.Fatalf("expected nothing cached, got %+v", cache.entries)
	}
}

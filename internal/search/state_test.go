package search

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"switchmarket/internal/filters"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingWriter struct {
	mu   sync.Mutex
	urls []string
}

func (w *recordingWriter) ReplaceURL(target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.urls = append(w.urls, target)
}

func (w *recordingWriter) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.urls...)
}

func TestInitWaitsForParams(t *testing.T) {
	t.Parallel()

	m := NewStateManager("/search", nil, time.Hour)
	if m.Init(nil) {
		t.Fatal("expected init to wait for params")
	}
	if m.Ready() {
		t.Fatal("manager should not be ready")
	}

	if !m.Init(url.Values{"brand": {"Aqualis"}, "sort": {"natural-high"}}) {
		t.Fatal("expected init to succeed")
	}
	if !m.IsFilterActive(filters.KindBrand, "Aqualis") {
		t.Fatal("expected brand from URL")
	}

	// A second init must not overwrite the state.
	m.Init(url.Values{"brand": {"Other"}})
	if m.IsFilterActive(filters.KindBrand, "Other") {
		t.Fatal("state was parsed twice")
	}
	if m.Sort() != filters.SortNaturalHigh {
		t.Fatalf("unexpected sort %q", m.Sort())
	}
}

func TestRapidChangesWriteOnce(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	m := NewStateManager("/search", w, time.Hour)
	m.Init(url.Values{})

	m.Toggle(filters.KindBrand, true, "Aqualis")
	m.Toggle(filters.KindLabel, true, "vegan")
	m.SetSort(filters.SortChemicalLow)

	if got := w.written(); len(got) != 0 {
		t.Fatalf("expected no write before the window, got %v", got)
	}
	if !m.Flush() {
		t.Fatal("expected a pending write")
	}

	got := w.written()
	if len(got) != 1 {
		t.Fatalf("expected exactly one write, got %v", got)
	}
	want := "/search?brand=Aqualis&label=vegan&sort=chemical-low"
	if got[0] != want {
		t.Fatalf("unexpected URL\nwant %s\ngot  %s", want, got[0])
	}
}

func TestDebouncedWriteFiresAfterWindow(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	m := NewStateManager("/search", w, 10*time.Millisecond)
	m.Init(url.Values{})
	m.SetQuery("shampoo")

	deadline := time.Now().Add(time.Second)
	for len(w.written()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := w.written(); len(got) != 1 || got[0] != "/search?q=shampoo" {
		t.Fatalf("unexpected writes %v", got)
	}
}

func TestSetQueryResetsPage(t *testing.T) {
	t.Parallel()

	m := NewStateManager("/search", nil, time.Hour)
	m.Init(url.Values{"q": {"soap"}, "page": {"3"}})

	m.SetQuery("soap")
	if m.Query().Page != 3 {
		t.Fatal("same query must keep the page")
	}
	m.SetQuery("cream")
	if m.Query().Page != 1 {
		t.Fatalf("expected page reset, got %d", m.Query().Page)
	}
}

func TestClearAndStop(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	m := NewStateManager("/search", w, time.Hour)
	m.Init(url.Values{"brand": {"Aqualis"}, "naturalMin": {"20"}, "naturalMax": {"80"}})

	if !m.IsFilterActive(filters.KindNaturalPercentage, "20-80") {
		t.Fatal("expected range from URL")
	}
	m.Clear()
	if !m.Filters().Empty() {
		t.Fatal("expected empty filters")
	}
	m.Stop()
	if m.Flush() {
		t.Fatal("stopped manager must not have a pending write")
	}
	if got := w.written(); len(got) != 0 {
		t.Fatalf("unexpected writes %v", got)
	}
}

package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"switchmarket/internal/api"
	"switchmarket/internal/filters"
	"switchmarket/models"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   []api.ProductQuery
	respond func(q api.ProductQuery) (api.ProductPage, error)
}

func (s *fakeSource) ListProducts(_ context.Context, q api.ProductQuery) (api.ProductPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	s.mu.Unlock()
	return s.respond(q)
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func productsFor(query string, page, n int) []models.Product {
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Product{ID: fmt.Sprintf("%s-%d-%d", query, page, i)})
	}
	return out
}

func pagedSource(pages int) *fakeSource {
	return &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		if q.Page > pages {
			return api.ProductPage{Products: []models.Product{}}, nil
		}
		return api.ProductPage{
			Products:   productsFor(q.All, q.Page, 2),
			Pagination: &models.Pagination{Page: q.Page, Limit: q.Limit, Pages: pages},
		}, nil
	}}
}

func testConfig() FetcherConfig {
	return FetcherConfig{PageSize: 2, MaxRetries: 3, RetryDelay: time.Millisecond}
}

func TestLoadSamePageFetchesOnce(t *testing.T) {
	t.Parallel()

	src := pagedSource(3)
	f := NewFetcher(src, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.Load(ctx, 1, "soap"); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if got := src.count(); got != 1 {
		t.Fatalf("expected one network call, got %d", got)
	}
	if diff := cmp.Diff([]string{"soap::1"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := src.calls[0]; got.All != "soap" || got.Page != 1 || got.Limit != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestConcurrentLoadsAreCoalesced(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var calls atomic.Int32
	src := &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		calls.Add(1)
		<-release
		return api.ProductPage{Products: productsFor(q.All, q.Page, 2)}, nil
	}}
	f := NewFetcher(src, testConfig())
	f.Reset("soap")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.Load(context.Background(), 1, "soap")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one call, got %d", got)
	}
	if got := len(f.State().Products); got != 2 {
		t.Fatalf("products appended more than once: %d", got)
	}
}

func TestPagesAccumulate(t *testing.T) {
	t.Parallel()

	f := NewFetcher(pagedSource(2), testConfig())
	ctx := context.Background()

	if err := f.Load(ctx, 1, "soap"); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if !f.State().HasMore {
		t.Fatal("expected more pages")
	}
	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("page 2: %v", err)
	}

	state := f.State()
	if state.Page != 2 || state.HasMore {
		t.Fatalf("unexpected state page=%d hasMore=%v", state.Page, state.HasMore)
	}
	var ids []string
	for _, p := range state.Products {
		ids = append(ids, p.ID)
	}
	want := []string{"soap-1-0", "soap-1-1", "soap-2-0", "soap-2-1"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestHasMoreFallsBackToPageSize(t *testing.T) {
	t.Parallel()

	src := &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		return api.ProductPage{Products: productsFor(q.All, q.Page, 1)}, nil
	}}
	f := NewFetcher(src, testConfig())
	if err := f.Load(context.Background(), 1, ""); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.State().HasMore {
		t.Fatal("a short page without pagination means no more results")
	}
}

func TestEmptyFirstPageClearsProducts(t *testing.T) {
	t.Parallel()

	f := NewFetcher(pagedSource(0), testConfig())
	if err := f.Load(context.Background(), 1, "nothing"); err != nil {
		t.Fatalf("load: %v", err)
	}
	state := f.State()
	if state.Products == nil || len(state.Products) != 0 {
		t.Fatalf("expected an empty list, got %#v", state.Products)
	}
	if state.HasMore {
		t.Fatal("expected hasMore=false")
	}
}

func TestQueryChangeResets(t *testing.T) {
	t.Parallel()

	src := pagedSource(3)
	f := NewFetcher(src, testConfig())
	ctx := context.Background()

	_ = f.Load(ctx, 1, "soap")
	_ = f.Load(ctx, 2, "soap")
	if err := f.Load(ctx, 2, "cream"); err != nil {
		t.Fatalf("load: %v", err)
	}

	state := f.State()
	if state.Query != "cream" || state.Page != 1 {
		t.Fatalf("expected first page of the new query, got %q page %d", state.Query, state.Page)
	}
	if diff := cmp.Diff([]string{"cream::1"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if state.Products[0].ID != "cream-1-0" {
		t.Fatalf("stale products kept: %v", state.Products[0].ID)
	}
}

func TestFailuresRetryThreeTimesThenReport(t *testing.T) {
	t.Parallel()

	src := &fakeSource{respond: func(api.ProductQuery) (api.ProductPage, error) {
		return api.ProductPage{}, errors.New("connection refused")
	}}
	f := NewFetcher(src, testConfig())

	err := f.Load(context.Background(), 1, "soap")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := src.count(); got != 4 {
		t.Fatalf("expected 1 attempt + 3 retries, got %d calls", got)
	}

	state := f.State()
	if state.RetryCount != 3 {
		t.Fatalf("expected retry count 3, got %d", state.RetryCount)
	}
	if state.Error != "connection refused" {
		t.Fatalf("unexpected error %q", state.Error)
	}
	if state.IsLoading {
		t.Fatal("loading flag left set")
	}
	if len(f.Keys()) != 0 {
		t.Fatal("failed key must not be marked loaded")
	}
}

func TestRetrySucceedsAndResetsCounter(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	src := &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		if attempts.Add(1) < 3 {
			return api.ProductPage{}, errors.New("timeout")
		}
		return api.ProductPage{Products: productsFor(q.All, q.Page, 2)}, nil
	}}
	f := NewFetcher(src, testConfig())

	if err := f.Load(context.Background(), 1, "soap"); err != nil {
		t.Fatalf("load: %v", err)
	}
	state := f.State()
	if state.RetryCount != 0 || state.Error != "" || len(state.Products) != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestCancelledContextStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{respond: func(api.ProductQuery) (api.ProductPage, error) {
		cancel()
		return api.ProductPage{}, errors.New("aborted")
	}}
	f := NewFetcher(src, FetcherConfig{PageSize: 2, MaxRetries: 3, RetryDelay: time.Hour})

	err := f.Load(ctx, 1, "soap")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := src.count(); got != 1 {
		t.Fatalf("expected no retry after cancellation, got %d calls", got)
	}
}

func TestVisibleFiltersAccumulatedProducts(t *testing.T) {
	t.Parallel()

	src := &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		return api.ProductPage{Products: []models.Product{
			{ID: "a", Brand: "Aqualis", NaturalPercentage: models.Percent(20)},
			{ID: "b", Brand: "Botanica", NaturalPercentage: models.Percent(90)},
			{ID: "c", Brand: "Aqualis", NaturalPercentage: models.Percent(60)},
		}}, nil
	}}
	f := NewFetcher(src, FetcherConfig{PageSize: 10})
	if err := f.Load(context.Background(), 1, ""); err != nil {
		t.Fatalf("load: %v", err)
	}

	state := filters.State{}.Toggle(filters.KindBrand, true, "Aqualis")
	visible := f.Visible(state, filters.SortNaturalHigh)
	got := make([]string, 0, len(visible))
	for _, product := range visible {
		got = append(got, product.ID)
	}
	if diff := cmp.Diff([]string{"c", "a"}, got); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if len(f.State().Products) != 3 {
		t.Fatal("filtering must not change the accumulated list")
	}
}

func productIDs(products []models.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestConcurrentPagesLandInOrder(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	src := &fakeSource{respond: func(q api.ProductQuery) (api.ProductPage, error) {
		if q.Page == 2 {
			close(started)
			time.Sleep(50 * time.Millisecond)
		}
		return api.ProductPage{
			Products:   productsFor(q.All, q.Page, 2),
			Pagination: &models.Pagination{Page: q.Page, Limit: q.Limit, Pages: 4},
		}, nil
	}}
	f := NewFetcher(src, testConfig())
	ctx := context.Background()
	if err := f.Load(ctx, 1, "x"); err != nil {
		t.Fatalf("page 1: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = f.Load(ctx, 2, "x")
	}()
	<-started
	go func() {
		defer wg.Done()
		_ = f.Load(ctx, 3, "x")
	}()
	wg.Wait()

	state := f.State()
	want := []string{"x-1-0", "x-1-1", "x-2-0", "x-2-1", "x-3-0", "x-3-1"}
	if diff := cmp.Diff(want, productIDs(state.Products)); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
	if state.Page != 3 || !state.HasMore {
		t.Fatalf("unexpected state page=%d hasMore=%v", state.Page, state.HasMore)
	}

	before := src.count()
	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("load more: %v", err)
	}
	if got := src.count() - before; got != 1 {
		t.Fatalf("expected load more to fetch page 4, got %d calls", got)
	}
	if got := f.State().Page; got != 4 {
		t.Fatalf("expected page 4, got %d", got)
	}
}

func TestPageAheadOfSequenceIsSkipped(t *testing.T) {
	t.Parallel()

	src := pagedSource(3)
	f := NewFetcher(src, testConfig())
	ctx := context.Background()

	if err := f.Load(ctx, 1, "soap"); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if err := f.Load(ctx, 3, "soap"); err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if got := src.count(); got != 1 {
		t.Fatalf("expected page 3 not to be requested, got %d calls", got)
	}
	if diff := cmp.Diff([]string{"soap::1"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("load more: %v", err)
	}
	if diff := cmp.Diff([]string{"soap::1", "soap::2"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryCountRestartsOnEachLoad(t *testing.T) {
	t.Parallel()

	src := &fakeSource{respond: func(api.ProductQuery) (api.ProductPage, error) {
		return api.ProductPage{}, errors.New("connection refused")
	}}
	f := NewFetcher(src, testConfig())

	for attempt := 1; attempt <= 2; attempt++ {
		if err := f.Load(context.Background(), 1, "soap"); err == nil {
			t.Fatal("expected an error")
		}
		if got := src.count(); got != 4*attempt {
			t.Fatalf("attempt %d: expected %d calls, got %d", attempt, 4*attempt, got)
		}
		if got := f.State().RetryCount; got != 3 {
			t.Fatalf("attempt %d: expected retry count 3, got %d", attempt, got)
		}
	}
}

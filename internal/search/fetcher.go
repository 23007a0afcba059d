package search

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"switchmarket/internal/api"
	"switchmarket/internal/filters"
	applog "switchmarket/internal/log"
	"switchmarket/models"
)

// Fetcher defaults.
const (
	DefaultPageSize   = 10
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// ProductSource serves pages of the product listing.
type ProductSource interface {
	ListProducts(ctx context.Context, q api.ProductQuery) (api.ProductPage, error)
}

// FetcherConfig tunes paging and retries.
type FetcherConfig struct {
	PageSize   int
	MaxRetries int
	RetryDelay time.Duration
}

// FetchState is the accumulated result of the pages loaded for a query.
type FetchState struct {
	Query      string
	Products   []models.Product
	Page       int
	HasMore    bool
	IsLoading  bool
	Error      string
	RetryCount int
}

// Fetcher loads product pages for one search view and accumulates them. Each
// (query, page) pair is fetched at most once; failed fetches are retried with a
// fixed delay before the error is reported. Pages are fetched one at a time and
// only the page following the last loaded one is accepted, so products always
// accumulate in page order.
type Fetcher struct {
	source ProductSource
	cfg    FetcherConfig
	group  singleflight.Group
	memo   filters.Memo
	// slot serialises page fetches.
	slot chan struct{}

	mu         sync.Mutex
	state      FetchState
	loaded     map[string]struct{}
	inflight   int
	generation uint64
}

// NewFetcher returns a Fetcher reading from source. A zero page size and negative
// retry settings take the defaults.
func NewFetcher(source ProductSource, cfg FetcherConfig) *Fetcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Fetcher{
		source: source,
		cfg:    cfg,
		slot:   make(chan struct{}, 1),
		state:  FetchState{Products: []models.Product{}, HasMore: true},
		loaded: make(map[string]struct{}),
	}
}

// PageKey identifies a page of a query in the loaded-page set.
func PageKey(query string, page int) string {
	return query + "::" + strconv.Itoa(page)
}

// State returns a snapshot of the accumulated state.
func (f *Fetcher) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Visible returns the accumulated products narrowed by state and ordered by
// option. The result is reused until the products, filters or sort change.
func (f *Fetcher) Visible(state filters.State, option filters.SortOption) []models.Product {
	return f.memo.Apply(f.State().Products, state, option)
}

// Keys lists the loaded (query, page) keys, sorted.
func (f *Fetcher) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.loaded))
	for key := range f.loaded {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops everything accumulated and starts over for query.
func (f *Fetcher) Reset(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked(query)
}

func (f *Fetcher) resetLocked(query string) {
	f.generation++
	f.state = FetchState{Query: query, Products: []models.Product{}, HasMore: true}
	f.loaded = make(map[string]struct{})
}

// Load fetches page of query unless it was already loaded or does not follow the
// last loaded page. A query different from the current one resets the accumulated
// state and loads its first page instead.
func (f *Fetcher) Load(ctx context.Context, page int, query string) error {
	if page < 1 {
		page = 1
	}

	f.mu.Lock()
	if query != f.state.Query {
		f.resetLocked(query)
		page = 1
	}
	key := PageKey(query, page)
	if _, ok := f.loaded[key]; ok {
		f.mu.Unlock()
		applog.Debug(ctx, "product page already loaded", "key", key)
		return nil
	}
	generation := f.generation
	f.mu.Unlock()

	_, err, _ := f.group.Do(strconv.FormatUint(generation, 10)+"|"+key, func() (any, error) {
		return nil, f.fetch(ctx, generation, query, page)
	})
	return err
}

// LoadMore loads the page after the last loaded one when more are available.
func (f *Fetcher) LoadMore(ctx context.Context) error {
	state := f.State()
	if !state.HasMore || state.Error != "" {
		return nil
	}
	return f.Load(ctx, state.Page+1, state.Query)
}

func (f *Fetcher) fetch(ctx context.Context, generation uint64, query string, page int) error {
	key := PageKey(query, page)

	select {
	case f.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-f.slot }()

	f.mu.Lock()
	if generation != f.generation {
		f.mu.Unlock()
		return nil
	}
	if _, ok := f.loaded[key]; ok {
		f.mu.Unlock()
		return nil
	}
	if page != f.state.Page+1 {
		next := f.state.Page + 1
		f.mu.Unlock()
		applog.Debug(ctx, "skipping out of order product page", "key", key, "next", next)
		return nil
	}
	f.inflight++
	f.state.IsLoading = true
	f.state.Error = ""
	f.state.RetryCount = 0
	f.mu.Unlock()

	result, err := f.fetchWithRetry(ctx, generation, api.ProductQuery{All: query, Page: page, Limit: f.cfg.PageSize})

	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	if generation != f.generation {
		f.state.IsLoading = f.inflight > 0
		applog.Debug(ctx, "discarding stale product page", "key", key)
		return nil
	}
	f.state.IsLoading = f.inflight > 0

	if err != nil {
		f.state.Error = err.Error()
		applog.Error(ctx, "product page failed", "key", key, "retries", f.state.RetryCount, "error", err)
		return err
	}

	f.loaded[key] = struct{}{}
	f.apply(page, result)
	applog.Debug(ctx, "product page loaded", "key", key, "count", len(result.Products), "hasMore", f.state.HasMore)
	return nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, generation uint64, q api.ProductQuery) (api.ProductPage, error) {
	var result api.ProductPage

	operation := func() error {
		page, err := f.source.ListProducts(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(ctxErr)
			}
			return err
		}
		result = page
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.mu.Lock()
		if generation == f.generation {
			f.state.RetryCount++
		}
		retry := f.state.RetryCount
		f.mu.Unlock()
		applog.Warn(ctx, "retrying product page", "query", q.All, "page", q.Page, "retry", retry, "wait", wait.String(), "error", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.cfg.RetryDelay), uint64(f.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return api.ProductPage{}, err
	}
	return result, nil
}

// apply merges a successful page into the state. Callers hold f.mu.
func (f *Fetcher) apply(page int, result api.ProductPage) {
	f.state.Page = page
	f.state.RetryCount = 0
	f.state.Error = ""

	if len(result.Products) == 0 {
		if page == 1 {
			f.state.Products = []models.Product{}
		}
		f.state.HasMore = false
		return
	}

	if page == 1 {
		f.state.Products = result.Products
	} else {
		f.state.Products = append(slices.Clip(f.state.Products), result.Products...)
	}

	if p := result.Pagination; p != nil && p.Pages > 0 {
		f.state.HasMore = page < p.Pages
	} else {
		f.state.HasMore = len(result.Products) >= f.cfg.PageSize
	}
}

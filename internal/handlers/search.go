package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"switchmarket/internal/filters"
	applog "switchmarket/internal/log"
	"switchmarket/internal/search"
	"switchmarket/internal/views/pages"
)

const searchPath = "/search"

// Search renders the search page for the filters, sort, query and page held in
// the URL. Every page up to the requested one is loaded so a shared link shows
// the same list.
func Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	fetcher := searchFetcher(r)
	if fetcher == nil {
		http.Error(w, "search not available", http.StatusServiceUnavailable)
		return
	}

	recorder := &urlRecorder{}
	manager := search.NewStateManager(searchPath, recorder, debounceWindow)
	defer manager.Stop()
	manager.Init(r.URL.Query())

	if err := loadThrough(r.Context(), fetcher, manager.Query()); err != nil {
		applog.Warn(r.Context(), "search load failed", "query", manager.Query().Q, "error", err)
	}
	syncPage(manager, fetcher)
	view := searchView(r, manager.Query(), fetcher)
	flushURL(w, manager, recorder)

	if wantsFragment(r) {
		renderPage(w, r, pageMeta{}, pages.SearchPanel(view))
		return
	}
	renderPage(w, r, pageMeta{title: "Search", section: "search"}, pages.Search(view))
}

// SearchMore loads the next page of the current query, or retries the page that
// failed last, and renders the result list.
func SearchMore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	fetcher := searchFetcher(r)
	if fetcher == nil {
		http.Error(w, "search not available", http.StatusServiceUnavailable)
		return
	}

	recorder := &urlRecorder{}
	manager := search.NewStateManager(searchPath, recorder, debounceWindow)
	defer manager.Stop()
	manager.Init(stateFromRequest(r))
	q := manager.Query()

	state := fetcher.State()
	var err error
	switch {
	case state.Query != q.Q || (state.Page == 0 && state.Error == ""):
		err = loadThrough(r.Context(), fetcher, q)
	case state.Error != "":
		applog.Info(r.Context(), "retrying failed product page", "query", q.Q, "page", state.Page+1)
		err = fetcher.Load(r.Context(), state.Page+1, q.Q)
	default:
		err = fetcher.LoadMore(r.Context())
	}
	if err != nil {
		applog.Warn(r.Context(), "load more failed", "query", q.Q, "error", err)
	}
	syncPage(manager, fetcher)

	if !isHTMX(r) {
		redirect(w, r, manager.URL())
		return
	}
	view := searchView(r, manager.Query(), fetcher)
	flushURL(w, manager, recorder)
	renderPage(w, r, pageMeta{}, pages.SearchResults(view))
}

// SearchFilters applies a filter action posted by the sidebar and re-renders the
// search panel. The resulting URL is written back through HX-Replace-Url.
func SearchFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	fetcher := searchFetcher(r)
	if fetcher == nil {
		http.Error(w, "search not available", http.StatusServiceUnavailable)
		return
	}

	recorder := &urlRecorder{}
	manager := search.NewStateManager(searchPath, recorder, debounceWindow)
	defer manager.Stop()
	manager.Init(stateFromRequest(r))

	action := r.PostFormValue("action")
	switch action {
	case "toggle":
		kind, ok := filters.ParseKind(r.PostFormValue("kind"))
		if !ok {
			http.Error(w, "unknown filter kind", http.StatusBadRequest)
			return
		}
		checked, _ := strconv.ParseBool(r.PostFormValue("checked"))
		manager.Toggle(kind, checked, r.PostForm["value"]...)
	case "range":
		lo, hi := r.PostFormValue(filters.ParamNaturalMin), r.PostFormValue(filters.ParamNaturalMax)
		manager.Toggle(filters.KindNaturalPercentage, true, normalizeRange(lo, hi)...)
	case "clear":
		manager.Clear()
	case "sort":
		manager.SetSort(filters.ParseSort(r.PostFormValue(filters.ParamSort)))
	case "query":
		manager.SetQuery(strings.TrimSpace(r.PostFormValue(filters.ParamQuery)))
	default:
		http.Error(w, "unknown filter action", http.StatusBadRequest)
		return
	}
	applog.Debug(r.Context(), "search filters updated", "action", action, "url", manager.URL())

	if err := loadThrough(r.Context(), fetcher, manager.Query()); err != nil {
		applog.Warn(r.Context(), "search load failed", "query", manager.Query().Q, "error", err)
	}
	syncPage(manager, fetcher)

	if !isHTMX(r) {
		redirect(w, r, manager.URL())
		return
	}
	view := searchView(r, manager.Query(), fetcher)
	flushURL(w, manager, recorder)
	renderPage(w, r, pageMeta{}, pages.SearchPanel(view))
}

// searchFetcher returns the fetcher bound to the browser session, minting the
// session's search id on first use. Without sessions every request starts afresh.
func searchFetcher(r *http.Request) *search.Fetcher {
	if apiClient == nil {
		return nil
	}
	if sessionManager == nil || searches == nil {
		return search.NewFetcher(apiClient, search.FetcherConfig{
			PageSize:   search.DefaultPageSize,
			MaxRetries: search.DefaultMaxRetries,
			RetryDelay: search.DefaultRetryDelay,
		})
	}
	id := sessionManager.GetString(r.Context(), sessionSearchKey)
	if id == "" {
		id = search.NewSessionID()
		sessionManager.Put(r.Context(), sessionSearchKey, id)
	}
	return searches.Fetcher(id)
}

// loadThrough loads every page of q up to q.Page, stopping at the first failure
// or when the listing is exhausted. Loaded pages are not fetched again.
func loadThrough(ctx context.Context, fetcher *search.Fetcher, q filters.Query) error {
	last := max(q.Page, 1)
	for page := 1; page <= last; page++ {
		if err := fetcher.Load(ctx, page, q.Q); err != nil {
			return err
		}
		if !fetcher.State().HasMore {
			return nil
		}
	}
	return nil
}

// syncPage records the last loaded page in the URL state.
func syncPage(manager *search.StateManager, fetcher *search.Fetcher) {
	if page := fetcher.State().Page; page > 0 && page != manager.Query().Page {
		manager.SetPage(page)
	}
}

func searchView(r *http.Request, q filters.Query, fetcher *search.Fetcher) pages.SearchView {
	state := fetcher.State()
	visible := fetcher.Visible(q.State, q.Sort)

	options, err := search.LoadFilterOptions(r.Context(), apiClient)
	if err != nil {
		applog.Warn(r.Context(), "failed to load filter options", "error", err)
	}

	return pages.SearchView{
		Query:    q,
		Products: visible,
		Loaded:   len(state.Products),
		Images:   resolveImages(r.Context(), visible),
		Options:  options,
		Brands:   filters.BrandOptions(state.Products),
		HasMore:  state.HasMore,
		Error:    state.Error,
		Locale:   localeFor(r),
	}
}

// stateFromRequest reads the canonical query string carried in the "state" field.
func stateFromRequest(r *http.Request) url.Values {
	values, err := url.ParseQuery(r.FormValue("state"))
	if err != nil {
		applog.Debug(r.Context(), "ignoring malformed search state", "error", err)
		return url.Values{}
	}
	return values
}

// flushURL writes any pending URL update and sends it back to htmx.
func flushURL(w http.ResponseWriter, manager *search.StateManager, recorder *urlRecorder) {
	manager.Flush()
	if target := recorder.Target(); target != "" {
		w.Header().Set("HX-Replace-Url", target)
	}
}

// normalizeRange orders the bounds so "80" to "20" still means 20 to 80.
func normalizeRange(lo, hi string) []string {
	a, errA := strconv.Atoi(strings.TrimSpace(lo))
	b, errB := strconv.Atoi(strings.TrimSpace(hi))
	if errA == nil && errB == nil && a > b {
		return []string{hi, lo}
	}
	return []string{lo, hi}
}

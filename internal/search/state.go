// Package search drives the product search page: URL-synchronised filter state,
// paginated product fetching with retries and the filter sidebar options.
package search

import (
	"net/url"
	"sync"
	"time"

	"switchmarket/internal/debounce"
	"switchmarket/internal/filters"
)

// DefaultDebounceWindow is the delay before filter changes are written to the URL.
const DefaultDebounceWindow = 300 * time.Millisecond

// URLWriter replaces the current history entry with a new URL, without adding an
// entry or moving the scroll position.
type URLWriter interface {
	ReplaceURL(target string)
}

// URLWriterFunc adapts a function to URLWriter.
type URLWriterFunc func(target string)

// ReplaceURL calls f(target).
func (f URLWriterFunc) ReplaceURL(target string) {
	f(target)
}

// StateManager owns the active filters, sort option, query and page of a search
// view and mirrors them into the URL after a debounce window.
type StateManager struct {
	path      string
	writer    URLWriter
	debouncer *debounce.Debouncer

	mu    sync.Mutex
	ready bool
	query filters.Query
}

// NewStateManager returns a manager writing URLs for path through writer.
func NewStateManager(path string, writer URLWriter, window time.Duration) *StateManager {
	return &StateManager{
		path:      path,
		writer:    writer,
		debouncer: debounce.New(window),
		query:     filters.Query{Sort: filters.SortRelevance, Page: 1},
	}
}

// Init reads the state from URL parameters. It runs only once, and only when
// params are available; it reports whether the manager is initialised.
func (m *StateManager) Init(params url.Values) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return true
	}
	if params == nil {
		return false
	}
	m.query = filters.ParseSearch(params)
	m.ready = true
	return true
}

// Ready reports whether Init has consumed the URL parameters.
func (m *StateManager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Query returns a snapshot of the managed state.
func (m *StateManager) Query() filters.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// Filters returns the active filter state.
func (m *StateManager) Filters() filters.State {
	return m.Query().State
}

// Sort returns the active sort option.
func (m *StateManager) Sort() filters.SortOption {
	return m.Query().Sort
}

// URL returns the canonical URL of the current state.
func (m *StateManager) URL() string {
	return m.Query().URL(m.path)
}

// Toggle adds or removes filter values; see filters.State.Toggle.
func (m *StateManager) Toggle(kind filters.Kind, checked bool, values ...string) {
	m.update(func(q *filters.Query) {
		q.State = q.State.Toggle(kind, checked, values...)
	})
}

// Clear removes every active filter.
func (m *StateManager) Clear() {
	m.update(func(q *filters.Query) {
		q.State = q.State.Clear()
	})
}

// SetSort changes the sort option.
func (m *StateManager) SetSort(option filters.SortOption) {
	m.update(func(q *filters.Query) {
		q.Sort = filters.ParseSort(string(option))
	})
}

// SetQuery changes the search text and returns to the first page.
func (m *StateManager) SetQuery(text string) {
	m.update(func(q *filters.Query) {
		if q.Q != text {
			q.Q = text
			q.Page = 1
		}
	})
}

// SetPage records the last loaded page.
func (m *StateManager) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	m.update(func(q *filters.Query) {
		q.Page = page
	})
}

// IsFilterActive reports whether value is selected for kind.
func (m *StateManager) IsFilterActive(kind filters.Kind, value string) bool {
	return m.Filters().IsActive(kind, value)
}

// Flush writes a pending URL update immediately.
func (m *StateManager) Flush() bool {
	return m.debouncer.Flush()
}

// Stop discards a pending URL update.
func (m *StateManager) Stop() {
	m.debouncer.Stop()
}

func (m *StateManager) update(apply func(*filters.Query)) {
	m.mu.Lock()
	apply(&m.query)
	m.mu.Unlock()

	if m.writer == nil {
		return
	}
	m.debouncer.Trigger(func() {
		m.writer.ReplaceURL(m.URL())
	})
}

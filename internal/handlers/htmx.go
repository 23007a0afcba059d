package handlers

import (
	"net/http"
	"sync"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsFragment reports whether the response should be a partial. Boosted
// navigation swaps the whole body and needs the full document.
func wantsFragment(r *http.Request) bool {
	return isHTMX(r) && r.Header.Get("HX-Boosted") != "true"
}

// urlRecorder keeps the last URL a search.StateManager asked to write, so it can
// be sent back as HX-Replace-Url.
type urlRecorder struct {
	mu     sync.Mutex
	target string
}

func (u *urlRecorder) ReplaceURL(target string) {
	u.mu.Lock()
	u.target = target
	u.mu.Unlock()
}

func (u *urlRecorder) Target() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.target
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "switchmarket/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Time     time.Time `json:"time"`
	API      string    `json:"api,omitempty"`
	Searches int       `json:"searches"`
}

// Health reports liveness together with the configured API and the number of
// search sessions held in memory. It never calls the API.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if apiClient != nil {
		resp.API = apiClient.BaseURL()
	}
	if searches != nil {
		resp.Searches = searches.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
	}
}

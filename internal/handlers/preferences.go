package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	applog "switchmarket/internal/log"
	"switchmarket/internal/views/layout"
)

const defaultLocale = "en"

type preferencesResponse struct {
	Locale string `json:"locale"`
}

// UpdatePreferences stores the display language of the session.
func UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		applog.Debug(r.Context(), "preferences update with unsupported method", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	locale := strings.ToLower(strings.TrimSpace(r.FormValue("locale")))
	if !slices.ContainsFunc(layout.Locales, func(l layout.Locale) bool { return l.Code == locale }) {
		applog.Debug(r.Context(), "received invalid locale", "value", locale)
		http.Error(w, "invalid locale selection", http.StatusBadRequest)
		return
	}
	if sessionManager != nil {
		sessionManager.Put(r.Context(), sessionLocaleKey, locale)
	}

	if wantsFragment(r) {
		w.Header().Set("HX-Refresh", "true")
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(preferencesResponse{Locale: locale}); err != nil {
		applog.Error(r.Context(), "failed to encode preferences response", "error", err)
	}
}

func localeFor(r *http.Request) string {
	if sessionManager == nil {
		return defaultLocale
	}
	if locale := sessionManager.GetString(r.Context(), sessionLocaleKey); locale != "" {
		return locale
	}
	return defaultLocale
}

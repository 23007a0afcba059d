package handlers

import (
	"net/http"
	"strings"

	applog "switchmarket/internal/log"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/pages"
	"switchmarket/models"
)

// Additives lists the additive catalogue, narrowed by the "tag" query parameter.
func Additives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	view := pages.AdditivesView{
		Query:     strings.TrimSpace(r.URL.Query().Get("tag")),
		Additives: []models.AdditiveInfo{},
		Locale:    localeFor(r),
	}
	if apiClient != nil {
		var (
			additives []models.AdditiveInfo
			err       error
		)
		if view.Query == "" {
			additives, err = apiClient.ListAdditives(r.Context())
		} else {
			additives, err = apiClient.SearchAdditivesByTag(r.Context(), view.Query)
		}
		if err != nil {
			applog.Warn(r.Context(), "failed to load additives", "tag", view.Query, "error", err)
			setFlash(r, components.ToastError, "Additives could not be loaded. Please try again.")
		} else {
			view.Additives = additives
		}
	}

	renderPage(w, r, pageMeta{title: "Additives", section: "additives"}, pages.Additives(view))
}

package handlers

import (
	"net/http"
	"strings"

	"switchmarket/internal/api"
	"switchmarket/internal/effects"
	applog "switchmarket/internal/log"
	"switchmarket/internal/obf"
	"switchmarket/internal/views/pages"
)

// ProductDetail renders a product with its composition and aggregated effects.
func ProductDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if apiClient == nil {
		http.Error(w, "catalogue not available", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	product, err := apiClient.GetProduct(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			notFound(w, r, "This product does not exist or was removed.")
			return
		}
		applog.Error(r.Context(), "failed to load product", "id", id, "error", err)
		http.Error(w, "unable to load product", http.StatusBadGateway)
		return
	}

	records := product.Effects
	if len(records) == 0 {
		collected, err := effects.Collect(r.Context(), apiClient, product.Ingredients)
		if err != nil {
			applog.Warn(r.Context(), "effect collection aborted", "id", id, "error", err)
		}
		records = collected
	}

	image := obf.Placeholder
	if images != nil {
		image = images.Resolve(r.Context(), product.EAN)
	}

	renderPage(w, r, pageMeta{title: product.Name, section: "search"}, pages.Product(pages.ProductView{
		Product: product,
		Image:   image,
		Effects: effects.Aggregate(records),
		Locale:  localeFor(r),
	}))
}

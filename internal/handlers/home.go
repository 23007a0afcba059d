package handlers

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	applog "switchmarket/internal/log"
	"switchmarket/internal/views/pages"
	"switchmarket/models"
)

const (
	homeProductCount  = 8
	homeAdditiveCount = 6
	imageConcurrency  = 4
)

// Home renders the landing page: random products and additives plus the news feed.
// Sections that fail to load are left empty.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, r, "This page does not exist.")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	view := pages.HomeView{Locale: localeFor(r)}
	if apiClient != nil {
		ctx := r.Context()
		var g errgroup.Group
		g.Go(func() error {
			products, err := apiClient.RandomProducts(ctx, homeProductCount)
			if err != nil {
				applog.Warn(ctx, "failed to load home products", "error", err)
				return nil
			}
			view.Products = products
			return nil
		})
		g.Go(func() error {
			additives, err := apiClient.RandomAdditives(ctx, homeAdditiveCount)
			if err != nil {
				applog.Warn(ctx, "failed to load home additives", "error", err)
				return nil
			}
			view.Additives = additives
			return nil
		})
		g.Go(func() error {
			news, err := apiClient.ListNews(ctx)
			if err != nil {
				applog.Warn(ctx, "failed to load news", "error", err)
				return nil
			}
			view.News = news
			return nil
		})
		_ = g.Wait()
	}
	view.Images = resolveImages(r.Context(), view.Products)

	renderPage(w, r, pageMeta{section: "home"}, pages.Home(view))
}

// resolveImages maps product ids to image URLs. Products without a resolver get
// no entry and render without an image.
func resolveImages(ctx context.Context, products []models.Product) map[string]string {
	out := make(map[string]string, len(products))
	if images == nil || len(products) == 0 {
		return out
	}

	urls := make([]string, len(products))
	var g errgroup.Group
	g.SetLimit(imageConcurrency)
	for i, product := range products {
		g.Go(func() error {
			urls[i] = images.Resolve(ctx, product.EAN)
			return nil
		})
	}
	_ = g.Wait()

	for i, product := range products {
		out[product.ID] = urls[i]
	}
	return out
}

package server

import (
	"context"
	"net/http"

	"switchmarket/internal/handlers"
	applog "switchmarket/internal/log"
)

type access int

const (
	public access = iota
	member
	admin
)

type route struct {
	pattern string
	handler http.HandlerFunc
	access  access
}

var routes = []route{
	{"/", handlers.Home, public},
	{"/search", handlers.Search, public},
	{"/search/more", handlers.SearchMore, public},
	{"/search/filters", handlers.SearchFilters, public},
	{"/products/{id}", handlers.ProductDetail, public},
	{"/additives", handlers.Additives, public},
	{"/login", handlers.Login, public},
	{"/register", handlers.Register, public},
	{"/logout", handlers.Logout, public},
	{"/preferences", handlers.UpdatePreferences, public},

	{"/profile", handlers.Profile, member},
	{"/contribute", handlers.Contribute, member},
	{"/contribute/extract", handlers.ContributeExtract, member},

	{"/admin/contributions", handlers.AdminContributions, admin},
	{"/admin/contributions/{id}", handlers.AdminReviewContribution, admin},
	{"/admin/users", handlers.AdminUsers, admin},
	{"/admin/users/{id}/{action}", handlers.AdminChangeRole, admin},
	{"/admin/products", handlers.AdminProducts, admin},
	{"/admin/products/new", handlers.AdminProductNew, admin},
	{"/admin/products/{id}/edit", handlers.AdminProductEdit, admin},
	{"/admin/products/{id}/delete", handlers.AdminProductDelete, admin},
}

// newRouter serves probes and static assets directly and every page through the
// authentication middleware.
func newRouter(staticDir string) http.Handler {
	ctx := context.Background()
	applog.Debug(ctx, "registering http routes")

	app := http.NewServeMux()
	for _, rt := range routes {
		var h http.Handler = rt.handler
		switch rt.access {
		case member:
			h = handlers.RequireAuthentication(h)
		case admin:
			h = handlers.RequireAdmin(h)
		}
		app.Handle(rt.pattern, h)
		applog.Debug(ctx, "route registered", "path", rt.pattern, "access", rt.access)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(ctx, "route registered", "path", "/healthz")
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(staticDir))))
	applog.Debug(ctx, "route registered", "path", "/assets/", "static", staticDir)
	mux.Handle("/", handlers.Authenticate(app))
	return mux
}

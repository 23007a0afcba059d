package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"switchmarket/internal/api"
	"switchmarket/internal/db"
	"switchmarket/internal/handlers"
	applog "switchmarket/internal/log"
	"switchmarket/internal/obf"
	"switchmarket/internal/search"
)

const (
	defaultSessionLifetime = 12 * time.Hour
	defaultCookieName      = "switchmarket_session"
	defaultStaticDir       = "web/static"
	sessionCleanupInterval = 15 * time.Minute
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr      string
	Session   SessionConfig
	Database  *gorm.DB
	API       api.Config
	Images    obf.Config
	Search    SearchConfig
	StaticDir string
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// SearchConfig tunes the per-session product search.
type SearchConfig struct {
	PageSize       int
	MaxRetries     int
	RetryDelay     time.Duration
	DebounceWindow time.Duration
	SessionIdle    time.Duration
}

// Server wraps an http.Server and exposes helpers for bootstrapping a
// production-ready web service.
type Server struct {
	config     Config
	httpServer *http.Server
	cancel     context.CancelFunc
}

// New builds a new Server using the provided configuration. Sessions and image
// lookups are kept in cfg.Database when one is given, in memory otherwise.
func New(cfg Config) (*Server, error) {
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"sessionCookie", cfg.Session.CookieName,
		"apiBaseURL", cfg.API.BaseURL,
	)

	client, err := api.NewClient(cfg.API)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sessionManager := newSessionManager(ctx, cfg)

	var cache obf.Cache
	if cfg.Database != nil {
		cache = db.NewImageCache(cfg.Database)
	}

	searchCfg := cfg.Search
	fetcherCfg := search.FetcherConfig{
		PageSize:   searchCfg.PageSize,
		MaxRetries: searchCfg.MaxRetries,
		RetryDelay: searchCfg.RetryDelay,
	}
	registry := search.NewRegistry(searchCfg.SessionIdle, func() *search.Fetcher {
		return search.NewFetcher(client, fetcherCfg)
	})

	handlers.Configure(handlers.Dependencies{
		Sessions:       sessionManager,
		API:            client,
		Searches:       registry,
		Images:         obf.NewResolver(cfg.Images, cache),
		DebounceWindow: searchCfg.DebounceWindow,
	})
	applog.Debug(context.Background(), "handler dependencies configured")

	staticDir := cfg.StaticDir
	if strings.TrimSpace(staticDir) == "" {
		staticDir = defaultStaticDir
	}
	handler := handlers.RequestID(sessionManager.LoadAndSave(newRouter(staticDir)))

	return &Server{
		config: cfg,
		cancel: cancel,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func newSessionManager(ctx context.Context, cfg Config) *scs.SessionManager {
	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		applog.Debug(ctx, "session lifetime not provided, using default")
		sessionCfg.Lifetime = defaultSessionLifetime
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		applog.Debug(ctx, "session cookie name not provided, using default")
		sessionCfg.CookieName = defaultCookieName
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure

	if cfg.Database != nil {
		store := db.NewSessionStore(cfg.Database)
		store.StartCleanup(ctx, sessionCleanupInterval)
		sessionManager.Store = store
	}

	applog.Debug(ctx, "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"cookieDomain", sessionCfg.CookieDomain,
		"cookieSecure", sessionCfg.CookieSecure,
		"persistent", cfg.Database != nil,
	)
	return sessionManager
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

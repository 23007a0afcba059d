package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"switchmarket/internal/api"
	"switchmarket/internal/config"
	"switchmarket/internal/db"
	"switchmarket/internal/db/mock"
	applog "switchmarket/internal/log"
	"switchmarket/internal/obf"
	"switchmarket/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadEnvFunc         = func() error { return godotenv.Load() }
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	if err := loadEnvFunc(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		applog.Error(ctx, "failed to read .env file", "error", err)
		return 1
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	srv, err := newServerFunc(serverConfig(cfg, database))
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "api", cfg.API.BaseURL)
		errCh <- srv.Start()
	}()

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case <-ctx.Done():
		applog.Info(ctx, "shutting down http server", "reason", ctx.Err().Error())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	return 0
}

// openDatabase returns the mock database, the configured one, or nil when no
// database is configured; sessions then live in memory.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock {
		applog.Info(ctx, "using in-memory mock database")
		return newMockDatabaseFunc(ctx)
	}
	if strings.TrimSpace(cfg.URL) == "" {
		applog.Info(ctx, "no database configured, sessions are kept in memory")
		return nil, nil
	}
	return configureDatabase(cfg)
}

func serverConfig(cfg config.Config, database *gorm.DB) server.Config {
	return server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Auth.Session.Lifetime,
			CookieName:   cfg.Auth.Session.CookieName,
			CookieDomain: cfg.Auth.Session.CookieDomain,
			CookieSecure: cfg.Auth.Session.CookieSecure,
		},
		Database: database,
		API: api.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		},
		Images: obf.Config{
			BaseURL:      cfg.OBF.BaseURL,
			ImageBaseURL: cfg.OBF.ImageBaseURL,
			Timeout:      cfg.OBF.Timeout,
			CacheTTL:     cfg.OBF.CacheTTL,
		},
		Search: server.SearchConfig{
			PageSize:       cfg.Search.PageSize,
			MaxRetries:     cfg.Search.MaxRetries,
			RetryDelay:     cfg.Search.RetryDelay,
			DebounceWindow: cfg.Search.DebounceWindow,
			SessionIdle:    cfg.Search.SessionIdle,
		},
	}
}

// Command mockapi serves the in-memory SwitchMarket REST API under /api for local
// development and demos.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"switchmarket/internal/backendmock"
	"switchmarket/internal/config"
	applog "switchmarket/internal/log"
)

const shutdownTimeout = 5 * time.Second

var (
	loadEnvFunc    = func() error { return godotenv.Load() }
	loadConfigFunc = config.Load
	listenFunc     = func(addr string) (net.Listener, error) { return net.Listen("tcp", addr) }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	os.Exit(run(ctx))
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
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	handler, err := newHandler(cfg.MockAPI)
	if err != nil {
		applog.Error(ctx, "failed to build mock api", "error", err)
		return 1
	}

	ln, err := listenFunc(cfg.MockAPI.Addr)
	if err != nil {
		applog.Error(ctx, "failed to listen", "addr", cfg.MockAPI.Addr, "error", err)
		return 1
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting mock api", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "mock api encountered an error", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		applog.Info(ctx, "shutting down mock api")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "mock api exited with error", "error", err)
		return 1
	}
	return 0
}

// newHandler mounts the mock API under /api, matching the default API_BASE_URL.
func newHandler(cfg config.MockAPIConfig) (http.Handler, error) {
	backend, err := backendmock.New(backendmock.Config{JWTSecret: cfg.JWTSecret})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", backend.Handler()))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux, nil
}

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"switchmarket/internal/api"
	"switchmarket/internal/backendmock"
	"switchmarket/internal/config"
)

func TestHandlerServesAPIUnderPrefix(t *testing.T) {
	t.Parallel()

	handler, err := newHandler(config.MockAPIConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	product, err := client.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Name != "Gentle Shampoo" {
		t.Fatalf("unexpected product %q", product.Name)
	}
	if _, err := client.Login(context.Background(), api.Credentials{Email: backendmock.UserEmail, Password: backendmock.DefaultPassword}); err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func stubRun(t *testing.T) {
	t.Helper()
	originalEnv, originalConfig, originalListen := loadEnvFunc, loadConfigFunc, listenFunc
	t.Cleanup(func() {
		loadEnvFunc, loadConfigFunc, listenFunc = originalEnv, originalConfig, originalListen
	})
	loadEnvFunc = func() error { return nil }
	loadConfigFunc = func() (config.Config, error) {
		return config.Config{
			Logging: config.LoggingConfig{Level: "error"},
			MockAPI: config.MockAPIConfig{Addr: "127.0.0.1:0", JWTSecret: "test-secret"},
		}, nil
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	stubRun(t)

	addrCh := make(chan net.Addr, 1)
	listenFunc = func(addr string) (net.Listener, error) {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			addrCh <- ln.Addr()
		}
		return ln, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- run(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(2 * time.Second):
		t.Fatal("mock api did not start listening")
	}

	resp, err := http.Get("http://" + addr.String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("expected exit code 0, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRunFailsWhenListenFails(t *testing.T) {
	stubRun(t)
	listenFunc = func(string) (net.Listener, error) { return nil, errors.New("address in use") }

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunFailsOnConfigError(t *testing.T) {
	stubRun(t)
	loadConfigFunc = func() (config.Config, error) { return config.Config{}, errors.New("bad config") }

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

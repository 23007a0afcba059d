// Package auth tracks who is signed in for the duration of a request. The bearer
// token lives in a TokenStore; the user is resolved from it through the API.
package auth

import (
	"context"
	"errors"
	"sync"

	"switchmarket/internal/api"
	applog "switchmarket/internal/log"
	"switchmarket/models"
)

// Status is the authentication state of a Context.
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// Backend is the part of the API the auth flow depends on.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, reg api.Registration) (string, error)
	Me(ctx context.Context, token string) (models.User, error)
}

// LoginResult reports the outcome of a login or registration attempt.
type LoginResult struct {
	Success bool
	Message string
}

// Context holds the authenticated user of one session.
type Context struct {
	backend Backend
	store   TokenStore

	mu     sync.RWMutex
	status Status
	user   *models.User
}

// New returns a Context in the loading state.
func New(backend Backend, store TokenStore) *Context {
	return &Context{backend: backend, store: store, status: StatusLoading}
}

// Init resolves the stored token, if any, into a user.
func (c *Context) Init(ctx context.Context) {
	c.RefreshUser(ctx)
}

// RefreshUser asks the API who owns the stored token. A token the API rejects is
// cleared; a token that could not be checked is kept for the next attempt.
func (c *Context) RefreshUser(ctx context.Context) {
	token := c.store.Token(ctx)
	if token == "" {
		c.setAnonymous()
		return
	}

	user, err := c.backend.Me(ctx, token)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			applog.Info(ctx, "stored token rejected", "status", apiErr.Status)
			c.store.ClearToken(ctx)
		} else {
			applog.Warn(ctx, "could not resolve user", "error", err)
		}
		c.setAnonymous()
		return
	}

	c.mu.Lock()
	c.status = StatusAuthenticated
	c.user = &user
	c.mu.Unlock()
}

// Login exchanges credentials for a token and loads the user. Failures are
// reported in the result, never as an error.
func (c *Context) Login(ctx context.Context, creds api.Credentials) LoginResult {
	token, err := c.backend.Login(ctx, creds)
	if err != nil {
		applog.Info(ctx, "login failed", "email", creds.Email, "error", err)
		return LoginResult{Message: api.Message(err, "Login failed")}
	}
	return c.signIn(ctx, token)
}

// Register opens an account and signs it in.
func (c *Context) Register(ctx context.Context, reg api.Registration) LoginResult {
	token, err := c.backend.Register(ctx, reg)
	if err != nil {
		applog.Info(ctx, "registration failed", "email", reg.Email, "error", err)
		return LoginResult{Message: api.Message(err, "Registration failed")}
	}
	return c.signIn(ctx, token)
}

// signIn stores token and keeps it only when the API resolves it into a user.
func (c *Context) signIn(ctx context.Context, token string) LoginResult {
	c.store.SetToken(ctx, token)
	c.RefreshUser(ctx)
	if !c.IsAuthenticated() {
		c.store.ClearToken(ctx)
		return LoginResult{Message: "Your account could not be loaded, please try again"}
	}
	return LoginResult{Success: true}
}

// Logout forgets the token and the user.
func (c *Context) Logout(ctx context.Context) {
	c.store.ClearToken(ctx)
	c.setAnonymous()
}

// Token returns the stored bearer token.
func (c *Context) Token(ctx context.Context) string {
	return c.store.Token(ctx)
}

// Status returns the current state.
func (c *Context) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// User returns the signed-in user.
func (c *Context) User() (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

// IsAuthenticated reports whether a user is signed in.
func (c *Context) IsAuthenticated() bool {
	return c.Status() == StatusAuthenticated
}

// IsAdmin reports whether the signed-in user is an administrator.
func (c *Context) IsAdmin() bool {
	user, ok := c.User()
	return ok && c.IsAuthenticated() && user.IsAdmin()
}

func (c *Context) setAnonymous() {
	c.mu.Lock()
	c.status = StatusAnonymous
	c.user = nil
	c.mu.Unlock()
}

type contextKey struct{}

var anonymous = &Context{status: StatusAnonymous, store: &MemoryStore{}}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Context attached to ctx, or an anonymous one.
func FromContext(ctx context.Context) *Context {
	if c, ok := ctx.Value(contextKey{}).(*Context); ok && c != nil {
		return c
	}
	return anonymous
}

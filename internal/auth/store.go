package auth

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"

	applog "switchmarket/internal/log"
)

// TokenKey is the session key holding the bearer token.
const TokenKey = "auth:token"

// TokenStore persists the bearer token between requests.
type TokenStore interface {
	Token(ctx context.Context) string
	SetToken(ctx context.Context, token string)
	ClearToken(ctx context.Context)
}

// SessionStore keeps the token in the scs session bound to the request context.
type SessionStore struct {
	sessions *scs.SessionManager
}

// NewSessionStore returns a store backed by sessions.
func NewSessionStore(sessions *scs.SessionManager) *SessionStore {
	return &SessionStore{sessions: sessions}
}

func (s *SessionStore) Token(ctx context.Context) string {
	return s.sessions.GetString(ctx, TokenKey)
}

// SetToken stores token under a fresh session id.
func (s *SessionStore) SetToken(ctx context.Context, token string) {
	if err := s.sessions.RenewToken(ctx); err != nil {
		applog.Error(ctx, "failed to renew session token", "error", err)
	}
	s.sessions.Put(ctx, TokenKey, token)
}

func (s *SessionStore) ClearToken(ctx context.Context) {
	s.sessions.Remove(ctx, TokenKey)
}

// MemoryStore holds a single token in memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) Token(context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryStore) SetToken(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryStore) ClearToken(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"switchmarket/internal/api"
	"switchmarket/internal/auth"
	applog "switchmarket/internal/log"
	"switchmarket/internal/search"
	"switchmarket/internal/views/components"
	"switchmarket/models"
)

const (
	sessionFlashKey     = "flash:message"
	sessionFlashKindKey = "flash:kind"
	sessionSearchKey    = "search:id"
	sessionLocaleKey    = "prefs:locale"
)

// ImageResolver finds the image URL of a product barcode.
type ImageResolver interface {
	Resolve(ctx context.Context, ean string) string
}

// Dependencies are the shared services used by the HTTP handlers.
type Dependencies struct {
	Sessions       *scs.SessionManager
	API            *api.Client
	Searches       *search.Registry
	Images         ImageResolver
	DebounceWindow time.Duration
}

var (
	sessionManager *scs.SessionManager
	apiClient      *api.Client
	searches       *search.Registry
	images         ImageResolver
	debounceWindow = search.DefaultDebounceWindow
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(deps Dependencies) {
	sessionManager = deps.Sessions
	apiClient = deps.API
	searches = deps.Searches
	images = deps.Images
	debounceWindow = deps.DebounceWindow
}

// RequestID tags the request context with the incoming X-Request-ID, or a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(applog.WithRequestID(r.Context(), id)))
	})
}

// Authenticate resolves the session token into an auth.Context for the request.
// It must run inside the session middleware.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionManager == nil || apiClient == nil {
			next.ServeHTTP(w, r)
			return
		}
		ac := auth.New(apiClient, auth.NewSessionStore(sessionManager))
		ac.Init(r.Context())
		applog.Debug(r.Context(), "request authenticated", "status", ac.Status().String())
		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), ac)))
	})
}

// RequireAuthentication ensures the user is signed in before accessing the resource.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsAuthenticated() {
			setFlash(r, components.ToastInfo, "Please log in to continue.")
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts the resource to administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsAdmin() {
			applog.Info(r.Context(), "admin resource denied", "path", r.URL.Path)
			http.Error(w, "administrator access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// Logout forgets the session token and the search state, then returns home.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	auth.FromContext(r.Context()).Logout(r.Context())
	if sessionManager != nil {
		if id := sessionManager.PopString(r.Context(), sessionSearchKey); id != "" && searches != nil {
			searches.Drop(id)
		}
		if err := sessionManager.RenewToken(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to renew session token", "error", err)
		}
	}
	setFlash(r, components.ToastSuccess, "You have been logged out.")
	redirect(w, r, "/")
}

func currentUser(r *http.Request) *models.User {
	user, ok := auth.FromContext(r.Context()).User()
	if !ok {
		return nil
	}
	return &user
}

func currentToken(r *http.Request) string {
	return auth.FromContext(r.Context()).Token(r.Context())
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/login")
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

package handlers

import (
	"net/http"
	"strings"

	"switchmarket/internal/api"
	"switchmarket/internal/auth"
	applog "switchmarket/internal/log"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/pages"
)

// Login renders the sign-in form and processes sign-in submissions.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", isHTMX(r))

	ac := auth.FromContext(r.Context())
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ac.IsAuthenticated() {
			redirect(w, r, "/")
			return
		}
		renderLogin(w, r, http.StatusOK, "", "")
	case http.MethodPost:
		if apiClient == nil || sessionManager == nil {
			http.Error(w, "authentication not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			renderLogin(w, r, http.StatusUnprocessableEntity, "Email and password are required.", email)
			return
		}

		result := ac.Login(r.Context(), api.Credentials{Email: email, Password: password})
		if !result.Success {
			renderLogin(w, r, http.StatusUnauthorized, result.Message, email)
			return
		}

		user, _ := ac.User()
		applog.Info(r.Context(), "user signed in", "userID", user.ID)
		setFlash(r, components.ToastSuccess, "Welcome back, "+user.DisplayName()+".")
		redirect(w, r, "/")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, message, email string) {
	// htmx only swaps 2xx responses by default
	if isHTMX(r) {
		status = http.StatusOK
	}
	renderPageStatus(w, r, status, pageMeta{title: "Log in", section: "login"}, pages.Login(message, email))
}

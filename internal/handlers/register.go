package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"switchmarket/internal/api"
	"switchmarket/internal/auth"
	applog "switchmarket/internal/log"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/pages"
)

const minPasswordLength = 8

// Register displays the account creation form and processes new registrations.
func Register(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling register request", "method", r.Method, "htmx", isHTMX(r))

	ac := auth.FromContext(r.Context())
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ac.IsAuthenticated() {
			redirect(w, r, "/")
			return
		}
		renderRegister(w, r, http.StatusOK, "", pages.RegisterForm{})
	case http.MethodPost:
		if apiClient == nil || sessionManager == nil {
			http.Error(w, "registration not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		form := pages.RegisterForm{
			Username:  strings.TrimSpace(r.PostFormValue("username")),
			Email:     strings.TrimSpace(r.PostFormValue("email")),
			Firstname: strings.TrimSpace(r.PostFormValue("firstname")),
			Lastname:  strings.TrimSpace(r.PostFormValue("lastname")),
			Birthdate: strings.TrimSpace(r.PostFormValue("birthdate")),
		}
		password := r.PostFormValue("password")
		confirm := r.PostFormValue("confirm_password")

		if message := validateRegistration(form, password, confirm); message != "" {
			applog.Debug(r.Context(), "registration rejected", "reason", message)
			renderRegister(w, r, http.StatusUnprocessableEntity, message, form)
			return
		}

		result := ac.Register(r.Context(), api.Registration{
			Username:  form.Username,
			Email:     form.Email,
			Password:  password,
			Firstname: form.Firstname,
			Lastname:  form.Lastname,
			Birthdate: form.Birthdate,
		})
		if !result.Success {
			renderRegister(w, r, http.StatusUnprocessableEntity, result.Message, form)
			return
		}

		applog.Info(r.Context(), "account registered", "email", strings.ToLower(form.Email))
		setFlash(r, components.ToastSuccess, "Your account is ready.")
		redirect(w, r, "/")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func validateRegistration(form pages.RegisterForm, password, confirm string) string {
	switch {
	case form.Username == "":
		return "Please choose a username."
	case form.Email == "":
		return "Please provide a valid email address."
	case len(password) < minPasswordLength:
		return "Password must be at least 8 characters long."
	case password != confirm:
		return "Passwords do not match."
	}
	if _, err := mail.ParseAddress(form.Email); err != nil {
		return "Please provide a valid email address."
	}
	return ""
}

func renderRegister(w http.ResponseWriter, r *http.Request, status int, message string, form pages.RegisterForm) {
	if isHTMX(r) {
		status = http.StatusOK
	}
	renderPageStatus(w, r, status, pageMeta{title: "Sign up", section: "register"}, pages.Register(message, form))
}

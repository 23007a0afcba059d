package handlers

import (
	"net/http"
	"strings"

	"switchmarket/internal/api"
	"switchmarket/internal/auth"
	applog "switchmarket/internal/log"
	"switchmarket/internal/views/pages"
)

// Profile shows and updates the account of the signed-in user.
func Profile(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	user, ok := ac.User()
	if !ok {
		redirectToLogin(w, r)
		return
	}
	meta := pageMeta{title: "Profile", section: "profile"}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderPage(w, r, meta, pages.Profile(user, "", ""))
	case http.MethodPost:
		if apiClient == nil {
			http.Error(w, "profile not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		update := api.UserUpdate{
			Username:  strings.TrimSpace(r.PostFormValue("username")),
			Email:     strings.TrimSpace(r.PostFormValue("email")),
			Firstname: strings.TrimSpace(r.PostFormValue("firstname")),
			Lastname:  strings.TrimSpace(r.PostFormValue("lastname")),
			Birthdate: strings.TrimSpace(r.PostFormValue("birthdate")),
			Password:  r.PostFormValue("password"),
		}
		if update.Password != "" && len(update.Password) < minPasswordLength {
			renderPage(w, r, meta, pages.Profile(user, "", "Password must be at least 8 characters long."))
			return
		}

		updated, err := apiClient.UpdateUser(r.Context(), ac.Token(r.Context()), update)
		if err != nil {
			applog.Warn(r.Context(), "profile update failed", "userID", user.ID, "error", err)
			renderPage(w, r, meta, pages.Profile(user, "", api.Message(err, "Your profile could not be saved.")))
			return
		}
		ac.RefreshUser(r.Context())
		applog.Info(r.Context(), "profile updated", "userID", updated.ID)
		renderPage(w, r, meta, pages.Profile(updated, "Your profile was saved.", ""))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

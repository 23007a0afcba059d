package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	applog "switchmarket/internal/log"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/layout"
	"switchmarket/internal/views/pages"
)

// pageMeta names the document a handler renders.
type pageMeta struct {
	title   string
	section string
}

// renderPage writes content as a fragment for HTMX requests and inside the full
// layout otherwise. Pending flash messages ride along as toasts.
func renderPage(w http.ResponseWriter, r *http.Request, meta pageMeta, content templ.Component) {
	renderPageStatus(w, r, http.StatusOK, meta, content)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, status int, meta pageMeta, content templ.Component) {
	toasts := popToasts(r)

	var component templ.Component
	if wantsFragment(r) {
		component = fragment(content, toasts)
	} else {
		component = layout.Base(layout.Page{
			Title:   meta.title,
			Section: meta.section,
			User:    currentUser(r),
			Toasts:  toasts,
			Locale:  localeFor(r),
		}, content)
	}
	renderComponent(w, r, status, component)
}

// renderComponent buffers the component so a render failure can still become a 500.
func renderComponent(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		applog.Error(r.Context(), "failed to render component", "path", r.URL.Path, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		applog.Debug(r.Context(), "failed to write response", "error", err)
	}
}

func fragment(content templ.Component, toasts []components.Toast) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		if len(toasts) == 0 {
			return nil
		}
		return components.Toasts(toasts, true).Render(ctx, w)
	})
}

func setFlash(r *http.Request, kind, message string) {
	if sessionManager == nil {
		return
	}
	sessionManager.Put(r.Context(), sessionFlashKindKey, kind)
	sessionManager.Put(r.Context(), sessionFlashKey, message)
}

func popToasts(r *http.Request) []components.Toast {
	if sessionManager == nil {
		return nil
	}
	message := sessionManager.PopString(r.Context(), sessionFlashKey)
	kind := sessionManager.PopString(r.Context(), sessionFlashKindKey)
	if message == "" {
		return nil
	}
	return []components.Toast{{Kind: kind, Message: message}}
}

// notFound renders the not-found page for what.
func notFound(w http.ResponseWriter, r *http.Request, what string) {
	renderPageStatus(w, r, http.StatusNotFound, pageMeta{title: "Not found"}, pages.NotFound(what))
}

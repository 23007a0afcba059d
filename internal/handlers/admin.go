package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"switchmarket/internal/api"
	applog "switchmarket/internal/log"
	"switchmarket/internal/search"
	"switchmarket/internal/views/components"
	"switchmarket/internal/views/pages"
	"switchmarket/models"
)

// AdminContributions lists contributions by status, pending first by default.
func AdminContributions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := models.ContributionPending
	if query := r.URL.Query(); query.Has("status") {
		status = strings.TrimSpace(query.Get("status"))
	}
	renderAdminContributions(w, r, status)
}

// AdminReviewContribution approves or rejects a pending contribution.
func AdminReviewContribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	status := strings.TrimSpace(r.PostFormValue("status"))
	if status != models.ContributionApproved && status != models.ContributionRejected {
		http.Error(w, "unknown review status", http.StatusBadRequest)
		return
	}

	_, err := apiClient.ReviewContribution(r.Context(), currentToken(r), id, api.ContributionReview{
		Status:  status,
		Comment: strings.TrimSpace(r.PostFormValue("comment")),
	})
	if err != nil {
		applog.Warn(r.Context(), "contribution review failed", "id", id, "error", err)
		setFlash(r, components.ToastError, api.Message(err, "The contribution could not be reviewed."))
	} else {
		applog.Info(r.Context(), "contribution reviewed", "id", id, "status", status)
		setFlash(r, components.ToastSuccess, "Contribution "+status+".")
	}

	if !isHTMX(r) {
		redirect(w, r, "/admin/contributions")
		return
	}
	renderAdminContributions(w, r, models.ContributionPending)
}

func renderAdminContributions(w http.ResponseWriter, r *http.Request, status string) {
	contributions, err := apiClient.ListContributions(r.Context(), currentToken(r), status)
	if err != nil {
		applog.Error(r.Context(), "failed to load contributions", "status", status, "error", err)
		http.Error(w, "unable to load contributions", http.StatusBadGateway)
		return
	}
	renderPage(w, r, pageMeta{title: "Contributions", section: "admin"}, pages.AdminContributions(status, contributions))
}

// AdminUsers lists every account with role controls.
func AdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderAdminUsers(w, r)
}

// AdminChangeRole promotes or demotes an account. Administrators cannot change
// their own role.
func AdminChangeRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if user := currentUser(r); user != nil && user.ID == id {
		http.Error(w, "you cannot change your own role", http.StatusBadRequest)
		return
	}

	token := currentToken(r)
	var err error
	switch action := r.PathValue("action"); action {
	case "promote":
		err = apiClient.PromoteUser(r.Context(), token, id)
	case "demote":
		err = apiClient.DemoteUser(r.Context(), token, id)
	default:
		http.Error(w, "unknown role action", http.StatusBadRequest)
		return
	}
	if err != nil {
		applog.Warn(r.Context(), "role change failed", "id", id, "error", err)
		setFlash(r, components.ToastError, api.Message(err, "The role could not be changed."))
	} else {
		setFlash(r, components.ToastSuccess, "Role updated.")
	}

	if !isHTMX(r) {
		redirect(w, r, "/admin/users")
		return
	}
	renderAdminUsers(w, r)
}

func renderAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := apiClient.ListUsers(r.Context(), currentToken(r))
	if err != nil {
		applog.Error(r.Context(), "failed to load users", "error", err)
		http.Error(w, "unable to load users", http.StatusBadGateway)
		return
	}
	currentID := ""
	if user := currentUser(r); user != nil {
		currentID = user.ID
	}
	renderPage(w, r, pageMeta{title: "Users", section: "admin"}, pages.AdminUsers(users, currentID))
}

// AdminProducts pages through the catalogue.
func AdminProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := apiClient.ListProducts(r.Context(), api.ProductQuery{All: query, Page: page, Limit: search.DefaultPageSize})
	if err != nil {
		applog.Error(r.Context(), "failed to load products", "query", query, "page", page, "error", err)
		http.Error(w, "unable to load products", http.StatusBadGateway)
		return
	}

	hasMore := len(result.Products) >= search.DefaultPageSize
	if p := result.Pagination; p != nil && p.Pages > 0 {
		hasMore = page < p.Pages
	}
	renderPage(w, r, pageMeta{title: "Products", section: "admin"}, pages.AdminProducts(pages.AdminProductsView{
		Query:    query,
		Page:     page,
		HasMore:  hasMore,
		Products: result.Products,
	}))
}

// AdminProductNew creates a product.
func AdminProductNew(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderProductForm(w, r, http.StatusOK, pages.ProductForm{}, "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		form := productForm(r)
		form.ID = ""
		product, err := productFromForm(form)
		if err != nil {
			renderProductForm(w, r, http.StatusUnprocessableEntity, form, sentence(err.Error()))
			return
		}
		created, err := apiClient.CreateProduct(r.Context(), currentToken(r), product)
		if err != nil {
			applog.Warn(r.Context(), "product creation failed", "error", err)
			renderProductForm(w, r, http.StatusUnprocessableEntity, form, api.Message(err, "The product could not be saved."))
			return
		}
		applog.Info(r.Context(), "product created", "id", created.ID)
		setFlash(r, components.ToastSuccess, created.Name+" was added.")
		redirect(w, r, "/admin/products")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AdminProductEdit updates a product. Additives and effects are kept as stored.
func AdminProductEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := apiClient.GetProduct(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			notFound(w, r, "This product does not exist or was removed.")
			return
		}
		applog.Error(r.Context(), "failed to load product", "id", id, "error", err)
		http.Error(w, "unable to load product", http.StatusBadGateway)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderProductForm(w, r, http.StatusOK, formFromProduct(existing), "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		form := productForm(r)
		form.ID = existing.ID
		product, err := productFromForm(form)
		if err != nil {
			renderProductForm(w, r, http.StatusUnprocessableEntity, form, sentence(err.Error()))
			return
		}
		product.Additives = existing.Additives
		product.Effects = existing.Effects

		if _, err := apiClient.UpdateProduct(r.Context(), currentToken(r), product); err != nil {
			applog.Warn(r.Context(), "product update failed", "id", id, "error", err)
			renderProductForm(w, r, http.StatusUnprocessableEntity, form, api.Message(err, "The product could not be saved."))
			return
		}
		applog.Info(r.Context(), "product updated", "id", id)
		setFlash(r, components.ToastSuccess, product.Name+" was updated.")
		redirect(w, r, "/admin/products")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AdminProductDelete removes a product. HTMX callers receive an empty row that
// replaces the deleted one.
func AdminProductDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")
	err := apiClient.DeleteProduct(r.Context(), currentToken(r), id)
	if err != nil {
		applog.Warn(r.Context(), "product deletion failed", "id", id, "error", err)
		setFlash(r, components.ToastError, api.Message(err, "The product could not be deleted."))
	} else {
		applog.Info(r.Context(), "product deleted", "id", id)
		setFlash(r, components.ToastSuccess, "Product deleted.")
	}

	if !isHTMX(r) {
		redirect(w, r, "/admin/products")
		return
	}
	if err != nil {
		// keep the row; the toast still swaps out of band
		w.Header().Set("HX-Reswap", "none")
	}
	renderPage(w, r, pageMeta{}, templ.NopComponent)
}

func renderProductForm(w http.ResponseWriter, r *http.Request, status int, form pages.ProductForm, message string) {
	if isHTMX(r) {
		status = http.StatusOK
	}
	renderPageStatus(w, r, status, pageMeta{title: "Product", section: "admin"}, pages.AdminProductForm(form, message))
}

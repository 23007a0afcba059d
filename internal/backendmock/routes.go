package backendmock

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"switchmarket/models"
)

type payload map[string]any

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", s.listProducts)
	mux.HandleFunc("GET /products/random/{n}", s.randomProducts)
	mux.HandleFunc("GET /products/{id}", s.getProduct)
	mux.HandleFunc("POST /products", s.admin(s.createProduct))
	mux.HandleFunc("PUT /products/{id}", s.admin(s.updateProduct))
	mux.HandleFunc("DELETE /products/{id}", s.admin(s.deleteProduct))

	mux.HandleFunc("GET /additives", s.listAdditives)
	mux.HandleFunc("GET /additives/tag/{q}", s.searchAdditives)
	mux.HandleFunc("GET /additives/random/{n}", s.randomAdditives)
	mux.HandleFunc("GET /labels", s.listLabels)
	mux.HandleFunc("GET /effects/search", s.searchEffects)
	mux.HandleFunc("GET /news", s.listNews)

	mux.HandleFunc("POST /users/login", s.login)
	mux.HandleFunc("POST /users/register", s.register)
	mux.HandleFunc("GET /users/me", s.authenticated(s.me))
	mux.HandleFunc("PUT /users/update", s.authenticated(s.updateUser))
	mux.HandleFunc("GET /users", s.admin(s.listUsers))
	mux.HandleFunc("PUT /users/{id}/{action}", s.admin(s.changeRole))

	mux.HandleFunc("GET /contributions", s.authenticated(s.listContributions))
	mux.HandleFunc("POST /contributions", s.authenticated(s.submitContribution))
	mux.HandleFunc("PUT /contributions/{id}", s.admin(s.reviewContribution))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body payload) {
	if _, ok := body["result"]; !ok {
		body["result"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload{"result": false, "message": message})
}

func decode(r *http.Request, v any) bool {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v) == nil
}

type userHandler func(w http.ResponseWriter, r *http.Request, user models.User)

func (s *Server) authenticated(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "Missing token")
			return
		}
		user, err := s.userFromToken(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, user models.User) {
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "Administrator role required")
			return
		}
		next(w, r)
	})
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("all"))
	page := positiveInt(r.URL.Query().Get("page"), 1)
	limit := positiveInt(r.URL.Query().Get("limit"), defaultLimit)

	s.mu.RLock()
	matched := make([]models.Product, 0)
	for _, product := range s.products {
		if matchesQuery(product, query) {
			matched = append(matched, s.withAdditiveInfoLocked(product))
		}
	}
	s.mu.RUnlock()

	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	writeJSON(w, http.StatusOK, payload{
		"products": matched[start:end],
		"pagination": models.Pagination{
			Total: len(matched),
			Page:  page,
			Limit: limit,
			Pages: int(math.Ceil(float64(len(matched)) / float64(limit))),
		},
	})
}

func (s *Server) randomProducts(w http.ResponseWriter, r *http.Request) {
	n := positiveInt(r.PathValue("n"), 4)
	s.mu.RLock()
	products := pick(s.products, n)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, payload{"products": products})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productIndexLocked(r.PathValue("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, payload{"product": s.withAdditiveInfoLocked(s.products[i])})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decode(r, &product) || strings.TrimSpace(product.Name) == "" {
		writeError(w, http.StatusBadRequest, "A product name is required")
		return
	}
	product = s.AddProduct(product)
	writeJSON(w, http.StatusCreated, payload{"product": product, "message": "Product created"})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decode(r, &product) || strings.TrimSpace(product.Name) == "" {
		writeError(w, http.StatusBadRequest, "A product name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndexLocked(r.PathValue("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	product.ID = s.products[i].ID
	s.products[i] = product
	writeJSON(w, http.StatusOK, payload{"product": product, "message": "Product updated"})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndexLocked(r.PathValue("id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	writeJSON(w, http.StatusOK, payload{"message": "Product deleted"})
}

func (s *Server) listAdditives(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, payload{"additives": s.additives})
}

func (s *Server) searchAdditives(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.PathValue("q")))
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make([]models.AdditiveInfo, 0)
	for _, additive := range s.additives {
		if strings.Contains(strings.ToLower(additive.Tag), q) {
			found = append(found, additive)
		}
	}
	writeJSON(w, http.StatusOK, payload{"additives": found})
}

func (s *Server) randomAdditives(w http.ResponseWriter, r *http.Request) {
	n := positiveInt(r.PathValue("n"), 3)
	s.mu.RLock()
	additives := pick(s.additives, n)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, payload{"additives": additives})
}

func (s *Server) listLabels(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, payload{"labels": s.labels})
}

func (s *Server) searchEffects(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.EffectRecord, 0)
	for _, record := range s.effects[strings.ToLower(query)] {
		record.Ingredient = query
		records = append(records, record)
	}
	writeJSON(w, http.StatusOK, payload{"effects": records})
}

func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, payload{"news": s.news})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if !decode(r, &creds) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.RLock()
	acc := s.accountByEmailLocked(creds.Email)
	s.mu.RUnlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.IssueToken(acc.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, payload{"token": token, "message": "Login successful"})
}

type registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Birthdate string `json:"birthdate"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg registration
	if !decode(r, &reg) || strings.TrimSpace(reg.Email) == "" || len(reg.Password) < 8 {
		writeError(w, http.StatusBadRequest, "An email and a password of at least 8 characters are required")
		return
	}

	user, err := s.AddUser(models.User{
		Username:  strings.TrimSpace(reg.Username),
		Email:     reg.Email,
		Firstname: strings.TrimSpace(reg.Firstname),
		Lastname:  strings.TrimSpace(reg.Lastname),
		Birthdate: reg.Birthdate,
	}, reg.Password)
	if err != nil {
		writeError(w, http.StatusConflict, "An account with that email already exists")
		return
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusCreated, payload{"token": token, "message": "Account created"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request, user models.User) {
	writeJSON(w, http.StatusOK, payload{"user": user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, user models.User) {
	var update registration
	if !decode(r, &update) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var hash []byte
	if update.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(update.Password), s.cost); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update password")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(user.ID)
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" && email != acc.user.Email {
		if s.accountByEmailLocked(email) != nil {
			writeError(w, http.StatusConflict, "An account with that email already exists")
			return
		}
		acc.user.Email = email
	}
	if v := strings.TrimSpace(update.Username); v != "" {
		acc.user.Username = v
	}
	if v := strings.TrimSpace(update.Firstname); v != "" {
		acc.user.Firstname = v
	}
	if v := strings.TrimSpace(update.Lastname); v != "" {
		acc.user.Lastname = v
	}
	if v := strings.TrimSpace(update.Birthdate); v != "" {
		acc.user.Birthdate = v
	}
	if hash != nil {
		acc.hash = hash
	}
	writeJSON(w, http.StatusOK, payload{"user": acc.user, "message": "Profile updated"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	writeJSON(w, http.StatusOK, payload{"users": users})
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	var role string
	switch r.PathValue("action") {
	case "promote":
		role = models.RoleAdmin
	case "demote":
		role = models.RoleUser
	default:
		writeError(w, http.StatusNotFound, "Unknown action")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(r.PathValue("id"))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	acc.user.Role = role
	writeJSON(w, http.StatusOK, payload{"user": acc.user, "message": "Role updated"})
}

func (s *Server) listContributions(w http.ResponseWriter, r *http.Request, user models.User) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make([]models.Contribution, 0)
	for _, contribution := range s.contributions {
		if status != "" && contribution.Status != status {
			continue
		}
		if !user.IsAdmin() && (contribution.Author == nil || contribution.Author.ID != user.ID) {
			continue
		}
		found = append(found, contribution)
	}
	writeJSON(w, http.StatusOK, payload{"contributions": found})
}

type contributionInput struct {
	ProductID string         `json:"productId"`
	Type      string         `json:"type"`
	Product   models.Product `json:"product"`
	Comment   string         `json:"comment"`
}

func (s *Server) submitContribution(w http.ResponseWriter, r *http.Request, user models.User) {
	var input contributionInput
	if !decode(r, &input) || strings.TrimSpace(input.Product.Name) == "" {
		writeError(w, http.StatusBadRequest, "A product name is required")
		return
	}

	now := s.now().UTC()
	author := user
	s.mu.Lock()
	contribution := models.Contribution{
		ID:        s.newIDLocked("c"),
		ProductID: input.ProductID,
		Type:      input.Type,
		Status:    models.ContributionPending,
		Product:   input.Product,
		Comment:   input.Comment,
		Author:    &author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.contributions = append(s.contributions, contribution)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, payload{"contribution": contribution, "message": "Thank you for your contribution"})
}

type review struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (s *Server) reviewContribution(w http.ResponseWriter, r *http.Request) {
	var body review
	if !decode(r, &body) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch body.Status {
	case models.ContributionPending, models.ContributionApproved, models.ContributionRejected:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	s.mu.Lock()
	var updated *models.Contribution
	for i := range s.contributions {
		if s.contributions[i].ID == r.PathValue("id") {
			updated = &s.contributions[i]
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Contribution not found")
		return
	}
	approve := body.Status == models.ContributionApproved && updated.Status != models.ContributionApproved
	updated.Status = body.Status
	if body.Comment != "" {
		updated.Comment = body.Comment
	}
	updated.UpdatedAt = s.now().UTC()
	result := *updated
	s.mu.Unlock()

	if approve {
		s.applyContribution(result)
	}
	writeJSON(w, http.StatusOK, payload{"contribution": result, "message": "Contribution " + result.Status})
}

// applyContribution publishes an approved contribution into the catalogue.
func (s *Server) applyContribution(c models.Contribution) {
	product := c.Product
	if c.ProductID != "" {
		s.mu.Lock()
		if i := s.productIndexLocked(c.ProductID); i >= 0 {
			product.ID = c.ProductID
			s.products[i] = product
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
	s.AddProduct(product)
}

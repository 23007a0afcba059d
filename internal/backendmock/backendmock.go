// Package backendmock is an in-memory stand-in for the SwitchMarket REST API. It
// backs cmd/mockapi for local development and the HTTP tests of the front-end.
package backendmock

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"switchmarket/models"
)

const (
	defaultSecret   = "switchmarket-dev"
	defaultTokenTTL = 72 * time.Hour
	defaultLimit    = 10
)

// Config tunes a Server.
type Config struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// Empty skips the demo catalogue and accounts.
	Empty bool
}

type account struct {
	user models.User
	hash []byte
}

// Server holds the fake catalogue, accounts and contributions.
type Server struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu            sync.RWMutex
	products      []models.Product
	additives     []models.AdditiveInfo
	labels        []models.Label
	news          []models.News
	effects       map[string][]models.EffectRecord
	accounts      []*account
	contributions []models.Contribution
	nextID        int

	handler http.Handler
}

// New builds a Server seeded with the demo catalogue unless cfg.Empty is set.
func New(cfg Config) (*Server, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		secret = defaultSecret
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Server{
		secret:  []byte(secret),
		ttl:     ttl,
		cost:    cost,
		now:     time.Now,
		effects: map[string][]models.EffectRecord{},
	}
	s.handler = s.routes()

	if cfg.Empty {
		return s, nil
	}

	s.additives = seedAdditives()
	s.labels = seedLabels()
	s.news = seedNews(s.now().UTC())
	s.effects = seedEffects()
	for _, product := range seedProducts() {
		s.AddProduct(product)
	}
	if _, err := s.AddUser(models.User{Username: "admin", Email: AdminEmail, Firstname: "Alex", Lastname: "Admin", Role: models.RoleAdmin}, DefaultPassword); err != nil {
		return nil, err
	}
	if _, err := s.AddUser(models.User{Username: "ana", Email: UserEmail, Firstname: "Ana", Lastname: "Lima"}, DefaultPassword); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler serves the API routes relative to the API root.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// AddProduct stores product under a fresh id and returns it.
func (s *Server) AddProduct(product models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.ID = s.newIDLocked("p")
	s.products = append(s.products, product)
	return product
}

// AddUser creates an account. The role defaults to user.
func (s *Server) AddUser(user models.User, password string) (models.User, error) {
	if strings.TrimSpace(user.Email) == "" || password == "" {
		return models.User{}, errors.New("backendmock: email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("backendmock: hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmailLocked(user.Email) != nil {
		return models.User{}, errors.New("backendmock: email already registered")
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.ID = s.newIDLocked("u")
	s.accounts = append(s.accounts, &account{user: user, hash: hash})
	return user, nil
}

// AddEffects registers effect records for an ingredient name.
func (s *Server) AddEffects(ingredient string, records ...models.EffectRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(ingredient))
	s.effects[key] = append(s.effects[key], records...)
}

// IssueToken signs a bearer token for the account with userID.
func (s *Server) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) userFromToken(raw string) (models.User, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, errors.New("invalid claims")
	}
	id, _ := claims["user_id"].(string)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, nil
		}
	}
	return models.User{}, errors.New("unknown user")
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return prefix + strconv.Itoa(s.nextID)
}

func (s *Server) accountByEmailLocked(email string) *account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, acc := range s.accounts {
		if acc.user.Email == email {
			return acc
		}
	}
	return nil
}

func (s *Server) accountByIDLocked(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Server) productIndexLocked(id string) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

// withAdditiveInfoLocked attaches the reference entry to each additive of product.
func (s *Server) withAdditiveInfoLocked(product models.Product) models.Product {
	additives := make([]models.Additive, len(product.Additives))
	for i, additive := range product.Additives {
		for _, info := range s.additives {
			if info.Tag == additive.Tag {
				additive.Info = &info
				break
			}
		}
		additives[i] = additive
	}
	product.Additives = additives
	return product
}

func matchesQuery(product models.Product, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(product.Name), query) ||
		strings.Contains(strings.ToLower(product.Brand), query) ||
		product.EAN == query {
		return true
	}
	for _, ingredient := range product.Ingredients {
		if strings.Contains(strings.ToLower(ingredient.Text), query) {
			return true
		}
	}
	return false
}

func pick[T any](items []T, n int) []T {
	shuffled := slices.Clone(items)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

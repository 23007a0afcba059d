package models

import "strings"

// Roles understood by the SwitchMarket API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account as reported by the SwitchMarket API.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
	Birthdate string `json:"birthdate,omitempty"`
}

// IsAdmin reports whether the role is exactly "admin".
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the friendliest available name for the account.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.Firstname) + " " + strings.TrimSpace(u.Lastname))
	if full != "" {
		return full
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

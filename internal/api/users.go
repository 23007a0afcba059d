package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"switchmarket/models"
)

// Credentials identify an account during login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries the fields needed to open an account.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Birthdate string `json:"birthdate,omitempty"`
}

// UserUpdate carries the editable profile fields.
type UserUpdate struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Password  string `json:"password,omitempty"`
}

type tokenResponse struct {
	envelope
	Token string `json:"token"`
}

type userResponse struct {
	envelope
	User *models.User `json:"user"`
}

type userListResponse struct {
	envelope
	Users []models.User `json:"users"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/users/login", body: creds}, &resp); err != nil {
		return "", err
	}
	if !resp.Result || strings.TrimSpace(resp.Token) == "" {
		return "", &Error{Status: http.StatusUnauthorized, Message: firstNonEmpty(resp.Message, "invalid credentials")}
	}
	return resp.Token, nil
}

// Register opens an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/users/register", body: reg}, &resp); err != nil {
		return "", err
	}
	if !resp.Result || strings.TrimSpace(resp.Token) == "" {
		return "", &Error{Status: http.StatusBadRequest, Message: firstNonEmpty(resp.Message, "registration failed")}
	}
	return resp.Token, nil
}

// Me resolves the account owning token.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var resp userResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", token: token}, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.Result || resp.User == nil {
		return models.User{}, &Error{Status: http.StatusUnauthorized, Message: firstNonEmpty(resp.Message, "session expired")}
	}
	return *resp.User, nil
}

// UpdateUser edits the profile of the account owning token.
func (c *Client) UpdateUser(ctx context.Context, token string, update UserUpdate) (models.User, error) {
	var resp userResponse
	if err := c.do(ctx, request{method: http.MethodPut, path: "/users/update", token: token, body: update}, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.Result || resp.User == nil {
		return models.User{}, &Error{Status: http.StatusBadRequest, Message: firstNonEmpty(resp.Message, "profile was not updated")}
	}
	return *resp.User, nil
}

// ListUsers returns every account. Requires an administrator token.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var resp userListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users", token: token}, &resp); err != nil {
		return nil, err
	}
	if !resp.Result || resp.Users == nil {
		return []models.User{}, nil
	}
	return resp.Users, nil
}

// PromoteUser grants the administrator role.
func (c *Client) PromoteUser(ctx context.Context, token, id string) error {
	return c.changeRole(ctx, token, id, "promote")
}

// DemoteUser revokes the administrator role.
func (c *Client) DemoteUser(ctx context.Context, token, id string) error {
	return c.changeRole(ctx, token, id, "demote")
}

func (c *Client) changeRole(ctx context.Context, token, id, action string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("api: user id must not be empty")
	}
	var resp envelope
	path := "/users/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, request{method: http.MethodPut, path: path, token: token}, &resp); err != nil {
		return err
	}
	if !resp.Result {
		return &Error{Status: http.StatusBadRequest, Message: firstNonEmpty(resp.Message, "role was not changed")}
	}
	return nil
}

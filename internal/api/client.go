package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	applog "switchmarket/internal/log"
)

const (
	defaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Config describes how the SwitchMarket API client should be initialised.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin wrapper around the SwitchMarket REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Error is returned when the API answers with a non-2xx status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Message extracts a user facing message from err, falling back to def.
func Message(err error, def string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return def
}

// envelope holds the fields shared by every API response.
type envelope struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewClient builds a Client for the configured API base URL.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes a single API call.
type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, payload)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	applog.Debug(ctx, "calling switchmarket api", "method", req.method, "path", req.path)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("api: decode %s response: %w", req.path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = firstNonEmpty(env.Message, env.Error)
	}
	if apiErr.Message == "" {
		apiErr.Message = firstNonEmpty(http.StatusText(resp.StatusCode), "request failed")
	}
	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	API      APIConfig      `yaml:"api"`
	OBF      OBFConfig      `yaml:"obf"`
	Search   SearchConfig   `yaml:"search"`
	MockAPI  MockAPIConfig  `yaml:"mock_api"`
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	UseMock         bool          `yaml:"use_mock"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig groups authentication related settings.
type AuthConfig struct {
	Session SessionConfig `yaml:"session"`
}

// SessionConfig controls session cookie behavior.
type SessionConfig struct {
	Lifetime     time.Duration `yaml:"lifetime"`
	CookieName   string        `yaml:"cookie_name"`
	CookieDomain string        `yaml:"cookie_domain"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// APIConfig points the front-end at the SwitchMarket REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// OBFConfig configures product image resolution against OpenBeautyFacts.
type OBFConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ImageBaseURL string        `yaml:"image_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// SearchConfig tunes the product search pipeline.
type SearchConfig struct {
	PageSize       int           `yaml:"page_size"`
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	SessionIdle    time.Duration `yaml:"session_idle"`
}

// MockAPIConfig configures the development stand-in for the REST API.
type MockAPIConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Load inspects the optional CONFIG_FILE and the environment and builds a Config value.
// Environment variables take precedence over the file.
func Load() (Config, error) {
	cfg := Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			cfg.Server.Addr,
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			cfg.Database.URL,
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), cfg.Database.MaxIdleConns),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), cfg.Database.MaxOpenConns),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), cfg.Database.ConnMaxLifetime),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), cfg.Database.ConnMaxIdleTime),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), cfg.Database.UseMock),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.Logging.Level, "info"),
	}

	cfg.Auth.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), cfg.Auth.Session.Lifetime),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), cfg.Auth.Session.CookieName),
		CookieDomain: firstNonEmpty(os.Getenv("SESSION_COOKIE_DOMAIN"), cfg.Auth.Session.CookieDomain),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), cfg.Auth.Session.CookieSecure),
	}

	cfg.API = APIConfig{
		BaseURL: firstNonEmpty(os.Getenv("API_BASE_URL"), cfg.API.BaseURL, "http://localhost:5000/api"),
		Timeout: parseDurationWithDefault(os.Getenv("API_TIMEOUT"), withDuration(cfg.API.Timeout, 15*time.Second)),
	}

	cfg.OBF = OBFConfig{
		BaseURL:      firstNonEmpty(os.Getenv("OBF_BASE_URL"), cfg.OBF.BaseURL, "https://world.openbeautyfacts.org"),
		ImageBaseURL: firstNonEmpty(os.Getenv("OBF_IMAGE_BASE_URL"), cfg.OBF.ImageBaseURL, "https://images.openbeautyfacts.org"),
		Timeout:      parseDurationWithDefault(os.Getenv("OBF_TIMEOUT"), withDuration(cfg.OBF.Timeout, 5*time.Second)),
		CacheTTL:     parseDurationWithDefault(os.Getenv("OBF_CACHE_TTL"), withDuration(cfg.OBF.CacheTTL, 24*time.Hour)),
	}

	cfg.Search = SearchConfig{
		PageSize:       parseIntWithDefault(os.Getenv("SEARCH_PAGE_SIZE"), withInt(cfg.Search.PageSize, 10)),
		DebounceWindow: parseDurationWithDefault(os.Getenv("SEARCH_DEBOUNCE_WINDOW"), withDuration(cfg.Search.DebounceWindow, 300*time.Millisecond)),
		MaxRetries:     parseIntWithDefault(os.Getenv("SEARCH_MAX_RETRIES"), withInt(cfg.Search.MaxRetries, 3)),
		RetryDelay:     parseDurationWithDefault(os.Getenv("SEARCH_RETRY_DELAY"), withDuration(cfg.Search.RetryDelay, time.Second)),
		SessionIdle:    parseDurationWithDefault(os.Getenv("SEARCH_SESSION_IDLE"), withDuration(cfg.Search.SessionIdle, 30*time.Minute)),
	}

	cfg.MockAPI = MockAPIConfig{
		Addr:      firstNonEmpty(os.Getenv("MOCK_API_ADDR"), cfg.MockAPI.Addr, ":5000"),
		JWTSecret: firstNonEmpty(os.Getenv("MOCK_API_JWT_SECRET"), cfg.MockAPI.JWTSecret, "switchmarket-dev"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if cfg.Search.PageSize <= 0 {
		return Config{}, fmt.Errorf("search page size must be positive")
	}
	if cfg.Search.MaxRetries < 0 {
		return Config{}, fmt.Errorf("search max retries must not be negative")
	}

	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func withDuration(value, def time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return def
}

func withInt(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}

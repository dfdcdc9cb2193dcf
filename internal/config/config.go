// Package config handles loading and validating the shopctl configuration
// from YAML files with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

var apiVersionPattern = regexp.MustCompile(`^(\d{4}-\d{2}|unstable)$`)

// Config is the top-level shopctl configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Shop       string           `yaml:"shop"`
	API        APIConfig        `yaml:"api"`
	Pagination PaginationConfig `yaml:"pagination"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Callback   CallbackConfig   `yaml:"callback"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AppConfig identifies the public app used for installation.
type AppConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
	RedirectURI  string   `yaml:"redirect_uri"` // default: derived from callback
	OnlineAccess bool     `yaml:"online_access"`
}

// APIConfig defines Admin API transport settings.
type APIConfig struct {
	Version   string        `yaml:"version"`
	Timeout   time.Duration `yaml:"timeout"`
	BaseURL   string        `yaml:"base_url"` // overrides the shop host, for proxies
	UserAgent string        `yaml:"user_agent"`
}

// PaginationConfig defines how collections are walked.
type PaginationConfig struct {
	PageSize  int           `yaml:"page_size"`
	PageDelay time.Duration `yaml:"page_delay"`
	FirstPage *int          `yaml:"first_page"` // default: 1
}

// StartPage returns the configured first page index.
func (p PaginationConfig) StartPage() int {
	if p.FirstPage == nil {
		return 1
	}
	return *p.FirstPage
}

// RateLimitConfig defines client-side pacing of Admin API calls.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// CallbackConfig defines the local OAuth callback listener.
type CallbackConfig struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"` // how long install waits for the redirect
}

// Addr returns host:port for the listener.
func (c CallbackConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// URL returns the redirect URI served by the listener.
func (c CallbackConfig) URL() string {
	return "http://" + c.Addr() + c.Path
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, logfmt
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyAPIDefaults(&cfg.API)
	applyPaginationDefaults(&cfg.Pagination)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyCallbackDefaults(&cfg.Callback)
	applyLoggingDefaults(&cfg.Logging)
	if cfg.App.RedirectURI == "" {
		cfg.App.RedirectURI = cfg.Callback.URL()
	}
}

func applyAPIDefaults(a *APIConfig) {
	if a.Version == "" {
		a.Version = "2024-01"
	}
	if a.Timeout == 0 {
		a.Timeout = 30 * time.Second
	}
	if a.UserAgent == "" {
		a.UserAgent = "shopctl"
	}
}

func applyPaginationDefaults(p *PaginationConfig) {
	if p.PageDelay == 0 {
		p.PageDelay = 500 * time.Millisecond
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 40
	}
}

func applyCallbackDefaults(c *CallbackConfig) {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 3456
	}
	if c.Path == "" {
		c.Path = "/auth/callback"
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// Validate checks the shape of every section. Credentials are not required
// here; commands that need them call RequireApp or RequireShop.
func (c *Config) Validate() error {
	return validation.Errors{
		"shop":                  validation.Validate(c.Shop, validation.By(shopRule)),
		"app.redirect_uri":      validation.Validate(c.App.RedirectURI, is.URL),
		"app.scopes":            validation.Validate(c.App.Scopes, validation.Each(validation.Required)),
		"api.version":           validation.Validate(c.API.Version, validation.Match(apiVersionPattern)),
		"api.timeout":           validation.Validate(c.API.Timeout, validation.Min(time.Duration(0))),
		"api.base_url":          validation.Validate(c.API.BaseURL, is.URL),
		"pagination.page_size":  validation.Validate(c.Pagination.PageSize, validation.Min(0), validation.Max(250)),
		"pagination.page_delay": validation.Validate(c.Pagination.PageDelay, validation.Min(time.Duration(0))),
		"rate_limit.per_second": validation.Validate(c.RateLimit.PerSecond, validation.Min(0.0)),
		"rate_limit.burst":      validation.Validate(c.RateLimit.Burst, validation.Min(0)),
		"callback.port":         validation.Validate(c.Callback.Port, validation.Min(1), validation.Max(65535)),
		"callback.path": validation.Validate(
			c.Callback.Path,
			validation.Required,
			validation.By(func(v any) error {
				if !strings.HasPrefix(v.(string), "/") {
					return validation.NewError("validation_path_slash", "must start with /")
				}
				return nil
			}),
		),
		"logging.level": validation.Validate(
			c.Logging.Level, validation.In("debug", "info", "warn", "error"),
		),
		"logging.format": validation.Validate(
			c.Logging.Format, validation.In("text", "json", "logfmt"),
		),
	}.Filter()
}

// RequireApp reports the app settings install and auth-url cannot run without.
func (c *Config) RequireApp() error {
	return validation.Errors{
		"app.client_id":     validation.Validate(c.App.ClientID, validation.Required),
		"app.client_secret": validation.Validate(c.App.ClientSecret, validation.Required),
		"app.scopes":        validation.Validate(c.App.Scopes, validation.Required),
		"shop":              validation.Validate(c.Shop, validation.Required),
	}.Filter()
}

// RequireShop reports whether a target shop is configured.
func (c *Config) RequireShop() error {
	return validation.Errors{
		"shop": validation.Validate(c.Shop, validation.Required),
	}.Filter()
}

func shopRule(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if _, err := shopify.NormalizeShop(s); err != nil {
		return validation.NewError("validation_shop_domain", "must be a shop name or myshopify.com domain")
	}
	return nil
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort             = 3001
	defaultEnv              = "development"
	defaultStoreDriver      = StoreDriverMemory
	defaultKeepaliveSeconds = 3
)

// Registry store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
	StoreDriverMySQL  = "mysql"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int         `yaml:"port"`
	Env            string      `yaml:"env"` // "development" | "production"
	FrontendURL    string      `yaml:"frontend_url"`
	AllowedOrigins []string    `yaml:"allowed_origins"`
	JWTSecret      string      `yaml:"jwt_secret"`
	OIDC           OIDCConfig  `yaml:"oidc"`
	Store          StoreConfig `yaml:"session_store"`
	SSE            SSEConfig   `yaml:"sse"`
}

// OIDCConfig configures the identity-provider negotiator. An empty issuer
// disables the interactive login flow; the rest of the service still runs.
type OIDCConfig struct {
	IssuerURL    string `yaml:"issuer_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// StoreConfig selects the session registry backend.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // "memory" | "redis" | "mysql"
	RedisURL string `yaml:"redis_url"`
	DSN      string `yaml:"dsn"`
}

// SSEConfig tunes the notification channel transport.
type SSEConfig struct {
	KeepaliveSeconds int `yaml:"keepalive_seconds"`
}

// Load reads and validates the YAML config file.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Default returns a config populated with built-in defaults.
func Default() *AppConfig {
	return &AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Store: StoreConfig{
			Driver: defaultStoreDriver,
		},
		SSE: SSEConfig{
			KeepaliveSeconds: defaultKeepaliveSeconds,
		},
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	switch c.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverRedis:
		if strings.TrimSpace(c.Store.RedisURL) == "" {
			return fmt.Errorf("session_store.redis_url is required for the redis driver")
		}
	case StoreDriverMySQL:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("session_store.dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown session_store.driver %q", c.Store.Driver)
	}

	if c.SSE.KeepaliveSeconds < 0 {
		return fmt.Errorf("sse.keepalive_seconds must not be negative")
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// OIDCEnabled reports whether the interactive login flow is configured.
func (c *AppConfig) OIDCEnabled() bool {
	return strings.TrimSpace(c.OIDC.IssuerURL) != ""
}

// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Site      SiteConfig      `koanf:"site"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Identity  IdentityConfig  `koanf:"identity"`
	Session   SessionConfig   `koanf:"session"`
	Storage   StorageConfig   `koanf:"storage"`
	Lang      LangConfig      `koanf:"lang"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SiteConfig describes the public site the guard redirects within.
type SiteConfig struct {
	BaseURL  string `koanf:"base_url"`
	PagesDir string `koanf:"pages_dir"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	SimpleProtocol  bool          `koanf:"simple_protocol"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// IdentityConfig points at the hosted auth service.
type IdentityConfig struct {
	URL              string        `koanf:"url"`
	AnonKey          string        `koanf:"anon_key"`
	ServiceRoleKey   string        `koanf:"service_role_key"`
	JWTSecret        string        `koanf:"jwt_secret"`
	VerifyMode       string        `koanf:"verify_mode"`
	Timeout          time.Duration `koanf:"timeout"`
	OAuthProviders   []string      `koanf:"oauth_providers"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

type SessionConfig struct {
	AccessCookie   string        `koanf:"access_cookie"`
	RefreshCookie  string        `koanf:"refresh_cookie"`
	VerifierCookie string        `koanf:"verifier_cookie"`
	CookieDomain   string        `koanf:"cookie_domain"`
	Secure         bool          `koanf:"secure"`
	RefreshMaxAge  time.Duration `koanf:"refresh_max_age"`
}

type StorageConfig struct {
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	UseSSL          bool   `koanf:"use_ssl"`
	PublicURL       string `koanf:"public_url"`
	MaxUploadBytes  int64  `koanf:"max_upload_bytes"`
}

type LangConfig struct {
	CookieName     string        `koanf:"cookie_name"`
	CountryHeaders []string      `koanf:"country_headers"`
	MaxAge         time.Duration `koanf:"max_age"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

const (
	VerifyModeRemote = "remote"
	VerifyModeLocal  = "local"
)

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

// Defaults returns the built-in configuration values keyed by koanf path.
func Defaults() map[string]any {
	return map[string]any{
		"app.name":        "Ristan Marine Catalog",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"site.base_url":  "",
		"site.pages_dir": "web",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.simple_protocol":    false,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"identity.verify_mode":       VerifyModeRemote,
		"identity.timeout":           "10s",
		"identity.oauth_providers":   []string{"google"},
		"identity.breaker_threshold": 5,
		"identity.breaker_timeout":   "30s",

		"session.access_cookie":   "sb-access-token",
		"session.refresh_cookie":  "sb-refresh-token",
		"session.verifier_cookie": "sb-code-verifier",
		"session.secure":          true,
		"session.refresh_max_age": "720h",

		"storage.bucket":           "ristan-marine-images",
		"storage.region":           "auto",
		"storage.use_ssl":          true,
		"storage.max_upload_bytes": 10 << 20,

		"lang.cookie_name": "lang",
		"lang.country_headers": []string{
			"X-Vercel-IP-Country",
			"CF-IPCountry",
		},
		"lang.max_age": "8760h",

		"rate_limit.requests": 30,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    10,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "catalog-api",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}
}

func loadDefaults(k *koanf.Koanf) error {
	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_SIMPLE_PROTOCOL":    "database.simple_protocol",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"SITE_BASE_URL":               "site.base_url",
	"PAGES_DIR":                   "site.pages_dir",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"SUPABASE_URL":                "identity.url",
	"SUPABASE_ANON_KEY":           "identity.anon_key",
	"SUPABASE_SERVICE_ROLE_KEY":   "identity.service_role_key",
	"SUPABASE_JWT_SECRET":         "identity.jwt_secret",
	"IDENTITY_VERIFY_MODE":        "identity.verify_mode",
	"SESSION_COOKIE_DOMAIN":       "session.cookie_domain",
	"SESSION_SECURE":              "session.secure",
	"R2_ENDPOINT":                 "storage.endpoint",
	"R2_ACCESS_KEY_ID":            "storage.access_key_id",
	"R2_SECRET_ACCESS_KEY":        "storage.secret_access_key",
	"R2_BUCKET_NAME":              "storage.bucket",
	"R2_PUBLIC_URL":               "storage.public_url",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"METRICS_ENABLED":             "metrics.enabled",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Identity.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}

	if _, err := url.ParseRequestURI(c.Identity.URL); err != nil {
		return fmt.Errorf("SUPABASE_URL is invalid: %w", err)
	}

	if c.Identity.AnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}

	if c.Identity.ServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}

	switch c.Identity.VerifyMode {
	case VerifyModeRemote:
	case VerifyModeLocal:
		if c.Identity.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required for local verification")
		}
	default:
		return fmt.Errorf("identity.verify_mode must be %q or %q",
			VerifyModeRemote, VerifyModeLocal)
	}

	if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
		return fmt.Errorf("R2_ENDPOINT and R2_BUCKET_NAME are required")
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be positive")
	}

	if c.Site.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Site.BaseURL); err != nil {
			return fmt.Errorf("SITE_BASE_URL is invalid: %w", err)
		}
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("SESSION_SECURE must be true in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

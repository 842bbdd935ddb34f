package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Authentication deployments.
const (
	// AuthModeJWT runs the pre-pipeline introspection middleware followed by
	// the arbiter-selected JWT bearer scheme.
	AuthModeJWT = "jwt"
	// AuthModeIntrospect skips the middleware and authenticates every request
	// through the introspection-only scheme.
	AuthModeIntrospect = "introspect"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full process configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	Server   Server
	Identity Identity
	Database Database
	Redis    RedisConfig
	Log      Log
	CORS     CORS
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	Env               string
	AuthMode          string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Identity points at the authorization server that issues and introspects tokens.
type Identity struct {
	Authority            string
	Issuer               string
	Audience             string
	IntrospectionTimeout time.Duration
	ClockSkew            time.Duration
}

// IntrospectionURL is the RFC 7662 endpoint under the authority.
func (i Identity) IntrospectionURL() string {
	return strings.TrimRight(i.Authority, "/") + "/oauth/introspect"
}

// Database configures the Postgres connection pool.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional menu cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MenuCacheTTL time.Duration
}

// Log configures structured logging.
type Log struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// CORS lists allowed browser origins outside development.
type CORS struct {
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs with development defaults.
func (c Config) IsDevelopment() bool {
	return c.Server.Env == EnvDevelopment
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		Server: Server{
			Addr:              envOr("MENU_API_ADDR", ":8080"),
			Env:               envOr("APP_ENV", EnvProduction),
			AuthMode:          envOr("AUTH_MODE", AuthModeJWT),
			ReadHeaderTimeout: dur("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       dur("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:      dur("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       dur("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   dur("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Identity: Identity{
			Authority:            envOr("IDENTITY_AUTHORITY", "http://localhost:8081"),
			Issuer:               envOr("IDENTITY_ISSUER", "DrOcupacional.Identity"),
			Audience:             envOr("IDENTITY_AUDIENCE", "ui-app"),
			IntrospectionTimeout: dur("INTROSPECTION_TIMEOUT", 10*time.Second),
			ClockSkew:            dur("JWT_CLOCK_SKEW", 5*time.Minute),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    num("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    num("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: dur("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
			MenuCacheTTL: dur("MENU_CACHE_TTL", 5*time.Minute),
		},
		Log: Log{
			Level:      envOr("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  num("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: num("LOG_FILE_MAX_BACKUPS", 10),
			MaxAgeDays: num("LOG_FILE_MAX_AGE_DAYS", 30),
		},
		CORS: CORS{
			AllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Server.AuthMode {
	case AuthModeJWT, AuthModeIntrospect:
	default:
		return fmt.Errorf("invalid configuration: AUTH_MODE must be %q or %q, got %q", AuthModeJWT, AuthModeIntrospect, c.Server.AuthMode)
	}
	if c.Identity.Authority == "" {
		return fmt.Errorf("invalid configuration: IDENTITY_AUTHORITY is required")
	}
	if c.Identity.IntrospectionTimeout <= 0 {
		return fmt.Errorf("invalid configuration: INTROSPECTION_TIMEOUT must be positive")
	}
	if c.Identity.ClockSkew < 0 {
		return fmt.Errorf("invalid configuration: JWT_CLOCK_SKEW must not be negative")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

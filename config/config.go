// Package config loads service configuration from built-in defaults, an
// optional TOML file, an optional .env file and TODO_* environment variables,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MinSecretKeyLength is the shortest accepted HS256 signing secret, in bytes.
const MinSecretKeyLength = 32

// Duration is a time.Duration that decodes from strings such as "15m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete service configuration.
type Config struct {
	HTTP            HTTPConfig      `toml:"http"`
	Database        DatabaseConfig  `toml:"database"`
	JWT             JWTConfig       `toml:"jwt"`
	Auth            AuthConfig      `toml:"auth"`
	RateLimit       RateLimitConfig `toml:"rate_limit"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout Duration        `toml:"shutdown_timeout"`
}

type HTTPConfig struct {
	Addr        string `toml:"addr"`
	CORSOrigins string `toml:"cors_origins"`
}

// DatabaseConfig selects the task store backend.
type DatabaseConfig struct {
	Driver string `toml:"driver"` // sqlite or postgres
	DSN    string `toml:"dsn"`
	Debug  bool   `toml:"debug"`
}

// JWTConfig configures bearer token issuance and validation.
type JWTConfig struct {
	SecretKey string   `toml:"secret_key"`
	Issuer    string   `toml:"issuer"`
	Audience  string   `toml:"audience"`
	Lifetime  Duration `toml:"lifetime"`
}

// AuthConfig configures credential verification. When IdentityProviderURL is
// set, credentials are checked remotely instead of against the fixed pair.
type AuthConfig struct {
	Username                string   `toml:"username"`
	Password                string   `toml:"password"`
	IdentityProviderURL     string   `toml:"identity_provider_url"`
	IdentityProviderTimeout Duration `toml:"identity_provider_timeout"`
}

// RateLimitConfig configures login throttling. An empty RedisAddr disables it.
type RateLimitConfig struct {
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Limit         int      `toml:"limit"`
	Window        Duration `toml:"window"`
}

type LogConfig struct {
	Level string `toml:"level"` // info or error
}

// Default returns the built-in configuration. The JWT secret is left empty on
// purpose and must be supplied.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:        ":3000",
			CORSOrigins: "*",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "tasks.db",
		},
		JWT: JWTConfig{
			Issuer:   "TaskToDoAPI",
			Audience: "TaskToDoUsers",
			Lifetime: Duration{60 * time.Minute},
		},
		Auth: AuthConfig{
			Username:                "admin",
			Password:                "password",
			IdentityProviderTimeout: Duration{5 * time.Second},
		},
		RateLimit: RateLimitConfig{
			Limit:  10,
			Window: Duration{time.Minute},
		},
		Log: LogConfig{
			Level: "info",
		},
		ShutdownTimeout: Duration{30 * time.Second},
	}
}

// Load builds the configuration. configPath and envFile may be empty; a
// missing envFile is not an error, a missing configPath is.
func Load(configPath, envFile string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.HTTP.Addr, "TODO_HTTP_ADDR")
	setString(&c.HTTP.CORSOrigins, "TODO_CORS_ORIGINS")

	setString(&c.Database.Driver, "TODO_DB_DRIVER")
	setString(&c.Database.DSN, "TODO_DB_DSN")
	errs = append(errs, setBool(&c.Database.Debug, "TODO_DB_DEBUG"))

	setString(&c.JWT.SecretKey, "TODO_JWT_SECRET")
	setString(&c.JWT.Issuer, "TODO_JWT_ISSUER")
	setString(&c.JWT.Audience, "TODO_JWT_AUDIENCE")
	errs = append(errs, setDuration(&c.JWT.Lifetime, "TODO_JWT_LIFETIME"))

	setString(&c.Auth.Username, "TODO_AUTH_USERNAME")
	setString(&c.Auth.Password, "TODO_AUTH_PASSWORD")
	setString(&c.Auth.IdentityProviderURL, "TODO_AUTH_IDP_URL")
	errs = append(errs, setDuration(&c.Auth.IdentityProviderTimeout, "TODO_AUTH_IDP_TIMEOUT"))

	setString(&c.RateLimit.RedisAddr, "TODO_REDIS_ADDR")
	setString(&c.RateLimit.RedisPassword, "TODO_REDIS_PASSWORD")
	errs = append(errs,
		setInt(&c.RateLimit.RedisDB, "TODO_REDIS_DB"),
		setInt(&c.RateLimit.Limit, "TODO_RATE_LIMIT"),
		setDuration(&c.RateLimit.Window, "TODO_RATE_WINDOW"),
	)

	setString(&c.Log.Level, "TODO_LOG_LEVEL")
	errs = append(errs, setDuration(&c.ShutdownTimeout, "TODO_SHUTDOWN_TIMEOUT"))

	return errors.Join(errs...)
}

// Validate reports configuration faults that must stop startup.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.JWT.SecretKey == "":
		errs = append(errs, errors.New("jwt secret key is required (TODO_JWT_SECRET)"))
	case len(c.JWT.SecretKey) < MinSecretKeyLength:
		errs = append(errs, fmt.Errorf("jwt secret key must be at least %d bytes", MinSecretKeyLength))
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		errs = append(errs, errors.New("jwt issuer and audience are required"))
	}
	if c.JWT.Lifetime.Duration <= 0 {
		errs = append(errs, errors.New("jwt lifetime must be positive"))
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}

	if c.Auth.IdentityProviderURL == "" && (c.Auth.Username == "" || c.Auth.Password == "") {
		errs = append(errs, errors.New("auth username and password are required without an identity provider"))
	}

	if c.RateLimit.RedisAddr != "" {
		if c.RateLimit.Limit <= 0 {
			errs = append(errs, errors.New("rate limit must be positive"))
		}
		if c.RateLimit.Window.Duration <= 0 {
			errs = append(errs, errors.New("rate limit window must be positive"))
		}
	}

	switch c.Log.Level {
	case "info", "error":
	default:
		errs = append(errs, fmt.Errorf("unsupported log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// AllowedOrigins returns the configured origins as a comma separated list
// suitable for the cors middleware.
func (h HTTPConfig) AllowedOrigins() string {
	parts := strings.Split(h.CORSOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	dst.Duration = d
	return nil
}

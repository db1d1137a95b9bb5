// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
// One struct serves all three services; each binary reads the fields it needs.
type Config struct {
	// GatewayAddr is the address the API gateway listens on (e.g. :8080).
	GatewayAddr string `mapstructure:"GATEWAY_ADDR"`
	// UserAddr is the address the user service listens on (e.g. :8081).
	UserAddr string `mapstructure:"USER_ADDR"`
	// ProductAddr is the address the product service listens on (e.g. :8082).
	ProductAddr string `mapstructure:"PRODUCT_ADDR"`

	// UserServiceURL is the base URL the gateway proxies /api/users traffic to.
	UserServiceURL string `mapstructure:"USER_SERVICE_URL"`
	// ProductServiceURL is the base URL the gateway proxies /api/products traffic to.
	ProductServiceURL string `mapstructure:"PRODUCT_SERVICE_URL"`

	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// JWTSecret is the shared HS256 signing secret. Must be at least 32 bytes;
	// startup is refused otherwise.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim set on issued tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// TokenTTL is the bearer token lifetime (e.g. "8h"). Expiry forces re-login.
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 14.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// LockoutThreshold is the number of consecutive failed logins that locks an account.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// LockoutDuration is how long a locked account stays locked (e.g. "2h").
	LockoutDuration string `mapstructure:"LOCKOUT_DURATION"`

	// Per-endpoint-class rate limits. Each class owns an independent counter
	// namespace, so exhausting one does not affect another.
	RegisterRateMax    int    `mapstructure:"REGISTER_RATE_MAX"`
	RegisterRateWindow string `mapstructure:"REGISTER_RATE_WINDOW"`
	LoginRateMax       int    `mapstructure:"LOGIN_RATE_MAX"`
	LoginRateWindow    string `mapstructure:"LOGIN_RATE_WINDOW"`
	PasswordRateMax    int    `mapstructure:"PASSWORD_RATE_MAX"`
	PasswordRateWindow string `mapstructure:"PASSWORD_RATE_WINDOW"`

	// RedisAddr, when set, switches the rate limiter to a Redis fixed-window
	// backend so limits are consistent across horizontally scaled instances.
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// IPG payment stub configuration.
	IPGAppName       string `mapstructure:"IPG_APP_NAME"`
	IPGAppID         string `mapstructure:"IPG_APP_ID"`
	IPGAppToken      string `mapstructure:"IPG_APP_TOKEN"`
	IPGHashSalt      string `mapstructure:"IPG_HASH_SALT"`
	IPGCallbackURL   string `mapstructure:"IPG_CALLBACK_URL"`
	IPGCallbackToken string `mapstructure:"IPG_CALLBACK_TOKEN"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GATEWAY_ADDR", ":8080")
	v.SetDefault("USER_ADDR", ":8081")
	v.SetDefault("PRODUCT_ADDR", ":8082")
	v.SetDefault("USER_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("PRODUCT_SERVICE_URL", "http://localhost:8082")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "freshbonds-auth")
	v.SetDefault("TOKEN_TTL", "8h")
	v.SetDefault("BCRYPT_COST", 14)
	v.SetDefault("LOCKOUT_THRESHOLD", 5)
	v.SetDefault("LOCKOUT_DURATION", "2h")
	v.SetDefault("REGISTER_RATE_MAX", 5)
	v.SetDefault("REGISTER_RATE_WINDOW", "15m")
	v.SetDefault("LOGIN_RATE_MAX", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", "15m")
	v.SetDefault("PASSWORD_RATE_MAX", 5)
	v.SetDefault("PASSWORD_RATE_WINDOW", "60m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("IPG_APP_NAME", "")
	v.SetDefault("IPG_APP_ID", "")
	v.SetDefault("IPG_APP_TOKEN", "")
	v.SetDefault("IPG_HASH_SALT", "")
	v.SetDefault("IPG_CALLBACK_URL", "http://localhost:3000/payment/callback")
	v.SetDefault("IPG_CALLBACK_TOKEN", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("config: JWT_SECRET must be at least 32 characters")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 14
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LockoutThreshold <= 0 {
		return nil, errors.New("config: LOCKOUT_THRESHOLD must be positive")
	}

	return &cfg, nil
}

// TokenTTLDuration parses TokenTTL as a time.Duration. Returns 8h if unset or invalid.
func (c *Config) TokenTTLDuration() time.Duration {
	return parseDuration(c.TokenTTL, 8*time.Hour)
}

// LockoutDurationValue parses LockoutDuration. Returns 2h if unset or invalid.
func (c *Config) LockoutDurationValue() time.Duration {
	return parseDuration(c.LockoutDuration, 2*time.Hour)
}

// RegisterWindow parses RegisterRateWindow. Returns 15m if unset or invalid.
func (c *Config) RegisterWindow() time.Duration {
	return parseDuration(c.RegisterRateWindow, 15*time.Minute)
}

// LoginWindow parses LoginRateWindow. Returns 15m if unset or invalid.
func (c *Config) LoginWindow() time.Duration {
	return parseDuration(c.LoginRateWindow, 15*time.Minute)
}

// PasswordWindow parses PasswordRateWindow. Returns 60m if unset or invalid.
func (c *Config) PasswordWindow() time.Duration {
	return parseDuration(c.PasswordRateWindow, 60*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

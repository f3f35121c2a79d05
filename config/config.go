// Package config builds an engine configuration from the environment and
// an optional .env file using Viper.
package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	goAccounts "github.com/MrEthical07/goAccounts"
)

// Env is the flat environment-variable view of the engine configuration.
type Env struct {
	// ActivationSecret, AccessSecret, and RefreshSecret sign the three
	// token purposes. All three are required and must be distinct.
	ActivationSecret string `mapstructure:"ACTIVATION_TOKEN_SECRET"`
	AccessSecret     string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshSecret    string `mapstructure:"REFRESH_TOKEN_SECRET"`
	// ActivationTTL, AccessTTL, and RefreshTTL are Go durations ("5m",
	// "10m", "72h").
	ActivationTTL string `mapstructure:"ACTIVATION_TOKEN_TTL"`
	AccessTTL     string `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTTL    string `mapstructure:"REFRESH_TOKEN_TTL"`
	TokenIssuer   string `mapstructure:"TOKEN_ISSUER"`

	RedisPrefix     string `mapstructure:"SESSION_REDIS_PREFIX"`
	SessionLifetime string `mapstructure:"SESSION_LIFETIME"`

	AccessCookieName  string `mapstructure:"ACCESS_COOKIE_NAME"`
	RefreshCookieName string `mapstructure:"REFRESH_COOKIE_NAME"`
	CookiePath        string `mapstructure:"COOKIE_PATH"`
	// CookieSameSite is "lax", "strict", or "none".
	CookieSameSite string `mapstructure:"COOKIE_SAMESITE"`

	ResetTTL     string `mapstructure:"PASSWORD_RESET_TTL"`
	ResetBaseURL string `mapstructure:"PASSWORD_RESET_BASE_URL"`

	AuditEnabled bool `mapstructure:"AUDIT_ENABLED"`

	// AppEnv is "development" or "production". Development mode drops the
	// Secure flag from token cookies.
	AppEnv string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates a
// [goAccounts.Config] from the environment. Missing .env is ignored; env
// vars override .env.
func Load() (goAccounts.Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows. The secrets have no
	// default on purpose, so they must be bound explicitly or env-only
	// deployments could never supply them.
	for _, key := range []string{
		"ACTIVATION_TOKEN_SECRET",
		"ACCESS_TOKEN_SECRET",
		"REFRESH_TOKEN_SECRET",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("ACTIVATION_TOKEN_TTL", "5m")
	v.SetDefault("ACCESS_TOKEN_TTL", "10m")
	v.SetDefault("REFRESH_TOKEN_TTL", "72h")
	v.SetDefault("TOKEN_ISSUER", "goAccounts")
	v.SetDefault("SESSION_REDIS_PREFIX", "acct")
	v.SetDefault("SESSION_LIFETIME", "72h")
	v.SetDefault("ACCESS_COOKIE_NAME", "access_token")
	v.SetDefault("REFRESH_COOKIE_NAME", "refresh_token")
	v.SetDefault("COOKIE_PATH", "/")
	v.SetDefault("COOKIE_SAMESITE", "lax")
	v.SetDefault("PASSWORD_RESET_TTL", "15m")
	v.SetDefault("PASSWORD_RESET_BASE_URL", "")
	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("APP_ENV", "production")

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return goAccounts.Config{}, err
	}

	cfg := goAccounts.DefaultConfig()
	cfg.Token.ActivationSecret = []byte(env.ActivationSecret)
	cfg.Token.AccessSecret = []byte(env.AccessSecret)
	cfg.Token.RefreshSecret = []byte(env.RefreshSecret)
	cfg.Token.ActivationTTL = duration(env.ActivationTTL, cfg.Token.ActivationTTL)
	cfg.Token.AccessTTL = duration(env.AccessTTL, cfg.Token.AccessTTL)
	cfg.Token.RefreshTTL = duration(env.RefreshTTL, cfg.Token.RefreshTTL)
	cfg.Token.Issuer = env.TokenIssuer

	cfg.Session.RedisPrefix = env.RedisPrefix
	cfg.Session.Lifetime = duration(env.SessionLifetime, cfg.Session.Lifetime)

	cfg.Cookie.AccessName = env.AccessCookieName
	cfg.Cookie.RefreshName = env.RefreshCookieName
	cfg.Cookie.Path = env.CookiePath
	sameSite, err := parseSameSite(env.CookieSameSite)
	if err != nil {
		return goAccounts.Config{}, err
	}
	cfg.Cookie.SameSite = sameSite

	cfg.PasswordReset.ResetTTL = duration(env.ResetTTL, cfg.PasswordReset.ResetTTL)
	cfg.PasswordReset.BaseURL = env.ResetBaseURL

	cfg.Audit.Enabled = env.AuditEnabled
	cfg.Security.DevelopmentMode = env.AppEnv == "development"

	if err := cfg.Validate(); err != nil {
		return goAccounts.Config{}, err
	}
	return cfg, nil
}

func duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseSameSite(raw string) (http.SameSite, error) {
	switch strings.ToLower(raw) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, errors.New("config: COOKIE_SAMESITE must be lax, strict, or none")
	}
}

package config

import (
	"net/http"
	"testing"
	"time"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ACTIVATION_TOKEN_SECRET", "activation-secret")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Token.ActivationTTL != 5*time.Minute {
		t.Errorf("activation TTL = %v, want 5m", cfg.Token.ActivationTTL)
	}
	if cfg.Token.AccessTTL != 10*time.Minute {
		t.Errorf("access TTL = %v, want 10m", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 72*time.Hour {
		t.Errorf("refresh TTL = %v, want 72h", cfg.Token.RefreshTTL)
	}
	if cfg.Cookie.AccessName != "access_token" || cfg.Cookie.RefreshName != "refresh_token" {
		t.Errorf("cookie names = %q/%q", cfg.Cookie.AccessName, cfg.Cookie.RefreshName)
	}
	if cfg.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("samesite = %v, want lax", cfg.Cookie.SameSite)
	}
	if cfg.Security.DevelopmentMode {
		t.Error("development mode should default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("SESSION_LIFETIME", "24h")
	t.Setenv("COOKIE_SAMESITE", "strict")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Token.AccessTTL != 2*time.Minute {
		t.Errorf("access TTL = %v, want 2m", cfg.Token.AccessTTL)
	}
	if cfg.Session.Lifetime != 24*time.Hour {
		t.Errorf("session lifetime = %v, want 24h", cfg.Session.Lifetime)
	}
	if cfg.Cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("samesite = %v, want strict", cfg.Cookie.SameSite)
	}
	if !cfg.Security.DevelopmentMode {
		t.Error("APP_ENV=development should enable development mode")
	}
}

func TestLoadSecretsFromEnvOnly(t *testing.T) {
	// Secrets have no default and no .env entry; they must still arrive
	// from plain environment variables.
	setRequiredSecrets(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(cfg.Token.ActivationSecret) != "activation-secret" {
		t.Errorf("activation secret = %q", cfg.Token.ActivationSecret)
	}
	if string(cfg.Token.AccessSecret) != "access-secret" {
		t.Errorf("access secret = %q", cfg.Token.AccessSecret)
	}
	if string(cfg.Token.RefreshSecret) != "refresh-secret" {
		t.Errorf("refresh secret = %q", cfg.Token.RefreshSecret)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	t.Setenv("ACTIVATION_TOKEN_SECRET", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject missing secrets")
	}
}

func TestLoadBadSameSite(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("COOKIE_SAMESITE", "sideways")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject unknown samesite value")
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("REFRESH_TOKEN_TTL", "three days")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token.RefreshTTL != 72*time.Hour {
		t.Errorf("refresh TTL = %v, want fallback 72h", cfg.Token.RefreshTTL)
	}
}

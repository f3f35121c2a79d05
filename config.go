package goAccounts

import (
	"bytes"
	"errors"
	"net/http"
	"time"
)

// Config is the complete engine configuration. It is constructed once at
// startup (directly, or from the environment via the config package) and
// passed into [Builder.WithConfig]; core logic never reads process-wide
// state ad hoc.
type Config struct {
	Token         TokenConfig
	Session       SessionConfig
	Cookie        CookieConfig
	Password      PasswordConfig
	PasswordReset PasswordResetConfig
	Mail          MailConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
	Security      SecurityConfig
}

// TokenConfig holds the per-purpose signing secrets and validity windows.
// The three secrets must be distinct so a token minted for one purpose is
// structurally unusable for another.
type TokenConfig struct {
	ActivationSecret []byte
	AccessSecret     []byte
	RefreshSecret    []byte
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Issuer           string
}

// SessionConfig controls snapshot persistence.
type SessionConfig struct {
	RedisPrefix string
	// Lifetime is the snapshot TTL, independent of token validity. A valid
	// refresh token with an expired snapshot yields ErrUnauthenticated.
	Lifetime time.Duration
}

// CookieConfig names the token cookies and sets their shared attributes.
// Max-age follows the respective token TTL; httpOnly is unconditional.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	SameSite    http.SameSite
}

// PasswordConfig holds argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordResetConfig controls the reset-token flow.
type PasswordResetConfig struct {
	Enabled  bool
	ResetTTL time.Duration
	// BaseURL prefixes the reset link placed in the reset mail, e.g.
	// "https://app.example.com/reset-password".
	BaseURL string
}

// MailConfig names the templates and subjects the engine hands to the
// Notifier. Rendering is the Notifier's concern.
type MailConfig struct {
	ActivationTemplate string
	ActivationSubject  string
	WelcomeTemplate    string
	WelcomeSubject     string
	ResetTemplate      string
	ResetSubject       string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// SecurityConfig holds deployment-mode switches.
type SecurityConfig struct {
	// DevelopmentMode disables the Secure flag on token cookies. It must
	// never be set in production; the default is secure cookies.
	DevelopmentMode bool
}

// DefaultConfig returns the baseline configuration. Secrets are empty and
// must be supplied; Validate rejects the config otherwise.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			ActivationTTL: 5 * time.Minute,
			AccessTTL:     10 * time.Minute,
			RefreshTTL:    72 * time.Hour,
			Issuer:        "goAccounts",
		},
		Session: SessionConfig{
			RedisPrefix: "acct",
			Lifetime:    72 * time.Hour,
		},
		Cookie: CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			Path:        "/",
			SameSite:    http.SameSiteLaxMode,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		PasswordReset: PasswordResetConfig{
			Enabled:  true,
			ResetTTL: 15 * time.Minute,
		},
		Mail: MailConfig{
			ActivationTemplate: "activation-mail",
			ActivationSubject:  "Let's complete your account setup",
			WelcomeTemplate:    "welcome-mail",
			WelcomeSubject:     "Welcome aboard",
			ResetTemplate:      "reset-password-request",
			ResetSubject:       "Password Reset Request",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks structural invariants. It is called by [Builder.Build];
// direct construction should call it too.
func (c Config) Validate() error {
	if len(c.Token.ActivationSecret) == 0 ||
		len(c.Token.AccessSecret) == 0 ||
		len(c.Token.RefreshSecret) == 0 {
		return errors.New("all three token secrets must be set")
	}
	if bytes.Equal(c.Token.ActivationSecret, c.Token.AccessSecret) ||
		bytes.Equal(c.Token.ActivationSecret, c.Token.RefreshSecret) ||
		bytes.Equal(c.Token.AccessSecret, c.Token.RefreshSecret) {
		return errors.New("token secrets must be pairwise distinct")
	}
	if c.Token.ActivationTTL <= 0 || c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("session lifetime must be positive")
	}
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("cookie names must be set")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("cookie names must differ")
	}
	if c.PasswordReset.Enabled && c.PasswordReset.ResetTTL <= 0 {
		return errors.New("password reset TTL must be positive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.ActivationSecret = cloneBytes(cfg.Token.ActivationSecret)
	out.Token.AccessSecret = cloneBytes(cfg.Token.AccessSecret)
	out.Token.RefreshSecret = cloneBytes(cfg.Token.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

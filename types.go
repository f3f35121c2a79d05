package goAccounts

import (
	"context"
	"io"
	"net/http"
	"time"

	internalaudit "github.com/MrEthical07/goAccounts/internal/audit"
	"github.com/MrEthical07/goAccounts/token"
)

// Avatar is an uploaded profile image reference. The upload itself happens
// outside the engine; only the stored handle passes through here.
type Avatar struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Account is the durable account record. The password hash is write-only
// in transit: it is excluded from JSON so neither API responses nor session
// snapshots ever carry it.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       *Avatar   `json:"avatar,omitempty"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Password reset state. Only the SHA-256 hex digest of the reset token
	// is ever stored; both fields are cleared on successful reset.
	ResetTokenHash    string    `json:"-"`
	ResetTokenExpires time.Time `json:"-"`
}

// PendingRegistration is the ephemeral payload embedded in an activation
// token. It is never persisted server-side.
type PendingRegistration = token.Registrant

// RegistrationRequest is the input for [Engine.Register].
type RegistrationRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// SocialAuthRequest is the input for [Engine.SocialAuth]. The identity is
// assumed to be pre-verified by the external provider.
type SocialAuthRequest struct {
	Name   string
	Email  string
	Avatar *Avatar
}

// ProfileUpdate is the input for [Engine.UpdateProfile]. Empty fields are
// left unchanged.
type ProfileUpdate struct {
	Name  string
	Email string
}

// TokenPair is a matched access+refresh token set. The access validity
// window is always strictly shorter than the refresh window.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CookieSpec is the attribute policy for one token cookie. The engine
// computes specs; the HTTP layer applies them via http.SetCookie.
type CookieSpec struct {
	Name     string
	Value    string
	Path     string
	MaxAge   int
	HTTPOnly bool
	Secure   bool
	SameSite http.SameSite
}

// Cookie converts the spec to an http.Cookie.
func (c CookieSpec) Cookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		MaxAge:   c.MaxAge,
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

// AuthResult is returned by Login, SocialAuth, and Refresh: the
// authenticated account, the token pair, and the cookie policies for both
// tokens. The refresh token is intended to travel cookie-only; response
// bodies should echo the access token at most.
type AuthResult struct {
	Account       *Account
	TokenPair     TokenPair
	AccessCookie  CookieSpec
	RefreshCookie CookieSpec
}

// CreateAccountInput is the input for [AccountStore.Create]. The store
// assigns ID, CreatedAt, and UpdatedAt.
type CreateAccountInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Avatar       *Avatar
	IsVerified   bool
}

// AccountStore is the durable account collaborator. It must enforce email
// uniqueness; the engine's duplicate pre-checks narrow but cannot close the
// race window. FindByEmail, FindByID, and FindByResetTokenHash return
// ErrAccountNotFound when no account matches.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*Account, error)
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// SessionStore maps an account id to a serialized session snapshot with an
// independent expiry. session.Store is the Redis implementation; the
// interface exists so tests and alternative backends can substitute.
type SessionStore interface {
	Get(ctx context.Context, accountID string) (string, error)
	Set(ctx context.Context, accountID, snapshot string, ttl time.Duration) error
	Del(ctx context.Context, accountID string) error
}

// Mail is a single outbound message. Template names and data shapes are a
// contract between the integrator's Notifier and its template set.
type Mail struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Notifier delivers mail. Activation-code delivery failures abort
// registration; welcome-mail failures are swallowed after the account is
// committed.
type Notifier interface {
	Send(ctx context.Context, mail Mail) error
}

// Clock is the time source for token expiry and reset windows. Injected so
// tests can move time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON lines to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Package token implements the signed, time-boxed token codec used for
// activation, access, and refresh credentials. Each purpose gets its own
// Codec with its own secret, so a token minted for one purpose cannot be
// verified against another.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation for any reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is well-formed and correctly
	// signed but its expiry has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Registrant is the pending-registration payload embedded in an activation
// token. The password field carries the argon2id hash candidate, never the
// plaintext. Nothing is persisted server-side until activation succeeds.
type Registrant struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

// Claims is the payload of access and refresh tokens: the account id plus
// registered claims.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// ActivationClaims is the payload of an activation token: the full pending
// registration and the one-time numeric code.
type ActivationClaims struct {
	User           Registrant `json:"user"`
	ActivationCode string     `json:"activationCode"`
	jwt.RegisteredClaims
}

// Config holds the immutable parameters of a Codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now overrides the time source for signing and verification.
	// Defaults to time.Now.
	Now func() time.Time
}

// Codec signs and verifies HS256 tokens for a single purpose.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a Codec. The secret must be non-empty
// and the TTL strictly positive.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token: invalid TTL")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Codec{config: cfg}, nil
}

// TTL returns the validity window tokens are signed with.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// Sign mints a token whose payload is the account id.
func (c *Codec) Sign(accountID string) (string, error) {
	now := c.config.Now()
	claims := Claims{
		ID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Verify parses and validates a token signed by Sign. It fails with
// ErrExpiredToken once the embedded expiry has passed and ErrInvalidToken
// for every other defect (bad signature, wrong secret, malformed input).
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignActivation mints an activation token embedding the pending
// registration and its one-time code.
func (c *Codec) SignActivation(user Registrant, code string) (string, error) {
	now := c.config.Now()
	claims := ActivationClaims{
		User:           user,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// VerifyActivation parses and validates a token signed by SignActivation.
func (c *Codec) VerifyActivation(tokenStr string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.config.Now),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

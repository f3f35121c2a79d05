package goAccounts

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login authenticates an email/password pair and establishes a session.
// A missing email or password, an unknown email, and a wrong password all
// fail without revealing which; the store snapshot is written before any
// token leaves the engine.
func (e *Engine) Login(ctx context.Context, email, passwd string) (*AuthResult, error) {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	if email == "" || passwd == "" {
		e.metricInc(MetricLoginFailure)
		return nil, ErrMissingCredentials
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventLogin, false, "", email, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.passwordHash.Verify(passwd, account.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLogin, false, account.ID, account.Email, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	result, err := e.issueBundle(ctx, account)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, account.ID, account.Email, nil, nil)
	return result, nil
}

// SocialAuth signs in an externally verified identity, creating the account
// on first contact. No password is involved; accounts created here carry an
// empty password hash and can only authenticate socially until a reset sets
// one.
func (e *Engine) SocialAuth(ctx context.Context, req SocialAuthRequest) (*AuthResult, error) {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	if req.Email == "" {
		return nil, ErrInvalidInput
	}

	account, err := e.accounts.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
	case errors.Is(err, ErrAccountNotFound):
		account, err = e.accounts.Create(ctx, CreateAccountInput{
			Name:       req.Name,
			Email:      req.Email,
			Avatar:     req.Avatar,
			Role:       "user",
			IsVerified: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	result, err := e.issueBundle(ctx, account)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSocialAuth)
	e.emitAudit(ctx, auditEventSocialAuth, true, account.ID, account.Email, nil, nil)
	return result, nil
}

// issueBundle mints a matched access+refresh pair, writes the session
// snapshot under the account id, and computes the cookie policies. Every
// sign-in and refresh funnels through here so cookie attributes cannot
// drift between entry points.
func (e *Engine) issueBundle(ctx context.Context, account *Account) (*AuthResult, error) {
	access, err := e.accessCodec.Sign(account.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := e.refreshCodec.Sign(account.ID)
	if err != nil {
		return nil, err
	}

	snapshot, err := encodeSnapshot(account)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.Set(ctx, account.ID, snapshot, e.config.Session.Lifetime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	e.metricInc(MetricSessionCreated)

	return &AuthResult{
		Account:       account,
		TokenPair:     TokenPair{AccessToken: access, RefreshToken: refresh},
		AccessCookie:  e.tokenCookie(e.config.Cookie.AccessName, access, e.config.Token.AccessTTL),
		RefreshCookie: e.tokenCookie(e.config.Cookie.RefreshName, refresh, e.config.Token.RefreshTTL),
	}, nil
}

func (e *Engine) tokenCookie(name, value string, ttl time.Duration) CookieSpec {
	path := e.config.Cookie.Path
	if path == "" {
		path = "/"
	}
	return CookieSpec{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   !e.config.Security.DevelopmentMode,
		SameSite: e.config.Cookie.SameSite,
	}
}

// expiredCookie clears a token cookie. Attributes other than max-age match
// tokenCookie so browsers treat it as the same cookie.
func (e *Engine) expiredCookie(name string) CookieSpec {
	spec := e.tokenCookie(name, "", 0)
	spec.MaxAge = -1
	return spec
}

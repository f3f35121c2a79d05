package goAccounts

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goAccounts/internal/flows"
	"github.com/MrEthical07/goAccounts/session"
)

// Refresh exchanges a valid refresh token for a new access+refresh pair.
// The session snapshot, not durable storage, is the identity source: a
// verified token whose snapshot is missing or expired fails with
// ErrUnauthenticated, while a defective token fails with ErrTokenInvalid
// or ErrTokenExpired. The snapshot TTL is renewed on every successful
// refresh.
//
// The presented refresh token is not rotated out: it stays valid until
// its own expiry, and an earlier pair can still refresh as long as the
// session lives.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	var account *Account

	result := flows.RunRefresh(ctx, refreshToken, flows.RefreshDeps{
		VerifyRefresh: func(tok string) (string, error) {
			claims, err := e.refreshCodec.Verify(tok)
			if err != nil {
				return "", err
			}
			return claims.ID, nil
		},
		LoadSession:     e.sessions.Get,
		SessionNotFound: session.ErrNotFound,
		Reissue: func(ctx context.Context, accountID, snapshot string) (string, string, error) {
			decoded, err := decodeSnapshot(snapshot)
			if err != nil {
				return "", "", err
			}
			account = decoded

			access, err := e.accessCodec.Sign(accountID)
			if err != nil {
				return "", "", err
			}
			refresh, err := e.refreshCodec.Sign(accountID)
			if err != nil {
				return "", "", err
			}
			if err := e.sessions.Set(ctx, accountID, snapshot, e.config.Session.Lifetime); err != nil {
				return "", "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
			}
			return access, refresh, nil
		},
	})

	if result.Failure != flows.RefreshFailureNone {
		e.metricInc(MetricRefreshFailure)
		mapped := mapRefreshFailure(result)
		e.emitAudit(ctx, auditEventRefresh, false, result.AccountID, "", mapped, nil)
		return nil, mapped
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, true, result.AccountID, account.Email, nil, nil)

	return &AuthResult{
		Account:       account,
		TokenPair:     TokenPair{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken},
		AccessCookie:  e.tokenCookie(e.config.Cookie.AccessName, result.AccessToken, e.config.Token.AccessTTL),
		RefreshCookie: e.tokenCookie(e.config.Cookie.RefreshName, result.RefreshToken, e.config.Token.RefreshTTL),
	}, nil
}

func mapRefreshFailure(result flows.RefreshResult) error {
	switch result.Failure {
	case flows.RefreshFailureNoToken:
		return ErrTokenInvalid
	case flows.RefreshFailureToken:
		return mapTokenError(result.Err)
	case flows.RefreshFailureSessionNotFound:
		return ErrUnauthenticated
	case flows.RefreshFailureSessionLookup:
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, result.Err)
	default:
		return result.Err
	}
}

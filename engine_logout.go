package goAccounts

import "context"

// Logout deletes the session snapshot for the identity in ctx and returns
// cookie specs that clear both token cookies. It is idempotent: a missing
// identity or an already-absent session still succeeds with the same
// clearing cookies, so repeated logouts and logouts after session expiry
// are indistinguishable from the first.
func (e *Engine) Logout(ctx context.Context) (CookieSpec, CookieSpec, error) {
	if e == nil || e.sessions == nil {
		return CookieSpec{}, CookieSpec{}, ErrEngineNotReady
	}

	access := e.expiredCookie(e.config.Cookie.AccessName)
	refresh := e.expiredCookie(e.config.Cookie.RefreshName)

	var accountID string
	if account, ok := IdentityFromContext(ctx); ok {
		accountID = account.ID
	}

	// session.Store tolerates the empty key; an unauthenticated logout is
	// a no-op delete.
	if err := e.sessions.Del(ctx, accountID); err != nil {
		return access, refresh, err
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, accountID, "", nil, nil)
	return access, refresh, nil
}

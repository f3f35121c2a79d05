package goAccounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAccounts/session"
)

// Authenticate resolves an access token to the live account it belongs to.
// The session snapshot is the trust boundary: a structurally valid token
// whose session has expired or been logged out yields ErrUnauthenticated.
// middleware.Guard calls this per request and places the account in the
// request context.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Account, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	if accessToken == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := e.accessCodec.Verify(accessToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	snapshot, err := e.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	account, err := decodeSnapshot(snapshot)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// CurrentAccount returns the authenticated account placed in ctx by
// middleware.Guard, or ErrUnauthenticated when the request never passed
// the guard.
func (e *Engine) CurrentAccount(ctx context.Context) (*Account, error) {
	account, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return account, nil
}

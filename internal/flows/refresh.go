// Package flows holds the flow logic of the two stateful protocols
// (activation, refresh) behind dependency structs, free of root package
// imports. The root engine wires concrete codecs and stores into the Deps
// and maps failure kinds to its public error taxonomy.
package flows

import (
	"context"
	"errors"
)

// RefreshFailureKind classifies refresh protocol failures for root-level
// error mapping. Every non-None kind is terminal for the request.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	// RefreshFailureNoToken: no refresh token was presented.
	RefreshFailureNoToken
	// RefreshFailureToken: signature or expiry validation failed.
	RefreshFailureToken
	// RefreshFailureSessionNotFound: the token verified but no live session
	// snapshot exists for the account. Callers surface this as
	// authentication-required, distinct from token defects.
	RefreshFailureSessionNotFound
	// RefreshFailureSessionLookup: the session backend was unreachable.
	RefreshFailureSessionLookup
	// RefreshFailureReissue: minting the new pair or rewriting the
	// snapshot failed.
	RefreshFailureReissue
)

// RefreshResult carries either the reissued pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	AccountID    string
	Snapshot     string
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh protocol dependencies.
type RefreshDeps struct {
	// VerifyRefresh validates the refresh token and returns the embedded
	// account id.
	VerifyRefresh func(string) (string, error)
	// LoadSession returns the serialized snapshot for an account id.
	LoadSession func(context.Context, string) (string, error)
	// SessionNotFound is the sentinel LoadSession returns for a missing or
	// expired snapshot.
	SessionNotFound error
	// Reissue mints a fresh access+refresh pair from the snapshot and
	// rewrites the stored snapshot as a side effect.
	Reissue func(context.Context, string, string) (string, string, error)
}

// RunRefresh executes the refresh state machine:
// Start -> TokenVerified -> SessionLoaded -> Reissued, terminal Rejected at
// any gate. The snapshot, not durable storage, is authoritative for the
// reissued identity.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureNoToken}
	}

	accountID, err := deps.VerifyRefresh(refreshToken)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureToken,
			Err:     err,
		}
	}

	snapshot, err := deps.LoadSession(ctx, accountID)
	if err != nil {
		kind := RefreshFailureSessionLookup
		if deps.SessionNotFound != nil && errors.Is(err, deps.SessionNotFound) {
			kind = RefreshFailureSessionNotFound
		}
		return RefreshResult{
			Failure:   kind,
			Err:       err,
			AccountID: accountID,
		}
	}

	access, refresh, err := deps.Reissue(ctx, accountID, snapshot)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureReissue,
			Err:       err,
			AccountID: accountID,
			Snapshot:  snapshot,
		}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		AccountID:    accountID,
		Snapshot:     snapshot,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

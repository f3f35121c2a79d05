package flows

import (
	"context"
	"crypto/subtle"

	"github.com/MrEthical07/goAccounts/token"
)

// ActivationFailureKind classifies activation failures for root-level
// error mapping.
type ActivationFailureKind int

const (
	ActivationFailureNone ActivationFailureKind = iota
	// ActivationFailureToken: the activation token failed signature or
	// expiry validation.
	ActivationFailureToken
	// ActivationFailureCodeMismatch: the supplied code does not equal the
	// embedded one. The token is NOT consumed; re-attempts are allowed
	// until natural expiry.
	ActivationFailureCodeMismatch
	// ActivationFailureDuplicate: an account with the pending email
	// already exists.
	ActivationFailureDuplicate
	// ActivationFailureLookup: the duplicate check could not be performed.
	ActivationFailureLookup
	// ActivationFailureCreate: durable account creation failed.
	ActivationFailureCreate
)

// ActivationResult carries the materialized registrant or failure metadata.
type ActivationResult struct {
	Failure    ActivationFailureKind
	Err        error
	Registrant token.Registrant
}

// ActivationDeps captures activation flow dependencies.
type ActivationDeps struct {
	// Verify validates the activation token and returns its claims.
	Verify func(string) (*token.ActivationClaims, error)
	// AccountExists reports whether an account with the email already
	// exists in durable storage.
	AccountExists func(context.Context, string) (bool, error)
	// Create durably commits the account. It runs only after the code
	// matched and the duplicate check passed.
	Create func(context.Context, token.Registrant) error
}

// RunActivation verifies the token, compares the supplied code against the
// embedded one, and materializes the account. Code comparison is
// constant-time exact string equality over the fixed 4-digit code; no
// numeric coercion can produce a false match.
func RunActivation(ctx context.Context, tokenStr, suppliedCode string, deps ActivationDeps) ActivationResult {
	claims, err := deps.Verify(tokenStr)
	if err != nil {
		return ActivationResult{
			Failure: ActivationFailureToken,
			Err:     err,
		}
	}

	if len(suppliedCode) != len(claims.ActivationCode) ||
		subtle.ConstantTimeCompare([]byte(suppliedCode), []byte(claims.ActivationCode)) != 1 {
		return ActivationResult{
			Failure:    ActivationFailureCodeMismatch,
			Registrant: claims.User,
		}
	}

	exists, err := deps.AccountExists(ctx, claims.User.Email)
	if err != nil {
		return ActivationResult{
			Failure:    ActivationFailureLookup,
			Err:        err,
			Registrant: claims.User,
		}
	}
	if exists {
		return ActivationResult{
			Failure:    ActivationFailureDuplicate,
			Registrant: claims.User,
		}
	}

	if err := deps.Create(ctx, claims.User); err != nil {
		return ActivationResult{
			Failure:    ActivationFailureCreate,
			Err:        err,
			Registrant: claims.User,
		}
	}

	return ActivationResult{
		Failure:    ActivationFailureNone,
		Registrant: claims.User,
	}
}

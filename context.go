package goAccounts

import "context"

type identityContextKey struct{}

// WithIdentity attaches the authenticated account to ctx. The identity is
// an explicit optional value, not a mutable property bag: absence simply
// means the request is unauthenticated.
func WithIdentity(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, identityContextKey{}, account)
}

// IdentityFromContext returns the account attached by [WithIdentity], or
// (nil, false) when the request carries no identity.
func IdentityFromContext(ctx context.Context) (*Account, bool) {
	if ctx == nil {
		return nil, false
	}
	account, ok := ctx.Value(identityContextKey{}).(*Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}

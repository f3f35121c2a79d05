package goAccounts

import (
	"errors"
	"net/http"
)

var (
	// ErrPasswordMismatch is returned by Register when password and
	// confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingCredentials is returned by Login when email or password is
	// empty.
	ErrMissingCredentials = errors.New("please enter your email and password")
	// ErrInvalidInput is returned when a registration or profile request is
	// structurally incomplete.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned by Login for unknown email or wrong
	// password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenInvalid is returned when a token fails signature or claim
	// validation.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrActivationCodeMismatch is returned by Activate when the supplied
	// code does not equal the embedded one. The token stays usable until it
	// expires.
	ErrActivationCodeMismatch = errors.New("invalid activation code")
	// ErrAccountExists is returned when an email is already taken.
	ErrAccountExists = errors.New("email already exists")
	// ErrAccountNotFound is returned when no account matches the request.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnauthenticated is returned when no live session backs the request.
	// Distinct from ErrTokenInvalid: it means "log in again", not
	// "malformed request".
	ErrUnauthenticated = errors.New("please login to access this resource")
	// ErrResetInvalid is returned for an unknown, already-used, or expired
	// password reset token.
	ErrResetInvalid = errors.New("password reset token is invalid or has expired")
	// ErrStoreUnavailable wraps durable account store failures.
	ErrStoreUnavailable = errors.New("account backend unavailable")
	// ErrSessionUnavailable wraps session store failures.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrNotifierUnavailable wraps mail delivery failures where delivery is
	// required (activation, reset request).
	ErrNotifierUnavailable = errors.New("mail could not be sent")
	// ErrEngineNotReady is returned when a dependency was not wired.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// StatusOf maps an engine error to its HTTP-equivalent status code. It is
// the single boundary between the typed failures of the core and the
// transport layer; the core itself never renders responses.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrActivationCodeMismatch),
		errors.Is(err, ErrResetInvalid),
		errors.Is(err, ErrAccountNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

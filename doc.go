// Package goAccounts provides a user-account lifecycle engine: registration
// with email-code activation, credential and social login, and session
// continuity through short-lived JWT access tokens paired with long-lived
// refresh tokens backed by a Redis session snapshot store.
//
// The package is the token/session core only. HTTP routing, request
// validation, mail template rendering, and image upload are external
// collaborators: integrators supply an [AccountStore], a [Notifier], and a
// Redis client, and map the sentinel errors to transport responses with
// [StatusOf].
//
// # Architecture boundaries
//
// goAccounts is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Account, AuthResult, CookieSpec). Flow
// orchestration for the activation and refresh state machines lives under
// internal/flows; token signing under token/; snapshot persistence under
// session/.
//
// Engine methods are safe for concurrent use after [Builder.Build]. No
// cross-request locking is performed: concurrent refreshes for one account
// race on the snapshot with last-write-wins semantics.
//
// The engine never logs and never renders responses. Every failure is a
// typed sentinel; security-relevant operations emit audit events to an
// attached [AuditSink].
package goAccounts

package goAccounts

import (
	"context"
	"errors"
	"fmt"
)

// UpdateProfile applies name/email changes to the identity in ctx. Empty
// fields are left unchanged. An email change is pre-checked for collision
// with another account; on success the session snapshot is rewritten so
// subsequent requests in the same session see the new profile.
func (e *Engine) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Account, error) {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.CurrentAccount(ctx)
	if err != nil {
		return nil, err
	}

	if update.Email != "" && update.Email != account.Email {
		if other, err := e.accounts.FindByEmail(ctx, update.Email); err == nil && other.ID != account.ID {
			e.emitAudit(ctx, auditEventProfileUpdate, false, account.ID, account.Email, ErrAccountExists, nil)
			return nil, ErrAccountExists
		} else if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		account.Email = update.Email
	}
	if update.Name != "" {
		account.Name = update.Name
	}

	if err := e.saveAndResnapshot(ctx, account); err != nil {
		return nil, err
	}

	e.metricInc(MetricProfileUpdate)
	e.emitAudit(ctx, auditEventProfileUpdate, true, account.ID, account.Email, nil, nil)
	return account, nil
}

// ChangePassword verifies the current password before storing the new
// hash. The session snapshot is rewritten rather than invalidated: the
// caller keeps their session, but the snapshot reflects the updated
// record. Social-only accounts carry no hash and cannot change a password
// here; they must go through the reset flow first.
func (e *Engine) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	if oldPassword == "" || newPassword == "" {
		return ErrMissingCredentials
	}

	account, err := e.CurrentAccount(ctx)
	if err != nil {
		return err
	}

	// The snapshot strips the hash; re-read the durable record for it.
	stored, err := e.accounts.FindByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.passwordHash.Verify(oldPassword, stored.PasswordHash)
	if err != nil || !ok {
		e.emitAudit(ctx, auditEventPasswordChange, false, account.ID, account.Email, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return ErrInvalidInput
	}
	stored.PasswordHash = hash

	if err := e.saveAndResnapshot(ctx, stored); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, auditEventPasswordChange, true, account.ID, account.Email, nil, nil)
	return nil
}

// UpdateAvatar swaps the stored avatar handle for the identity in ctx and
// rewrites the session snapshot. The upload and any old-image cleanup are
// the caller's concern.
func (e *Engine) UpdateAvatar(ctx context.Context, avatar *Avatar) (*Account, error) {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.CurrentAccount(ctx)
	if err != nil {
		return nil, err
	}

	account.Avatar = avatar
	if err := e.saveAndResnapshot(ctx, account); err != nil {
		return nil, err
	}

	e.metricInc(MetricProfileUpdate)
	e.emitAudit(ctx, auditEventProfileUpdate, true, account.ID, account.Email, nil, nil)
	return account, nil
}

// saveAndResnapshot commits the account and rewrites its session snapshot
// with a fresh lifetime.
func (e *Engine) saveAndResnapshot(ctx context.Context, account *Account) error {
	if err := e.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	snapshot, err := encodeSnapshot(account)
	if err != nil {
		return err
	}
	if err := e.sessions.Set(ctx, account.ID, snapshot, e.config.Session.Lifetime); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

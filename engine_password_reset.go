package goAccounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAccounts/internal"
)

// RequestPasswordReset mints a random reset token for the account behind
// email, stores only its SHA-256 digest together with an expiry, and mails
// the raw token. If mail delivery fails the stored digest is cleared so no
// orphaned reset window remains open.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil || e.notifier == nil {
		return ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return ErrResetInvalid
	}
	if email == "" {
		return ErrInvalidInput
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rawToken, err := internal.NewResetToken()
	if err != nil {
		return err
	}
	account.ResetTokenHash = internal.HashResetToken(rawToken)
	account.ResetTokenExpires = e.clock.Now().Add(e.config.PasswordReset.ResetTTL)
	if err := e.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	mail := Mail{
		To:       account.Email,
		Subject:  e.config.Mail.ResetSubject,
		Template: e.config.Mail.ResetTemplate,
		Data: map[string]any{
			"name":       account.Name,
			"resetToken": rawToken,
			"resetLink":  e.config.PasswordReset.BaseURL + "/" + rawToken,
		},
	}
	if err := e.notifier.Send(ctx, mail); err != nil {
		e.metricInc(MetricMailFailure)
		e.metricInc(MetricPasswordResetFailure)
		account.ResetTokenHash = ""
		account.ResetTokenExpires = time.Time{}
		if saveErr := e.accounts.Save(ctx, account); saveErr != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, saveErr)
		}
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, account.ID, account.Email, ErrNotifierUnavailable, nil)
		return fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, account.ID, account.Email, nil, nil)
	return nil
}

// ResetPassword redeems a raw reset token. The token is single-use: the
// stored digest is cleared on success, and the account's session snapshot
// is deleted so any live session must re-authenticate with the new
// password. An unknown or expired token fails with ErrResetInvalid without
// indicating which.
func (e *Engine) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if e == nil || e.accounts == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return ErrResetInvalid
	}
	if rawToken == "" || newPassword == "" {
		return ErrInvalidInput
	}

	account, err := e.accounts.FindByResetTokenHash(ctx, internal.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", "", ErrResetInvalid, nil)
			return ErrResetInvalid
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if account.ResetTokenExpires.IsZero() || e.clock.Now().After(account.ResetTokenExpires) {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, account.ID, account.Email, ErrResetInvalid, nil)
		return ErrResetInvalid
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return ErrInvalidInput
	}

	account.PasswordHash = hash
	account.ResetTokenHash = ""
	account.ResetTokenExpires = time.Time{}
	if err := e.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Force re-authentication everywhere the old password was live.
	if err := e.sessions.Del(ctx, account.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, account.ID, account.Email, nil, nil)
	return nil
}

package goAccounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAccounts/internal"
	"github.com/MrEthical07/goAccounts/internal/flows"
	"github.com/MrEthical07/goAccounts/token"
)

// Register validates the request, issues a self-contained activation token
// embedding the pending registration and a 4-digit code, and mails the
// code to the address. Nothing is persisted: the account does not exist
// until [Engine.Activate] succeeds. The returned token is handed to the
// client; the code travels only by mail.
//
// A mail delivery failure aborts registration: without the code the token
// is useless.
func (e *Engine) Register(ctx context.Context, req RegistrationRequest) (string, error) {
	if e == nil || e.accounts == nil || e.notifier == nil {
		return "", ErrEngineNotReady
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		e.metricInc(MetricRegistrationFailure)
		return "", ErrInvalidInput
	}
	if req.Password != req.ConfirmPassword {
		e.metricInc(MetricRegistrationFailure)
		return "", ErrPasswordMismatch
	}

	if _, err := e.accounts.FindByEmail(ctx, req.Email); err == nil {
		e.metricInc(MetricRegistrationFailure)
		e.emitAudit(ctx, auditEventRegistration, false, "", req.Email, ErrAccountExists, nil)
		return "", ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		e.metricInc(MetricRegistrationFailure)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricRegistrationFailure)
		return "", ErrInvalidInput
	}

	code, err := internal.NewActivationCode()
	if err != nil {
		e.metricInc(MetricRegistrationFailure)
		return "", err
	}

	activationToken, err := e.activationCodec.SignActivation(token.Registrant{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}, code)
	if err != nil {
		e.metricInc(MetricRegistrationFailure)
		return "", err
	}

	mail := Mail{
		To:       req.Email,
		Subject:  e.config.Mail.ActivationSubject,
		Template: e.config.Mail.ActivationTemplate,
		Data: map[string]any{
			"name":           req.Name,
			"activationCode": code,
		},
	}
	if err := e.notifier.Send(ctx, mail); err != nil {
		e.metricInc(MetricRegistrationFailure)
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventRegistration, false, "", req.Email, ErrNotifierUnavailable, nil)
		return "", fmt.Errorf("%w: %v", ErrNotifierUnavailable, err)
	}

	e.metricInc(MetricRegistration)
	e.emitAudit(ctx, auditEventRegistration, true, "", req.Email, nil, nil)
	return activationToken, nil
}

// Activate verifies the activation token, compares the supplied code to
// the embedded one, and materializes the account. A code mismatch does not
// consume the token; re-attempts are allowed until the 5-minute expiry.
// The welcome mail is best-effort: the account stays created even when
// delivery fails.
func (e *Engine) Activate(ctx context.Context, activationToken, suppliedCode string) (*Account, error) {
	if e == nil || e.accounts == nil || e.notifier == nil {
		return nil, ErrEngineNotReady
	}

	var created *Account

	result := flows.RunActivation(ctx, activationToken, suppliedCode, flows.ActivationDeps{
		Verify: e.activationCodec.VerifyActivation,
		AccountExists: func(ctx context.Context, email string) (bool, error) {
			_, err := e.accounts.FindByEmail(ctx, email)
			if err == nil {
				return true, nil
			}
			if errors.Is(err, ErrAccountNotFound) {
				return false, nil
			}
			return false, err
		},
		Create: func(ctx context.Context, reg token.Registrant) error {
			account, err := e.accounts.Create(ctx, CreateAccountInput{
				Name:         reg.Name,
				Email:        reg.Email,
				PasswordHash: reg.PasswordHash,
				Role:         "user",
				IsVerified:   true,
			})
			if err != nil {
				return err
			}
			created = account
			return nil
		},
	})

	if result.Failure != flows.ActivationFailureNone {
		e.metricInc(MetricActivationFailure)
		mapped := mapActivationFailure(result)
		e.emitAudit(ctx, auditEventActivation, false, "", result.Registrant.Email, mapped, nil)
		return nil, mapped
	}

	// The account is durably committed at this point; welcome delivery
	// failure must not roll it back.
	welcome := Mail{
		To:       created.Email,
		Subject:  e.config.Mail.WelcomeSubject,
		Template: e.config.Mail.WelcomeTemplate,
		Data:     map[string]any{"name": created.Name},
	}
	if err := e.notifier.Send(ctx, welcome); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventWelcomeMail, false, created.ID, created.Email, err, nil)
	}

	e.metricInc(MetricActivationSuccess)
	e.emitAudit(ctx, auditEventActivation, true, created.ID, created.Email, nil, nil)
	return created, nil
}

func mapActivationFailure(result flows.ActivationResult) error {
	switch result.Failure {
	case flows.ActivationFailureToken:
		return mapTokenError(result.Err)
	case flows.ActivationFailureCodeMismatch:
		return ErrActivationCodeMismatch
	case flows.ActivationFailureDuplicate:
		return ErrAccountExists
	case flows.ActivationFailureLookup, flows.ActivationFailureCreate:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	default:
		return ErrStoreUnavailable
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

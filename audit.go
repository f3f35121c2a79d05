package goAccounts

// Audit event type names emitted by the engine.
const (
	auditEventRegistration         = "registration"
	auditEventActivation           = "activation"
	auditEventLogin                = "login"
	auditEventSocialAuth           = "social_auth"
	auditEventRefresh              = "refresh"
	auditEventLogout               = "logout"
	auditEventProfileUpdate        = "profile_update"
	auditEventPasswordChange       = "password_change"
	auditEventPasswordResetRequest = "password_reset_request"
	auditEventPasswordResetConfirm = "password_reset_confirm"
	auditEventWelcomeMail          = "welcome_mail"
)

package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SignInAlertEmailData holds data for the new sign-in notification.
type SignInAlertEmailData struct {
	Email       string
	DisplayName string
	SignedInAt  time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendSignInAlert(ctx context.Context, data *SignInAlertEmailData) error
}

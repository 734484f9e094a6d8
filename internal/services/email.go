package services

import (
	"context"
	"fmt"
	"log/slog"

	"pintapoa/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendSignInAlert notifies an admin that their account was used to sign in.
func (s *emailService) SendSignInAlert(ctx context.Context, data *domain.SignInAlertEmailData) error {
	if data == nil {
		return fmt.Errorf("sign-in alert data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("sign_in_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render sign_in_alert template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send sign-in alert: %w", err)
	}
	s.logger.InfoContext(ctx, "sign-in alert sent", "to", data.Email)
	return nil
}

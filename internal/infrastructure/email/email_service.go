package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/ports"
)

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
}

// EmailService sends transactional mail through SendGrid.
type EmailService struct {
	config *EmailConfig
	logger *logrus.Logger
	client *sendgrid.Client
}

// NewEmailService creates a new email service instance
func NewEmailService(config *EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	if config.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is not configured")
	}
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	return &EmailService{
		config: config,
		logger: logger,
		client: client,
	}, nil
}

// SendVerificationEmail mails the account verification link.
func (e *EmailService) SendVerificationEmail(_ context.Context, email, username, token string) error {
	verificationLink := fmt.Sprintf("%s/auth/verify-email?token=%s", e.config.BaseURL, token)

	htmlContent := fmt.Sprintf(`<!DOCTYPE html>
<p>Hi %s,</p>
<p>Please verify your email by clicking the link below:</p>
<p><a href="%s">Verify email</a></p>
<p>%s</p>`, username, verificationLink, e.config.CompanyName)

	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail(username, email)
	message := mail.NewSingleEmail(from, "Verify your email address", recipient, "", htmlContent)

	resp, err := e.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected verification email: status %d", resp.StatusCode)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{"email": email}).Info("verification email sent")
	}
	return nil
}

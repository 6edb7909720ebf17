// Package mailer sends transactional email through Resend. Deployments
// without an API key fall back to logging the would-be email, which keeps
// local development working without outbound mail.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/alxdev/echocheck-backend/internal/models"
	"github.com/alxdev/echocheck-backend/pkg/logger"
)

// Mailer delivers the two transactional emails the product sends.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, purpose models.VerificationPurpose, expiresIn time.Duration) error
	SendWelcome(ctx context.Context, to string) error
}

// Config holds delivery settings. An empty APIKey selects the log-only
// mailer.
type Config struct {
	APIKey string
	From   string
}

// New picks the Resend-backed mailer or the log-only fallback.
func New(cfg Config, log logger.Logger) Mailer {
	if cfg.APIKey == "" {
		log.Warn("no resend api key configured, emails will only be logged")
		return &LogMailer{logger: log}
	}
	return &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
		logger: log,
	}
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger logger.Logger
}

func (m *ResendMailer) SendVerificationCode(ctx context.Context, to, code string, purpose models.VerificationPurpose, expiresIn time.Duration) error {
	subject, html, text := verificationEmail(code, purpose, expiresIn)

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	m.logger.Info("verification email sent",
		logger.String("to", to),
		logger.String("purpose", string(purpose)),
		logger.String("emailId", sent.Id),
	)
	return nil
}

func (m *ResendMailer) SendWelcome(ctx context.Context, to string) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: welcomeSubject,
		Html:    welcomeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	m.logger.Info("welcome email sent",
		logger.String("to", to),
		logger.String("emailId", sent.Id),
	)
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger logger.Logger
}

func (m *LogMailer) SendVerificationCode(_ context.Context, to, code string, purpose models.VerificationPurpose, expiresIn time.Duration) error {
	m.logger.Info("verification email (log only)",
		logger.String("to", to),
		logger.String("purpose", string(purpose)),
		logger.String("code", code),
		logger.Duration("expiresIn", expiresIn),
	)
	return nil
}

func (m *LogMailer) SendWelcome(_ context.Context, to string) error {
	m.logger.Info("welcome email (log only)", logger.String("to", to))
	return nil
}

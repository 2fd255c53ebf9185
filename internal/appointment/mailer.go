package appointment

import (
	"context"
	"fmt"
	"strings"

	apperr "github.com/yungbote/clinicscribe-backend/internal/pkg/errors"
	"github.com/yungbote/clinicscribe-backend/internal/platform/logger"
	"github.com/yungbote/clinicscribe-backend/internal/platform/sendgrid"
)

//go:generate mockgen -source=mailer.go -destination=mocks/mock_mailer.go -package=mocks

// Mailer delivers one email. It must not retry; callers rely on at-most-once
// delivery per call.
type Mailer interface {
	Send(ctx context.Context, to string, email Email) (string, error)
}

// SendGridMailer delivers through SendGrid. With enabled=false every send
// fails with ErrEmailDisabled.
type SendGridMailer struct {
	log     *logger.Logger
	client  sendgrid.Client
	enabled bool
}

func NewSendGridMailer(log *logger.Logger, client sendgrid.Client, enabled bool) *SendGridMailer {
	return &SendGridMailer{log: log.With("service", "SendGridMailer"), client: client, enabled: enabled}
}

func (m *SendGridMailer) Send(ctx context.Context, to string, email Email) (string, error) {
	if !m.enabled {
		m.log.Info("Email sending is disabled by EMAIL_ENABLED flag")
		return "", apperr.ErrEmailDisabled
	}
	if m.client == nil {
		m.log.Error("SendGrid client not configured")
		return "", fmt.Errorf("email service: %w", apperr.ErrNotConfigured)
	}
	res, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: strings.TrimSpace(to)}},
		Subject:    email.Subject,
		Text:       email.Body,
		Categories: []string{"appointment"},
	})
	if err != nil {
		m.log.Error("Failed to send email", "recipient", to, "error", err.Error())
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Info("Email sent", "recipient", to, "status", res.StatusCode, "message_id", res.MessageID)
	return fmt.Sprintf("Email sent to %s", strings.TrimSpace(to)), nil
}

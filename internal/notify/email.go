package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, console) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// NewSendGridSender creates a new SendGrid email sender. Returns nil when no
// API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Surabi Dental Care"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends an email via SendGrid, attaching the QR PNG when present.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	if msg.To.Email == "" {
		return fmt.Errorf("notify: message %s has no email recipient", msg.ID)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.To.Name, msg.To.Email)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)

	if msg.Attachment != nil {
		att := mail.NewAttachment()
		att.SetFilename(msg.Attachment.Filename)
		att.SetType(msg.Attachment.ContentType)
		att.SetContent(base64.StdEncoding.EncodeToString(msg.Attachment.Data))
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To.Email, "kind", msg.Kind)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "to", msg.To.Email, "kind", msg.Kind)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To.Email, "kind", msg.Kind, "status", response.StatusCode)
	return nil
}

// ConsoleSender prints notifications to the log. Used in development, the way
// a console email backend would be.
type ConsoleSender struct {
	logger *logging.Logger
}

// NewConsoleSender creates a console sender.
func NewConsoleSender(logger *logging.Logger) *ConsoleSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConsoleSender{logger: logger}
}

// Send logs the message instead of delivering it.
func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	attached := ""
	if msg.Attachment != nil {
		attached = msg.Attachment.Filename
	}
	s.logger.Info("console notification",
		"kind", msg.Kind,
		"to_email", msg.To.Email,
		"to_phone", msg.To.Phone,
		"subject", msg.Subject,
		"body", msg.Body,
		"attachment", attached,
	)
	return nil
}

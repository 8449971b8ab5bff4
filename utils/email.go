package utils

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// MailSender is the part of the SendGrid client the mailer uses.
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends crawl reports through SendGrid.
type Mailer struct {
	Client    MailSender
	FromName  string
	FromEmail string
	ToEmail   string
	Log       *zap.Logger
}

// NewMailer creates a SendGrid backed mailer.
func NewMailer(apiKey, from, to string, log *zap.Logger) (*Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}
	if to == "" {
		return nil, fmt.Errorf("REPORT_EMAIL is not set in environment variables")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{
		Client:    sendgrid.NewSendClient(apiKey),
		FromName:  "Price Crawler",
		FromEmail: from,
		ToEmail:   to,
		Log:       log,
	}, nil
}

// Notify sends a plain text and HTML message to the report address.
func (m *Mailer) Notify(ctx context.Context, subject, textContent, htmlContent string) error {
	from := mail.NewEmail(m.FromName, m.FromEmail)
	to := mail.NewEmail("", m.ToEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)

	response, err := m.Client.SendWithContext(ctx, message)
	if err != nil {
		m.Log.Error("error sending email", zap.String("to", m.ToEmail), zap.Error(err))
		return err
	}

	if response.StatusCode >= 400 {
		m.Log.Error("SendGrid API error", zap.Int("status", response.StatusCode), zap.String("body", response.Body))
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	m.Log.Info("email sent", zap.String("to", m.ToEmail), zap.Int("status", response.StatusCode))
	return nil
}

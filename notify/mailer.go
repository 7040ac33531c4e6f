package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const senderName = "FIR Portal"

// SendgridMailer sends email through SendGrid
type SendgridMailer struct {
	APIKey string
	From   string
}

// NewSendgridMailer creates a mailer for the given API key and sender address
func NewSendgridMailer(apiKey, from string) *SendgridMailer {
	return &SendgridMailer{APIKey: apiKey, From: from}
}

// Send delivers one email
func (s *SendgridMailer) Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(senderName, s.From)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(s.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", toEmail, "subject", subject)
	return nil
}

package notify

import (
	"context"
	"fmt"

	"github.com/segyhp/rental-engine/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) SendEmail(ctx context.Context, toName, toEmail, subject, plainText, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, html)

	client := sendgrid.NewSendClient(s.apiKey)
	logger.ExternalServiceCall("sendgrid", "send_email", "to", toEmail)
	response, err := client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "send_email", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	return nil
}

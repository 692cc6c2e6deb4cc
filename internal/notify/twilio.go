package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/segyhp/rental-engine/internal/logger"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSender{client: client, from: from}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toE164(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	logger.ExternalServiceCall("twilio", "create_message", "to", to)
	_, err := s.client.Api.CreateMessage(params)
	logger.ExternalServiceResult("twilio", "create_message", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// SendPaymentLink texts the checkout link for a mobile money payment.
func (s *TwilioSender) SendPaymentLink(ctx context.Context, phone, url string) error {
	return s.SendSMS(ctx, phone, "Complete your car rental payment here: "+url)
}

// toE164 rewrites local Ghana numbers (0XXXXXXXXX) to +233 form.
func toE164(phone string) string {
	if strings.HasPrefix(phone, "0") {
		return "+233" + phone[1:]
	}
	return phone
}

package clients

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// TwilioSMS sends text messages through the Twilio REST API.
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

func NewTwilioSMS(accountSID, authToken, from string, logger *zap.Logger) *TwilioSMS {
	return &TwilioSMS{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:   from,
		logger: logger,
	}
}

func (t *TwilioSMS) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		t.logger.Info("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	} else {
		t.logger.Warn("sms sent without sid", zap.String("to", to))
	}
	return nil
}

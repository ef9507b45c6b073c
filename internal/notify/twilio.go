package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioWhatsApp sends WhatsApp messages through the Twilio Messages API.
type TwilioWhatsApp struct {
	client     *twilio.RestClient
	fromNumber string
	create     func(params *twilioApi.CreateMessageParams) error
}

// NewTwilioWhatsApp creates the sender. Missing credentials yield a sender
// whose sends fail with ErrNotConfigured.
func NewTwilioWhatsApp(accountSID, authToken, fromNumber string) *TwilioWhatsApp {
	t := &TwilioWhatsApp{fromNumber: strings.TrimPrefix(strings.TrimPrefix(fromNumber, "whatsapp:"), "+")}
	if accountSID == "" || authToken == "" {
		return t
	}
	t.client = twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	t.create = func(params *twilioApi.CreateMessageParams) error {
		_, err := t.client.Api.CreateMessage(params)
		return err
	}
	return t
}

func (t *TwilioWhatsApp) SendWhatsApp(msg WhatsAppMessage) error {
	if t.create == nil || t.fromNumber == "" {
		return ErrNotConfigured
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + strings.TrimPrefix(msg.To, "+"))
	params.SetFrom("whatsapp:+" + t.fromNumber)
	if msg.ContentSID != "" {
		params.SetContentSid(msg.ContentSID)
		if len(msg.ContentVariables) > 0 {
			vars, err := json.Marshal(msg.ContentVariables)
			if err != nil {
				return fmt.Errorf("encoding content variables: %w", err)
			}
			params.SetContentVariables(string(vars))
		}
	} else {
		params.SetBody(msg.Body)
	}

	if err := t.create(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	return nil
}

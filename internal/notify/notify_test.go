package notify

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerNotConfigured(t *testing.T) {
	m := NewSMTPMailer("", "587", "", "", "")
	assert.ErrorIs(t, m.SendEmail("a@b.co", "hola", "body"), ErrNotConfigured)
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "gym@example.com", "secret", "")
	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, "gym@example.com", from)
		assert.Equal(t, []string{"ana@example.com"}, to)
		assert.NotNil(t, a)
		return nil
	}

	require.NoError(t, m.SendEmail("ana@example.com", "Tu membresía", "<p>Hola</p>"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Tu membresía\r\n")
	assert.True(t, strings.HasSuffix(string(gotMsg), "<p>Hola</p>"))
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "", "", "gym@example.com")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return nil }
	assert.Error(t, m.SendEmail("a@b.co\r\nBcc: x@y.z", "s", "b"))
}

func TestTwilioWhatsAppNotConfigured(t *testing.T) {
	w := NewTwilioWhatsApp("", "", "")
	assert.ErrorIs(t, w.SendWhatsApp(WhatsAppMessage{To: "5491155550000", Body: "hola"}), ErrNotConfigured)
}

func TestTwilioWhatsAppFormatsNumbers(t *testing.T) {
	w := NewTwilioWhatsApp("AC123", "token", "whatsapp:+14155238886")
	var captured *twilioApi.CreateMessageParams
	w.create = func(p *twilioApi.CreateMessageParams) error {
		captured = p
		return nil
	}

	require.NoError(t, w.SendWhatsApp(WhatsAppMessage{To: "5491155550000", Body: "hola"}))
	require.NotNil(t, captured)
	assert.Equal(t, "whatsapp:+5491155550000", *captured.To)
	assert.Equal(t, "whatsapp:+14155238886", *captured.From)
	assert.Equal(t, "hola", *captured.Body)
}

func TestTwilioWhatsAppWrapsProviderError(t *testing.T) {
	w := NewTwilioWhatsApp("AC123", "token", "+14155238886")
	w.create = func(*twilioApi.CreateMessageParams) error { return errors.New("21211 invalid to") }

	err := w.SendWhatsApp(WhatsAppMessage{To: "549", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

// Package notify delivers outbound messages through external providers.
package notify

import "errors"

// ErrNotConfigured is returned when a provider has no credentials. Callers
// record the send as failed instead of treating it as an exception.
var ErrNotConfigured = errors.New("provider credentials not configured")

// EmailSender delivers a single email.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// WhatsAppMessage is a WhatsApp send. When ContentSID is set the provider's
// approved template is used with ContentVariables; Body is the fallback text.
type WhatsAppMessage struct {
	To               string // digits only, country code included
	Body             string
	ContentSID       string
	ContentVariables map[string]string
}

type WhatsAppSender interface {
	SendWhatsApp(msg WhatsAppMessage) error
}

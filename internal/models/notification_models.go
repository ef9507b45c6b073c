package models

import "time"

const (
	NotificationEmail    = "EMAIL"
	NotificationWhatsApp = "WHATSAPP"
	NotificationSMS      = "SMS"
	NotificationPush     = "PUSH"
)

const (
	NotificationPending   = "PENDING"
	NotificationSent      = "SENT"
	NotificationFailed    = "FAILED"
	NotificationCancelled = "CANCELLED"
)

// Notification is the delivery log of a single outbound message.
type Notification struct {
	ID           string    `json:"id" db:"id"`
	Type         string    `json:"type" db:"type"`
	Recipient    string    `json:"recipient" db:"recipient"`
	Subject      *string   `json:"subject,omitempty" db:"subject"`
	Content      string    `json:"content" db:"content"`
	Status       string    `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	MembershipID *string   `json:"membership_id,omitempty" db:"membership_id"`
	TemplateID   *string   `json:"template_id,omitempty" db:"template_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NotificationTemplate holds a message body with {{variable}} placeholders.
type NotificationTemplate struct {
	ID                   string    `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Description          *string   `json:"description,omitempty" db:"description"`
	Type                 string    `json:"type" db:"type"`
	Content              string    `json:"content" db:"content"`
	Variables            []string  `json:"variables" db:"variables"`
	Subject              *string   `json:"subject,omitempty" db:"subject"`
	IsDefault            bool      `json:"is_default" db:"is_default"`
	WhatsAppTemplateName *string   `json:"whatsapp_template_name,omitempty" db:"whatsapp_template_name"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type NotificationFilters struct {
	Type         string
	Status       string
	UserID       string
	MembershipID string
	Page         int
	PageSize     int
}

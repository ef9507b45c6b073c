package models

import "time"

const (
	MembershipMonthly    = "monthly"
	MembershipKickboxing = "kickboxing"
	MembershipQuarterly  = "quarterly"
	MembershipBiannual   = "biannual"
	MembershipAnnual     = "annual"
)

const (
	MembershipStatusActive  = "active"
	MembershipStatusExpired = "expired"
	MembershipStatusPending = "pending"
)

// MembershipTypes lists every valid plan, in display order.
var MembershipTypes = []string{MembershipMonthly, MembershipKickboxing, MembershipQuarterly, MembershipBiannual, MembershipAnnual}

// Membership is a user's paid plan. EndDate is always derived from Type.
type Membership struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Type        string    `json:"type" db:"type"`
	Status      string    `json:"status" db:"status"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	DaysPerWeek *int      `json:"days_per_week,omitempty" db:"days_per_week"`
	Price       float64   `json:"price" db:"price"`
	AutoRenew   bool      `json:"auto_renew" db:"auto_renew"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MembershipFilters narrows FindAll; empty fields are ignored.
type MembershipFilters struct {
	UserID string
	Status string
	Type   string
}

package models

import "time"

// Attendance is one gym visit. CheckOutTime is immutable once set.
type Attendance struct {
	ID           string     `json:"id" db:"id"`
	UserID       string     `json:"user_id" db:"user_id"`
	MembershipID *string    `json:"membership_id" db:"membership_id"`
	CheckInTime  time.Time  `json:"check_in_time" db:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time" db:"check_out_time"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the visit has not been checked out yet.
func (a *Attendance) IsOpen() bool { return a.CheckOutTime == nil }

// QRCode is the payload handed to a member's app for check-in.
type QRCode struct {
	Token       string    `json:"token"`
	QRData      string    `json:"qr_data"`
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// QRVerification is returned by a successful token verification.
type QRVerification struct {
	Valid      bool        `json:"valid"`
	UserID     string      `json:"user_id"`
	IssuedAt   time.Time   `json:"issued_at"`
	Membership *Membership `json:"membership"`
}

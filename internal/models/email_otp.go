package models

import "gorm.io/gorm"

// EmailOTP is a one-time passcode issued during registration. Rows are
// ephemeral: the newest row for an email wins and all rows for that email
// are removed once verification succeeds.
type EmailOTP struct {
	gorm.Model

	Email string `gorm:"not null;index" json:"email"`
	OTP   string `gorm:"not null" json:"-"`
}

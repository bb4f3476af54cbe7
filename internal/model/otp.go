package model

import (
	"time"

	"github.com/google/uuid"
)

type OtpType string

const (
	OtpTypeEmail OtpType = "EMAIL"
	OtpTypeSMS   OtpType = "SMS"
	OtpTypeNone  OtpType = "NONE"
)

// SecretTwilioVerify is stored instead of a local code when verification is
// delegated to Twilio Verify.
const SecretTwilioVerify = "TWILIO_VERIFY"

// Otp records a single one-time-password issuance. Rows are superseded by
// newer ones and flagged verified, never deleted.
type Otp struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Email       string  `gorm:"type:varchar(255)" json:"email,omitempty"`
	PhoneNumber string  `gorm:"type:varchar(32)" json:"phone_number,omitempty"`
	Type        OtpType `gorm:"type:varchar(8);not null" json:"type"`

	Secret     string    `gorm:"type:varchar(64);not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Otp) TableName() string { return "otps" }

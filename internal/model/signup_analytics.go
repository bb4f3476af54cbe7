package model

import (
	"time"

	"github.com/google/uuid"
)

// SignupAnalytics is an anonymous click-tracking record for signup funnels.
type SignupAnalytics struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID string    `gorm:"type:varchar(64);not null;index" json:"session_id"`

	IPAddress  string `gorm:"type:varchar(45)" json:"ip_address"`
	Country    string `gorm:"type:varchar(64);index" json:"country"`
	DeviceType string `gorm:"type:varchar(32)" json:"device_type"`

	// Type records which UI surface the click originated from.
	Type string `gorm:"type:varchar(32);index" json:"type"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SignupAnalytics) TableName() string { return "signup_analytics" }

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityTypePlay  ActivityType = "play"
	ActivityTypeView  ActivityType = "view"
	ActivityTypeLogin ActivityType = "login"
)

// Analytics is one gameplay session record. Duration is derived from the
// start/end timestamps on every insert and update.
type Analytics struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	GameID uuid.UUID `gorm:"type:uuid;not null;index" json:"game_id"`

	ActivityType ActivityType `gorm:"type:varchar(16);not null" json:"activity_type"`
	StartTime    time.Time    `gorm:"not null;index" json:"start_time"`
	EndTime      *time.Time   `json:"end_time,omitempty"`

	// Duration in whole seconds, endTime - startTime.
	Duration int64 `gorm:"not null;default:0" json:"duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Analytics) TableName() string { return "analytics" }

func (a *Analytics) computeDuration() {
	if a.EndTime != nil && a.EndTime.After(a.StartTime) {
		a.Duration = int64(a.EndTime.Sub(a.StartTime).Seconds())
	}
}

func (a *Analytics) BeforeCreate(_ *gorm.DB) error {
	a.computeDuration()
	return nil
}

func (a *Analytics) BeforeUpdate(_ *gorm.DB) error {
	a.computeDuration()
	return nil
}

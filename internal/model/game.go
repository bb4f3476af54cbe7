package model

import (
	"time"

	"github.com/google/uuid"
)

// Game is a catalog entry players can browse and launch.
type Game struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	Category     string    `gorm:"type:varchar(64);index" json:"category"`
	ThumbnailURL string    `gorm:"type:varchar(512)" json:"thumbnail_url"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Game) TableName() string { return "games" }

package model

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is a token-bound offer for an email to assume a role.
// At most one pending (unaccepted, unexpired) invitation may exist per email.
type Invitation struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email string    `gorm:"type:varchar(255);not null;index" json:"email"`

	RoleID uuid.UUID `gorm:"type:uuid;not null" json:"role_id"`
	Role   *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	Token      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	IsAccepted bool      `gorm:"not null;default:false" json:"is_accepted"`
	IsExpired  bool      `gorm:"not null;default:false" json:"is_expired"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`

	InvitedByID uuid.UUID `gorm:"type:uuid;not null" json:"invited_by_id"`
	InvitedBy   *User     `gorm:"foreignKey:InvitedByID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// Pending reports whether the invitation is still open for acceptance at t.
func (i *Invitation) Pending(t time.Time) bool {
	return !i.IsAccepted && !i.IsExpired && i.ExpiresAt.After(t)
}

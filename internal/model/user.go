package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the portal identity record.
//
// Soft deletion is explicit (IsDeleted/DeletedAt) rather than gorm.DeletedAt:
// soft-deleted rows must remain visible to duplicate checks on registration and
// to the invitation restoration path, so default query scoping would get in the
// way.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber  string    `gorm:"type:varchar(32);index" json:"phone_number"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`

	RoleID uuid.UUID `gorm:"type:uuid;not null" json:"role_id"`
	Role   *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`
	IsAdult    bool `gorm:"not null;default:false" json:"is_adult"`

	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	LastLoggedIn *time.Time `json:"last_logged_in,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`

	// ResetToken holds the SHA-256 hex digest of the latest reset token.
	// An empty string plus an epoch expiry marks a token as already used,
	// distinct from the never-requested NULL state.
	ResetToken       *string    `gorm:"type:varchar(64)" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// RoleName returns the loaded role name or the empty string.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

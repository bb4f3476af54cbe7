package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names. Immutable reference data seeded at startup.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RolePlayer     = "player"
	RoleViewer     = "viewer"
)

type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Users []User `gorm:"foreignKey:RoleID" json:"-"`
}

func (Role) TableName() string { return "roles" }

// roleRanks orders roles for hierarchy checks:
// superadmin > admin > editor/viewer > player.
var roleRanks = map[string]int{
	RoleSuperAdmin: 4,
	RoleAdmin:      3,
	RoleEditor:     2,
	RoleViewer:     2,
	RolePlayer:     1,
}

// RoleRank returns the hierarchy rank of a role name, or 0 if unknown.
func RoleRank(name string) int { return roleRanks[name] }

// IsValidRole reports whether name is one of the seeded role names.
func IsValidRole(name string) bool {
	_, ok := roleRanks[name]
	return ok
}

package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and seeds reference data.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Role{},
		&User{},
		&Invitation{},
		&Otp{},
		&Game{},
		&Analytics{},
		&SignupAnalytics{},
	); err != nil {
		return err
	}

	// Case-insensitive unique email across ALL rows, soft-deleted included:
	// registration must collide with soft-deleted accounts too.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower " +
			"ON users ((lower(email)))",
	).Error; err != nil {
		return err
	}

	// Phone uniqueness is enforced in service logic among active users only,
	// so the schema carries a plain index.
	return SeedRoles(db)
}

// SeedRoles inserts the fixed role set if missing. Roles are immutable
// reference data; re-running is a no-op.
func SeedRoles(db *gorm.DB) error {
	for _, name := range []string{RoleSuperAdmin, RoleAdmin, RoleEditor, RolePlayer, RoleViewer} {
		role := Role{Name: name}
		if err := db.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

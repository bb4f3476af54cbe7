package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

// UserFilter narrows admin user listings. Page/Limit of zero means
// "return the full filtered set".
type UserFilter struct {
	Search   string // matches name or email
	Role     string
	IsActive *bool
	Page     int
	Limit    int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// GetByID loads a non-deleted user with its role.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmailAny looks across all rows, soft-deleted included.
	GetByEmailAny(ctx context.Context, email string) (*model.User, error)
	// GetByPhoneAny looks across all rows, soft-deleted included.
	GetByPhoneAny(ctx context.Context, phone string) (*model.User, error)
	// GetActiveByEmail and GetActiveByPhone exclude soft-deleted rows.
	GetActiveByEmail(ctx context.Context, email string) (*model.User, error)
	GetActiveByPhone(ctx context.Context, phone string) (*model.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	// DeactivateInactive flips isActive off for users not seen since cutoff.
	DeactivateInactive(ctx context.Context, cutoff time.Time) (int64, error)
}

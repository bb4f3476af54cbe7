package repository

import (
	"context"
	"time"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

type InvitationRepository interface {
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	// GetPendingByEmail returns the unaccepted, unexpired invitation for an
	// email, if one exists.
	GetPendingByEmail(ctx context.Context, email string, now time.Time) (*model.Invitation, error)
	// ReplaceForEmail deletes stale accepted/expired invitation rows for the
	// email and creates the new one inside a single transaction.
	ReplaceForEmail(ctx context.Context, invitation *model.Invitation) error
	Update(ctx context.Context, invitation *model.Invitation) error
	// MarkExpired flags pending invitations whose deadline passed before now.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context) ([]model.Invitation, error)
}

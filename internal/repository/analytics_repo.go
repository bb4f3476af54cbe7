package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

// SessionFilter narrows session listings and activity logs.
type SessionFilter struct {
	UserID       *uuid.UUID
	GameID       *uuid.UUID
	ActivityType string
	From         time.Time
	To           time.Time
	Page         int
	Limit        int
}

// PopularityRow is one game's aggregate standing over a window.
type PopularityRow struct {
	GameID        uuid.UUID `json:"game_id"`
	Title         string    `json:"title"`
	Sessions      int64     `json:"sessions"`
	TotalDuration int64     `json:"total_duration"`
}

type AnalyticsRepository interface {
	Create(ctx context.Context, record *model.Analytics) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Analytics, error)
	Update(ctx context.Context, record *model.Analytics) error
	List(ctx context.Context, filter SessionFilter) ([]model.Analytics, int64, error)
	// CountWhere and SumDurationWhere aggregate over the filter's window and
	// optional user/game scope; Page/Limit are ignored.
	CountWhere(ctx context.Context, filter SessionFilter) (int64, error)
	SumDurationWhere(ctx context.Context, filter SessionFilter) (int64, error)
	Popularity(ctx context.Context, from, to time.Time, limit int) ([]PopularityRow, error)
}

package repository

import (
	"context"
	"time"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
)

// SignupFilter narrows signup click summaries.
type SignupFilter struct {
	Country string
	Type    string
	From    time.Time
	To      time.Time
}

// SignupSummaryRow is one country/type bucket of signup clicks.
type SignupSummaryRow struct {
	Country string `json:"country"`
	Type    string `json:"type"`
	Clicks  int64  `json:"clicks"`
}

type SignupAnalyticsRepository interface {
	Create(ctx context.Context, record *model.SignupAnalytics) error
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	Summary(ctx context.Context, filter SignupFilter) ([]SignupSummaryRow, error)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/worker"
)

// Window is a current-vs-previous reporting period pair. The previous window
// always has the same length as, and ends at the start of, the current one.
type Window struct {
	CurrentStart  time.Time `json:"current_start"`
	CurrentEnd    time.Time `json:"current_end"`
	PreviousStart time.Time `json:"previous_start"`
	PreviousEnd   time.Time `json:"previous_end"`
}

// ResolveWindow turns a named period or a custom date range into a Window.
// The default is the last 24 hours against the 24 hours before that.
func ResolveWindow(period string, from, to *time.Time, now time.Time) (Window, error) {
	var span time.Duration
	switch period {
	case "", "last24hours":
		span = 24 * time.Hour
	case "last7days":
		span = 7 * 24 * time.Hour
	case "last30days":
		span = 30 * 24 * time.Hour
	case "custom":
		if from == nil || to == nil || !to.After(*from) {
			return Window{}, fmt.Errorf("custom period requires a valid from/to range")
		}
		length := to.Sub(*from)
		return Window{
			CurrentStart:  *from,
			CurrentEnd:    *to,
			PreviousStart: from.Add(-length),
			PreviousEnd:   *from,
		}, nil
	default:
		return Window{}, fmt.Errorf("unknown period %q", period)
	}

	start := now.Add(-span)
	return Window{
		CurrentStart:  start,
		CurrentEnd:    now,
		PreviousStart: now.Add(-2 * span),
		PreviousEnd:   start,
	}, nil
}

// TrendMetric is a current/previous count pair with a derived change
// percentage clamped to [-100, 100]. A zero previous count yields 0%, not a
// division blowup.
type TrendMetric struct {
	Current   int64   `json:"current"`
	Previous  int64   `json:"previous"`
	ChangePct float64 `json:"change_pct"`
}

func newTrendMetric(current, previous int64) TrendMetric {
	return TrendMetric{
		Current:   current,
		Previous:  previous,
		ChangePct: percentChange(current, previous),
	}
}

func percentChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	if pct > 100 {
		return 100
	}
	if pct < -100 {
		return -100
	}
	return pct
}

type DashboardSummary struct {
	Window          Window      `json:"window"`
	NewUsers        TrendMetric `json:"new_users"`
	Sessions        TrendMetric `json:"sessions"`
	PlaytimeSeconds TrendMetric `json:"playtime_seconds"`
	SignupClicks    TrendMetric `json:"signup_clicks"`
}

type GameAnalytics struct {
	GameID          uuid.UUID   `json:"game_id"`
	Title           string      `json:"title"`
	Window          Window      `json:"window"`
	Sessions        TrendMetric `json:"sessions"`
	PlaytimeSeconds TrendMetric `json:"playtime_seconds"`
}

type UserAnalytics struct {
	UserID          uuid.UUID   `json:"user_id"`
	Window          Window      `json:"window"`
	Sessions        TrendMetric `json:"sessions"`
	PlaytimeSeconds TrendMetric `json:"playtime_seconds"`
}

// SignupClick is one tracked click from a signup surface.
type SignupClick struct {
	SessionID  string
	IPAddress  string
	DeviceType string
	Type       string
}

type AnalyticsService interface {
	GetDashboardAnalytics(ctx context.Context, period string, from, to *time.Time) (*DashboardSummary, error)
	GetGamePopularity(ctx context.Context, period string, from, to *time.Time, limit int) ([]repository.PopularityRow, error)
	GetGameAnalytics(ctx context.Context, gameID uuid.UUID, period string, from, to *time.Time) (*GameAnalytics, error)
	GetUserAnalytics(ctx context.Context, userID uuid.UUID, period string, from, to *time.Time) (*UserAnalytics, error)
	GetUserActivityLog(ctx context.Context, filter repository.SessionFilter) ([]model.Analytics, int64, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error)
	ListGames(ctx context.Context, filter repository.GameFilter) ([]model.Game, int64, error)
	// TrackSignupClick resolves the click's country and hands the write to
	// the queue.
	TrackSignupClick(ctx context.Context, click SignupClick) error
	// GetSignupSummary serves from a TTL cache keyed by the serialized
	// filter; any new click write invalidates the whole key space.
	GetSignupSummary(ctx context.Context, filter repository.SignupFilter) ([]repository.SignupSummaryRow, error)
}

type analyticsService struct {
	userRepo      repository.UserRepository
	gameRepo      repository.GameRepository
	analyticsRepo repository.AnalyticsRepository
	signupRepo    repository.SignupAnalyticsRepository
	cache         repository.StateStore
	geoIP         GeoIPResolver
	queue         worker.Enqueuer
	cfg           config.AnalyticsConfig
	logger        *zap.Logger
}

func NewAnalyticsService(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	analyticsRepo repository.AnalyticsRepository,
	signupRepo repository.SignupAnalyticsRepository,
	cache repository.StateStore,
	geoIP GeoIPResolver,
	queue worker.Enqueuer,
	cfg config.AnalyticsConfig,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		userRepo:      userRepo,
		gameRepo:      gameRepo,
		analyticsRepo: analyticsRepo,
		signupRepo:    signupRepo,
		cache:         cache,
		geoIP:         geoIP,
		queue:         queue,
		cfg:           cfg,
		logger:        logger,
	}
}

func (s *analyticsService) GetDashboardAnalytics(ctx context.Context, period string, from, to *time.Time) (*DashboardSummary, error) {
	window, err := ResolveWindow(period, from, to, time.Now())
	if err != nil {
		return nil, err
	}

	curUsers, err := s.userRepo.CountCreatedBetween(ctx, window.CurrentStart, window.CurrentEnd)
	if err != nil {
		return nil, fmt.Errorf("count new users: %w", err)
	}
	prevUsers, err := s.userRepo.CountCreatedBetween(ctx, window.PreviousStart, window.PreviousEnd)
	if err != nil {
		return nil, fmt.Errorf("count previous users: %w", err)
	}

	curSessions, err := s.analyticsRepo.CountWhere(ctx, repository.SessionFilter{From: window.CurrentStart, To: window.CurrentEnd})
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	prevSessions, err := s.analyticsRepo.CountWhere(ctx, repository.SessionFilter{From: window.PreviousStart, To: window.PreviousEnd})
	if err != nil {
		return nil, fmt.Errorf("count previous sessions: %w", err)
	}

	curPlaytime, err := s.analyticsRepo.SumDurationWhere(ctx, repository.SessionFilter{From: window.CurrentStart, To: window.CurrentEnd})
	if err != nil {
		return nil, fmt.Errorf("sum playtime: %w", err)
	}
	prevPlaytime, err := s.analyticsRepo.SumDurationWhere(ctx, repository.SessionFilter{From: window.PreviousStart, To: window.PreviousEnd})
	if err != nil {
		return nil, fmt.Errorf("sum previous playtime: %w", err)
	}

	curSignups, err := s.signupRepo.CountBetween(ctx, window.CurrentStart, window.CurrentEnd)
	if err != nil {
		return nil, fmt.Errorf("count signup clicks: %w", err)
	}
	prevSignups, err := s.signupRepo.CountBetween(ctx, window.PreviousStart, window.PreviousEnd)
	if err != nil {
		return nil, fmt.Errorf("count previous signup clicks: %w", err)
	}

	return &DashboardSummary{
		Window:          window,
		NewUsers:        newTrendMetric(curUsers, prevUsers),
		Sessions:        newTrendMetric(curSessions, prevSessions),
		PlaytimeSeconds: newTrendMetric(curPlaytime, prevPlaytime),
		SignupClicks:    newTrendMetric(curSignups, prevSignups),
	}, nil
}

func (s *analyticsService) GetGamePopularity(ctx context.Context, period string, from, to *time.Time, limit int) ([]repository.PopularityRow, error) {
	window, err := ResolveWindow(period, from, to, time.Now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	return s.analyticsRepo.Popularity(ctx, window.CurrentStart, window.CurrentEnd, limit)
}

func (s *analyticsService) GetGameAnalytics(ctx context.Context, gameID uuid.UUID, period string, from, to *time.Time) (*GameAnalytics, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}

	window, err := ResolveWindow(period, from, to, time.Now())
	if err != nil {
		return nil, err
	}

	sessions, playtime, err := s.trendsFor(ctx, window, repository.SessionFilter{GameID: &gameID})
	if err != nil {
		return nil, err
	}
	return &GameAnalytics{
		GameID:          game.ID,
		Title:           game.Title,
		Window:          window,
		Sessions:        sessions,
		PlaytimeSeconds: playtime,
	}, nil
}

func (s *analyticsService) GetUserAnalytics(ctx context.Context, userID uuid.UUID, period string, from, to *time.Time) (*UserAnalytics, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	window, err := ResolveWindow(period, from, to, time.Now())
	if err != nil {
		return nil, err
	}

	sessions, playtime, err := s.trendsFor(ctx, window, repository.SessionFilter{UserID: &user.ID})
	if err != nil {
		return nil, err
	}
	return &UserAnalytics{
		UserID:          user.ID,
		Window:          window,
		Sessions:        sessions,
		PlaytimeSeconds: playtime,
	}, nil
}

func (s *analyticsService) trendsFor(ctx context.Context, window Window, scope repository.SessionFilter) (TrendMetric, TrendMetric, error) {
	current := scope
	current.From, current.To = window.CurrentStart, window.CurrentEnd
	previous := scope
	previous.From, previous.To = window.PreviousStart, window.PreviousEnd

	curSessions, err := s.analyticsRepo.CountWhere(ctx, current)
	if err != nil {
		return TrendMetric{}, TrendMetric{}, fmt.Errorf("count sessions: %w", err)
	}
	prevSessions, err := s.analyticsRepo.CountWhere(ctx, previous)
	if err != nil {
		return TrendMetric{}, TrendMetric{}, fmt.Errorf("count previous sessions: %w", err)
	}
	curPlaytime, err := s.analyticsRepo.SumDurationWhere(ctx, current)
	if err != nil {
		return TrendMetric{}, TrendMetric{}, fmt.Errorf("sum playtime: %w", err)
	}
	prevPlaytime, err := s.analyticsRepo.SumDurationWhere(ctx, previous)
	if err != nil {
		return TrendMetric{}, TrendMetric{}, fmt.Errorf("sum previous playtime: %w", err)
	}

	return newTrendMetric(curSessions, prevSessions), newTrendMetric(curPlaytime, prevPlaytime), nil
}

func (s *analyticsService) GetUserActivityLog(ctx context.Context, filter repository.SessionFilter) ([]model.Analytics, int64, error) {
	return s.analyticsRepo.List(ctx, filter)
}

func (s *analyticsService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *analyticsService) ListGames(ctx context.Context, filter repository.GameFilter) ([]model.Game, int64, error) {
	return s.gameRepo.List(ctx, filter)
}

func (s *analyticsService) TrackSignupClick(ctx context.Context, click SignupClick) error {
	country := ""
	if click.IPAddress != "" {
		resolved, err := s.geoIP.Country(ctx, click.IPAddress)
		if err != nil {
			// Country stays unknown; the click is still recorded.
			s.logger.Warn("geoip lookup failed",
				zap.String("ip", click.IPAddress), zap.Error(err))
		} else {
			country = resolved
		}
	}

	err := s.queue.Enqueue(ctx, worker.QueueSignupClick, worker.SignupClickJob{
		SessionID:  click.SessionID,
		IPAddress:  click.IPAddress,
		Country:    country,
		DeviceType: click.DeviceType,
		Type:       click.Type,
	})
	if err != nil {
		return fmt.Errorf("enqueue signup click: %w", err)
	}
	return nil
}

func (s *analyticsService) GetSignupSummary(ctx context.Context, filter repository.SignupFilter) ([]repository.SignupSummaryRow, error) {
	key := signupSummaryCacheKey(filter)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("signup summary cache read failed", zap.Error(err))
	} else if cached != nil {
		var rows []repository.SignupSummaryRow
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := s.signupRepo.Summary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query signup summary: %w", err)
	}

	if data, err := json.Marshal(rows); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.SummaryCacheTTL); err != nil {
			s.logger.Warn("signup summary cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

func signupSummaryCacheKey(filter repository.SignupFilter) string {
	return fmt.Sprintf("signup-summary:%s|%s|%d|%d",
		filter.Country, filter.Type, filter.From.Unix(), filter.To.Unix())
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/worker"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("defaults to last 24 hours", func(t *testing.T) {
		w, err := ResolveWindow("", nil, nil, now)
		require.NoError(t, err)
		require.Equal(t, now.Add(-24*time.Hour), w.CurrentStart)
		require.Equal(t, now, w.CurrentEnd)
		require.Equal(t, now.Add(-48*time.Hour), w.PreviousStart)
		require.Equal(t, w.CurrentStart, w.PreviousEnd)
	})

	t.Run("last7days starts 7 days back, previous 14 days back", func(t *testing.T) {
		w, err := ResolveWindow("last7days", nil, nil, now)
		require.NoError(t, err)
		require.Equal(t, now.AddDate(0, 0, -7), w.CurrentStart)
		require.Equal(t, now.AddDate(0, 0, -14), w.PreviousStart)
		require.Equal(t, w.CurrentStart, w.PreviousEnd)
	})

	t.Run("last30days", func(t *testing.T) {
		w, err := ResolveWindow("last30days", nil, nil, now)
		require.NoError(t, err)
		require.Equal(t, now.Add(-30*24*time.Hour), w.CurrentStart)
		require.Equal(t, now.Add(-60*24*time.Hour), w.PreviousStart)
	})

	t.Run("custom range gets an equal-length preceding window", func(t *testing.T) {
		from := now.AddDate(0, 0, -10)
		to := now.AddDate(0, 0, -3)
		w, err := ResolveWindow("custom", &from, &to, now)
		require.NoError(t, err)
		require.Equal(t, from, w.CurrentStart)
		require.Equal(t, to, w.CurrentEnd)
		require.Equal(t, from.AddDate(0, 0, -7), w.PreviousStart)
		require.Equal(t, from, w.PreviousEnd)
	})

	t.Run("custom without bounds is rejected", func(t *testing.T) {
		_, err := ResolveWindow("custom", nil, nil, now)
		require.Error(t, err)
	})

	t.Run("inverted custom range is rejected", func(t *testing.T) {
		from := now
		to := now.Add(-time.Hour)
		_, err := ResolveWindow("custom", &from, &to, now)
		require.Error(t, err)
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		_, err := ResolveWindow("lastfortnight", nil, nil, now)
		require.Error(t, err)
	})
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"zero previous yields zero", 42, 0, 0},
		{"clamped above", 500, 100, 100},
		{"clamped below", 0, 100, -100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, percentChange(tc.current, tc.previous))
		})
	}
}

type analyticsFixture struct {
	users     *fakeUserRepo
	games     *fakeGameRepo
	analytics *fakeAnalyticsRepo
	signups   *fakeSignupRepo
	cache     repository.StateStore
	geoIP     *fakeGeoIP
	queue     *fakeEnqueuer
	svc       AnalyticsService
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		users:     newFakeUserRepo(),
		games:     newFakeGameRepo(),
		analytics: newFakeAnalyticsRepo(),
		signups:   &fakeSignupRepo{},
		cache:     repository.NewMemoryStateStore(),
		geoIP:     &fakeGeoIP{country: "Germany"},
		queue:     &fakeEnqueuer{},
	}
	f.svc = NewAnalyticsService(
		f.users, f.games, f.analytics, f.signups, f.cache,
		f.geoIP, f.queue, config.AnalyticsConfig{SummaryCacheTTL: time.Minute}, zap.NewNop(),
	)
	return f
}

func (f *analyticsFixture) seedSession(t *testing.T, userID, gameID uuid.UUID, start time.Time, duration int64) {
	t.Helper()
	end := start.Add(time.Duration(duration) * time.Second)
	err := f.analytics.Create(context.Background(), &model.Analytics{
		UserID:       userID,
		GameID:       gameID,
		ActivityType: model.ActivityTypePlay,
		StartTime:    start,
		EndTime:      &end,
		Duration:     duration,
	})
	require.NoError(t, err)
}

func TestGetDashboardAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture()

	userID := uuid.New()
	gameID := uuid.New()
	now := time.Now()

	// Three sessions this week, one the week before.
	f.seedSession(t, userID, gameID, now.Add(-2*24*time.Hour), 600)
	f.seedSession(t, userID, gameID, now.Add(-3*24*time.Hour), 300)
	f.seedSession(t, userID, gameID, now.Add(-4*24*time.Hour), 100)
	f.seedSession(t, userID, gameID, now.Add(-10*24*time.Hour), 200)

	summary, err := f.svc.GetDashboardAnalytics(ctx, "last7days", nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), summary.Sessions.Current)
	require.Equal(t, int64(1), summary.Sessions.Previous)
	require.Equal(t, float64(100), summary.Sessions.ChangePct)
	require.Equal(t, int64(1000), summary.PlaytimeSeconds.Current)
	require.Equal(t, int64(200), summary.PlaytimeSeconds.Previous)
}

func TestGetGameAnalytics(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture()

	game := &model.Game{Title: "Maze Runner", Slug: "maze-runner", IsActive: true}
	require.NoError(t, f.games.Create(ctx, game))
	other := uuid.New()
	now := time.Now()

	f.seedSession(t, uuid.New(), game.ID, now.Add(-time.Hour), 120)
	f.seedSession(t, uuid.New(), other, now.Add(-time.Hour), 500)

	summary, err := f.svc.GetGameAnalytics(ctx, game.ID, "last24hours", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Maze Runner", summary.Title)
	require.Equal(t, int64(1), summary.Sessions.Current)
	require.Equal(t, int64(120), summary.PlaytimeSeconds.Current)

	_, err = f.svc.GetGameAnalytics(ctx, uuid.New(), "last24hours", nil, nil)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestTrackSignupClick(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves country and enqueues the write", func(t *testing.T) {
		f := newAnalyticsFixture()
		err := f.svc.TrackSignupClick(ctx, SignupClick{
			SessionID:  "sess-1",
			IPAddress:  "203.0.113.7",
			DeviceType: "mobile",
			Type:       "hero-banner",
		})
		require.NoError(t, err)
		require.Len(t, f.queue.jobs, 1)
		require.Equal(t, worker.QueueSignupClick, f.queue.jobs[0].queue)

		job, ok := f.queue.jobs[0].payload.(worker.SignupClickJob)
		require.True(t, ok)
		require.Equal(t, "Germany", job.Country)
	})

	t.Run("geoip failure still records the click", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.geoIP.err = context.DeadlineExceeded

		err := f.svc.TrackSignupClick(ctx, SignupClick{
			SessionID: "sess-2",
			IPAddress: "203.0.113.7",
			Type:      "footer",
		})
		require.NoError(t, err)
		require.Len(t, f.queue.jobs, 1)
		job := f.queue.jobs[0].payload.(worker.SignupClickJob)
		require.Empty(t, job.Country)
	})
}

func TestGetSignupSummary(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture()

	require.NoError(t, f.signups.Create(ctx, &model.SignupAnalytics{
		SessionID: "s1", Country: "Germany", Type: "hero-banner",
	}))
	require.NoError(t, f.signups.Create(ctx, &model.SignupAnalytics{
		SessionID: "s2", Country: "Germany", Type: "hero-banner",
	}))
	require.NoError(t, f.signups.Create(ctx, &model.SignupAnalytics{
		SessionID: "s3", Country: "France", Type: "footer",
	}))

	rows, err := f.svc.GetSignupSummary(ctx, repository.SignupFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1, f.signups.summaryCalls)

	// Second read is served from cache.
	cached, err := f.svc.GetSignupSummary(ctx, repository.SignupFilter{})
	require.NoError(t, err)
	require.Equal(t, rows, cached)
	require.Equal(t, 1, f.signups.summaryCalls)

	// A different filter misses the cache.
	_, err = f.svc.GetSignupSummary(ctx, repository.SignupFilter{Country: "Germany"})
	require.NoError(t, err)
	require.Equal(t, 2, f.signups.summaryCalls)

	// Invalidation brings the next read back to the repository.
	require.NoError(t, f.cache.DeleteByPattern(ctx, worker.SignupSummaryCachePattern))
	_, err = f.svc.GetSignupSummary(ctx, repository.SignupFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, f.signups.summaryCalls)
}

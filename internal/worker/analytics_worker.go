package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
)

// SignupSummaryCachePattern matches every cached signup summary; any new
// click write invalidates them wholesale.
const SignupSummaryCachePattern = "signup-summary:*"

// RegisterAnalyticsWorkers wires the analytics write-behind handlers onto the
// queue.
func RegisterAnalyticsWorkers(
	q *Queue,
	analyticsRepo repository.AnalyticsRepository,
	signupRepo repository.SignupAnalyticsRepository,
	cache repository.StateStore,
) {
	q.CreateWorker(QueueSessionStart, func(ctx context.Context, payload []byte) error {
		var j SessionStartJob
		if err := json.Unmarshal(payload, &j); err != nil {
			return fmt.Errorf("decode session start job: %w", err)
		}
		return analyticsRepo.Create(ctx, &model.Analytics{
			ID:           j.SessionID,
			UserID:       j.UserID,
			GameID:       j.GameID,
			ActivityType: j.ActivityType,
			StartTime:    j.StartTime,
		})
	})

	q.CreateWorker(QueueSessionEnd, func(ctx context.Context, payload []byte) error {
		var j SessionEndJob
		if err := json.Unmarshal(payload, &j); err != nil {
			return fmt.Errorf("decode session end job: %w", err)
		}
		// The start job may not have landed yet; the error requeues us.
		record, err := analyticsRepo.GetByID(ctx, j.SessionID)
		if err != nil {
			return fmt.Errorf("load session %s: %w", j.SessionID, err)
		}
		end := j.EndTime
		record.EndTime = &end
		return analyticsRepo.Update(ctx, record)
	})

	q.CreateWorker(QueueSignupClick, func(ctx context.Context, payload []byte) error {
		var j SignupClickJob
		if err := json.Unmarshal(payload, &j); err != nil {
			return fmt.Errorf("decode signup click job: %w", err)
		}
		if err := signupRepo.Create(ctx, &model.SignupAnalytics{
			SessionID:  j.SessionID,
			IPAddress:  j.IPAddress,
			Country:    j.Country,
			DeviceType: j.DeviceType,
			Type:       j.Type,
		}); err != nil {
			return err
		}
		return cache.DeleteByPattern(ctx, SignupSummaryCachePattern)
	})
}

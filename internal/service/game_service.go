package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/worker"
)

type GameService interface {
	ListGames(ctx context.Context, filter repository.GameFilter) ([]model.Game, int64, error)
	GetGame(ctx context.Context, slug string) (*model.Game, error)
	// StartSession opens a gameplay session; the analytics row is written
	// out-of-band by the queue worker. Returns the session id the client
	// uses to close it.
	StartSession(ctx context.Context, userID, gameID uuid.UUID, activityType model.ActivityType) (uuid.UUID, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) error
}

type gameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
	queue    worker.Enqueuer
	logger   *zap.Logger
}

func NewGameService(
	gameRepo repository.GameRepository,
	userRepo repository.UserRepository,
	queue worker.Enqueuer,
	logger *zap.Logger,
) GameService {
	return &gameService{
		gameRepo: gameRepo,
		userRepo: userRepo,
		queue:    queue,
		logger:   logger,
	}
}

func (s *gameService) ListGames(ctx context.Context, filter repository.GameFilter) ([]model.Game, int64, error) {
	return s.gameRepo.List(ctx, filter)
}

func (s *gameService) GetGame(ctx context.Context, slug string) (*model.Game, error) {
	game, err := s.gameRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	return game, nil
}

func (s *gameService) StartSession(ctx context.Context, userID, gameID uuid.UUID, activityType model.ActivityType) (uuid.UUID, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrGameNotFound
		}
		return uuid.Nil, fmt.Errorf("load game: %w", err)
	}
	if !game.IsActive {
		return uuid.Nil, ErrGameNotFound
	}

	if activityType == "" {
		activityType = model.ActivityTypePlay
	}

	now := time.Now()
	s.touchLastSeen(ctx, userID, now)

	sessionID := uuid.New()
	err = s.queue.Enqueue(ctx, worker.QueueSessionStart, worker.SessionStartJob{
		SessionID:    sessionID,
		UserID:       userID,
		GameID:       gameID,
		ActivityType: activityType,
		StartTime:    now,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue session start: %w", err)
	}
	return sessionID, nil
}

func (s *gameService) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	err := s.queue.Enqueue(ctx, worker.QueueSessionEnd, worker.SessionEndJob{
		SessionID: sessionID,
		EndTime:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("enqueue session end: %w", err)
	}
	return nil
}

func (s *gameService) touchLastSeen(ctx context.Context, userID uuid.UUID, now time.Time) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for last-seen update",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	user.LastSeen = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to update last-seen",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

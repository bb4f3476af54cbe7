package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
)

// Sweeper runs the daily maintenance passes: deactivating users who have
// been idle past the inactivity window, and flagging expired invitations
// still marked pending. Both passes are idempotent; failures are logged and
// never propagated.
type Sweeper struct {
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepository
	cfg            config.JobsConfig
	logger         *zap.Logger
}

func NewSweeper(
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepository,
	cfg config.JobsConfig,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		cfg:            cfg,
		logger:         logger,
	}
}

// Start runs one sweep immediately, then on every tick until ctx is
// cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.runOnce(ctx)
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Sweeper) runOnce(ctx context.Context) {
	now := time.Now()

	cutoff := now.Add(-s.cfg.InactivityWindow)
	if n, err := s.userRepo.DeactivateInactive(ctx, cutoff); err != nil {
		s.logger.Error("inactivity sweep failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("deactivated inactive users", zap.Int64("count", n))
	}

	if n, err := s.invitationRepo.MarkExpired(ctx, now); err != nil {
		s.logger.Error("invitation expiry sweep failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("expired stale invitations", zap.Int64("count", n))
	}
}

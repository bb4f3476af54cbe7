package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/handler"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/service"
	"github.com/Really-Great-Tech/chareli-backend/internal/worker"
	jwtpkg "github.com/Really-Great-Tech/chareli-backend/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate and seed roles if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		if err := model.SeedRoles(db); err != nil {
			logger.Fatal("failed to seed roles", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Connect to Redis; the job queue always runs on it
	redisClient, err := config.NewRedisClient(cfg.Database.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	// 6. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 7. Initialize repositories
	userRepo := repository.NewPGUserRepository(db)
	roleRepo := repository.NewPGRoleRepository(db)
	invitationRepo := repository.NewPGInvitationRepository(db)
	otpRepo := repository.NewPGOtpRepository(db)
	gameRepo := repository.NewPGGameRepository(db)
	analyticsRepo := repository.NewPGAnalyticsRepository(db)
	signupRepo := repository.NewPGSignupAnalyticsRepository(db)

	// 8. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	// 9. Initialize outbound integrations
	mailer, err := service.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}
	smsVerifier := service.NewTwilioVerifier(cfg.Twilio)
	geoIP := service.NewGeoIPResolver(cfg.GeoIP)

	// 10. Initialize job queue and background workers
	queue := worker.NewQueue(redisClient, cfg.Jobs, logger)
	worker.RegisterAnalyticsWorkers(queue, analyticsRepo, signupRepo, stateStore)
	sweeper := worker.NewSweeper(userRepo, invitationRepo, cfg.Jobs, logger)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	queue.Start(workerCtx)
	sweeper.Start(workerCtx)

	// 11. Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, stateStore, jwtManager)
	otpService := service.NewOtpService(userRepo, otpRepo, mailer, smsVerifier, cfg.OTP)
	invitationService := service.NewInvitationService(
		userRepo, roleRepo, invitationRepo, mailer, cfg.Invite, cfg.Portal.BaseURL, logger,
	)
	resetService := service.NewResetService(userRepo, mailer, cfg.Reset, cfg.Portal.BaseURL, logger)
	gameService := service.NewGameService(gameRepo, userRepo, queue, logger)
	analyticsService := service.NewAnalyticsService(
		userRepo, gameRepo, analyticsRepo, signupRepo, stateStore,
		geoIP, queue, cfg.Analytics, logger,
	)

	// 12. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, otpService, invitationService, resetService)
	gameHandler := handler.NewGameHandler(gameService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	adminHandler := handler.NewAdminHandler(analyticsService)

	// 13. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, authHandler, gameHandler, analyticsHandler, adminHandler)

	// 14. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 15. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 16. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	stopWorkers()
	queue.Wait()
	logger.Info("server exited gracefully")
}

package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Really-Great-Tech/chareli-backend/internal/config"
	"github.com/Really-Great-Tech/chareli-backend/internal/handler/middleware"
	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	jwtpkg "github.com/Really-Great-Tech/chareli-backend/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	gameHandler *GameHandler,
	analyticsHandler *AnalyticsHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public auth routes
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-otp", authHandler.VerifyOtp)
		auth.POST("/refresh", authHandler.Refresh)

		auth.GET("/verify-invitation/:token", authHandler.VerifyInvitation)
		auth.POST("/reset-password-from-invitation/:token", authHandler.AcceptInvitation)

		auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
		auth.GET("/verify-reset-token/:token", authHandler.VerifyResetToken)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Public catalog and tracking routes
	public := r.Group("/api/v1")
	{
		// Same wildcard name as the session route below; gin rejects
		// mixed names on one segment.
		public.GET("/games", gameHandler.List)
		public.GET("/games/:id", gameHandler.GetBySlug)
		public.POST("/analytics/signup-click", analyticsHandler.TrackSignupClick)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.POST("/games/:id/sessions/start", gameHandler.StartSession)
		protected.POST("/sessions/:id/end", gameHandler.EndSession)
	}

	// Team management: invitations and role changes, admin tier only. The
	// service layer enforces the finer hierarchy rules.
	team := r.Group("/api/v1/auth")
	team.Use(middleware.JWTAuth(jwtManager))
	team.Use(middleware.RequireRoles(model.RoleSuperAdmin, model.RoleAdmin))
	{
		team.POST("/invite", authHandler.Invite)
		team.PUT("/users/:id/role", authHandler.ChangeUserRole)
		team.PUT("/revoke-role/:id", authHandler.RevokeRole)
	}

	// Admin routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuth(jwtManager))
	admin.Use(middleware.RequireRoles(model.RoleSuperAdmin, model.RoleAdmin))
	{
		admin.GET("/invitations", authHandler.ListInvitations)

		admin.GET("/analytics/dashboard", adminHandler.Dashboard)
		admin.GET("/analytics/games/popularity", adminHandler.GamePopularity)
		admin.GET("/analytics/games/:id", adminHandler.GameAnalytics)
		admin.GET("/analytics/users/:id", adminHandler.UserAnalytics)
		admin.GET("/analytics/users/:id/activity", adminHandler.UserActivityLog)
		admin.GET("/analytics/signup-summary", adminHandler.SignupSummary)

		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/games", adminHandler.ListGames)
	}

	return r
}

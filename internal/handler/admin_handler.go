package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/service"
	"github.com/Really-Great-Tech/chareli-backend/pkg/response"
)

type AdminHandler struct {
	analyticsService service.AnalyticsService
}

func NewAdminHandler(analyticsService service.AnalyticsService) *AdminHandler {
	return &AdminHandler{analyticsService: analyticsService}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	period, from, to, err := parseWindowQuery(c)
	if err != nil {
		response.BadRequest(c, "invalid date range")
		return
	}

	summary, err := h.analyticsService.GetDashboardAnalytics(c.Request.Context(), period, from, to)
	if err != nil {
		response.InternalError(c, "failed to load dashboard")
		return
	}
	response.Success(c, summary)
}

func (h *AdminHandler) GamePopularity(c *gin.Context) {
	period, from, to, err := parseWindowQuery(c)
	if err != nil {
		response.BadRequest(c, "invalid date range")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.analyticsService.GetGamePopularity(c.Request.Context(), period, from, to, limit)
	if err != nil {
		response.InternalError(c, "failed to load game popularity")
		return
	}
	response.Success(c, rows)
}

func (h *AdminHandler) GameAnalytics(c *gin.Context) {
	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	period, from, to, err := parseWindowQuery(c)
	if err != nil {
		response.BadRequest(c, "invalid date range")
		return
	}

	summary, err := h.analyticsService.GetGameAnalytics(c.Request.Context(), gameID, period, from, to)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			response.NotFound(c, "game not found")
		} else {
			response.InternalError(c, "failed to load game analytics")
		}
		return
	}
	response.Success(c, summary)
}

func (h *AdminHandler) UserAnalytics(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	period, from, to, err := parseWindowQuery(c)
	if err != nil {
		response.BadRequest(c, "invalid date range")
		return
	}

	summary, err := h.analyticsService.GetUserAnalytics(c.Request.Context(), userID, period, from, to)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
		} else {
			response.InternalError(c, "failed to load user analytics")
		}
		return
	}
	response.Success(c, summary)
}

func (h *AdminHandler) UserActivityLog(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := repository.SessionFilter{
		UserID:       &userID,
		ActivityType: c.Query("activityType"),
		Page:         page,
		Limit:        limit,
	}
	if v := c.Query("from"); v != "" {
		if t, perr := time.Parse(time.RFC3339, v); perr == nil {
			filter.From = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, perr := time.Parse(time.RFC3339, v); perr == nil {
			filter.To = t
		}
	}

	sessions, total, err := h.analyticsService.GetUserActivityLog(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, "failed to load activity log")
		return
	}
	response.Success(c, gin.H{"sessions": sessions, "total": total})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filter := repository.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page,
		Limit:  limit,
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	users, total, err := h.analyticsService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, "failed to list users")
		return
	}
	response.Success(c, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) ListGames(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	games, total, err := h.analyticsService.ListGames(c.Request.Context(), repository.GameFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		response.InternalError(c, "failed to list games")
		return
	}
	response.Success(c, gin.H{"games": games, "total": total})
}

func (h *AdminHandler) SignupSummary(c *gin.Context) {
	filter := repository.SignupFilter{
		Country: c.Query("country"),
		Type:    c.Query("type"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid from date")
			return
		}
		filter.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(c, "invalid to date")
			return
		}
		filter.To = t
	}

	rows, err := h.analyticsService.GetSignupSummary(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, "failed to load signup summary")
		return
	}
	response.Success(c, rows)
}

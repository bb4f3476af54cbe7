package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Really-Great-Tech/chareli-backend/internal/service"
	"github.com/Really-Great-Tech/chareli-backend/pkg/response"
)

// AnalyticsHandler serves the public tracking endpoint. The admin reporting
// endpoints live on AdminHandler.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type SignupClickRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	DeviceType string `json:"deviceType"`
	Type       string `json:"type" binding:"required"`
}

// TrackSignupClick records a click on a signup surface. The IP comes from the
// connection, not the payload.
func (h *AnalyticsHandler) TrackSignupClick(c *gin.Context) {
	var req SignupClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.analyticsService.TrackSignupClick(c.Request.Context(), service.SignupClick{
		SessionID:  req.SessionID,
		IPAddress:  c.ClientIP(),
		DeviceType: req.DeviceType,
		Type:       req.Type,
	})
	if err != nil {
		response.InternalError(c, "failed to record click")
		return
	}

	response.Created(c, nil)
}

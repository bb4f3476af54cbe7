package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
	"github.com/Really-Great-Tech/chareli-backend/internal/service"
	"github.com/Really-Great-Tech/chareli-backend/pkg/response"
)

type GameHandler struct {
	gameService service.GameService
}

func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	games, total, err := h.gameService.ListGames(c.Request.Context(), repository.GameFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		ActiveOnly: true,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		response.InternalError(c, "failed to list games")
		return
	}

	response.Success(c, gin.H{"games": games, "total": total})
}

// GetBySlug resolves a game by its catalog slug.
func (h *GameHandler) GetBySlug(c *gin.Context) {
	game, err := h.gameService.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			response.NotFound(c, "game not found")
		} else {
			response.InternalError(c, "failed to load game")
		}
		return
	}
	response.Success(c, game)
}

type StartSessionRequest struct {
	ActivityType string `json:"activityType"`
}

func (h *GameHandler) StartSession(c *gin.Context) {
	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}

	// The body is optional; an empty activity type defaults to play.
	var req StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	sessionID, err := h.gameService.StartSession(
		c.Request.Context(), userID, gameID, model.ActivityType(req.ActivityType),
	)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			response.NotFound(c, "game not found")
		} else {
			response.InternalError(c, "failed to start session")
		}
		return
	}

	response.Created(c, gin.H{"sessionId": sessionID})
}

func (h *GameHandler) EndSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	if err := h.gameService.EndSession(c.Request.Context(), sessionID); err != nil {
		response.InternalError(c, "failed to end session")
		return
	}

	response.Success(c, nil)
}

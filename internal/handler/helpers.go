package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Really-Great-Tech/chareli-backend/internal/handler/middleware"
	jwtpkg "github.com/Really-Great-Tech/chareli-backend/pkg/jwt"
)

var ErrNoClaims = errors.New("claims not found in context")

func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	claimsVal, exists := c.Get(middleware.ContextKeyUserClaims)
	if !exists {
		return uuid.Nil, ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return uuid.Nil, ErrNoClaims
	}
	return uuid.Parse(claims.Subject)
}

// parseWindowQuery reads the shared period/from/to analytics query params.
func parseWindowQuery(c *gin.Context) (period string, from, to *time.Time, err error) {
	period = c.Query("period")
	if v := c.Query("from"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return "", nil, nil, perr
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return "", nil, nil, perr
		}
		to = &t
	}
	if from != nil && to != nil && period == "" {
		period = "custom"
	}
	return period, from, to, nil
}

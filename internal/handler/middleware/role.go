package middleware

import (
	"github.com/gin-gonic/gin"

	jwtpkg "github.com/Really-Great-Tech/chareli-backend/pkg/jwt"
	"github.com/Really-Great-Tech/chareli-backend/pkg/response"
)

// RequireRoles restricts the route to the named roles. The role comes from
// the access token claims, so a mid-session role change takes effect on the
// next token refresh. Must be used after JWTAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsVal, exists := c.Get(ContextKeyUserClaims)
		if !exists {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		claims, ok := claimsVal.(*jwtpkg.Claims)
		if !ok {
			response.Unauthorized(c, "invalid claims")
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}

		c.Next()
	}
}
